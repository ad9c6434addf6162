package ptrx

// String returns a pointer to s
func String(s string) *string { return &s }

// Int returns a pointer to i
func Int(i int) *int { return &i }

// Bool returns a pointer to b
func Bool(b bool) *bool { return &b }

// Value dereferences p or returns the zero value
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// ValueOr dereferences p or returns def
func ValueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

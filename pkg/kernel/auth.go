package kernel

import "time"

// AuthContext is the authenticated principal attached to a request.
// A nil *AuthContext represents an anonymous caller.
type AuthContext struct {
	UserID      *UserID
	Email       string
	Name        string
	IsStaff     bool
	IsSuperuser bool
	Staff       *StaffProfile
	TokenID     string
	ExpiresAt   time.Time
}

// IsValid verifica que el contexto tenga un usuario
func (a *AuthContext) IsValid() bool {
	return a != nil && a.UserID != nil && !a.UserID.IsEmpty()
}

// IsManager reports whether the principal manages its company
func (a *AuthContext) IsManager() bool {
	return a.IsValid() && a.IsStaff && a.Staff != nil && a.Staff.IsManager
}

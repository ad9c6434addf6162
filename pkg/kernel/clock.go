package kernel

import "time"

// Clock returns the current time; services take one so tests can pin it
type Clock func() time.Time

// SystemClock is the wall clock
func SystemClock() time.Time { return time.Now() }

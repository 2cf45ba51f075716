package ratelimit

import "time"

// Clock provides time operations so limiter behavior can be tested
// deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (c *SystemClock) Now() time.Time {
	return time.Now()
}

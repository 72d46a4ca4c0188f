package clock

import "time"

// Clock abstracts time.Now so the game engine's timestamps can be pinned in
// tests.
type Clock interface {
	Now() time.Time
}

// DefaultClock implements Clock using the system clock.
type DefaultClock struct{}

func (c *DefaultClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clock stuck at a single instant.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time {
	return f.T
}

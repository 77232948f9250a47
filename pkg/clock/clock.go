package clock

import "time"

// Clock abstracts time so the admission gate can run against either the
// wall clock or a controllable virtual clock in tests. Every
// time-dependent decision in sluice goes through this interface instead
// of calling time.Now directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration
	// After returns a channel that receives the current time once d has
	// elapsed. This is the suspension primitive used for admission waits:
	// the caller parks on the channel without holding any locks.
	After(d time.Duration) <-chan time.Time
}

// RealClock delegates to the standard time package.
type RealClock struct{}

func NewRealClock() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

func (c *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (c *RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

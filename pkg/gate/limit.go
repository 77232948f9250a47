package gate

import (
	"fmt"
	"time"
)

// Limit describes one rate ceiling: at most MaxRequests admissions within
// any sliding Window. A Limit is immutable after construction.
//
// The gate tracks limits by identity, not by value: two *Limit values
// built from the same numbers are independent limits, each with its own
// ledger. Passing a freshly constructed but structurally identical Limit
// to UpdateRateLimits therefore discards the old limit's history and
// starts over. Reuse the same *Limit instance when the intent is "keep
// this ceiling and its accumulated admissions".
type Limit struct {
	maxRequests int
	window      time.Duration
}

// NewLimit creates a Limit. maxRequests and window must both be positive;
// anything else is a contract violation reported at construction.
func NewLimit(maxRequests int, window time.Duration) (*Limit, error) {
	if maxRequests <= 0 {
		return nil, fmt.Errorf("gate: max requests must be positive, got %d", maxRequests)
	}
	if window <= 0 {
		return nil, fmt.Errorf("gate: window must be positive, got %s", window)
	}
	return &Limit{maxRequests: maxRequests, window: window}, nil
}

// MustLimit is like NewLimit but panics on invalid input. Intended for
// literals in demos and tests.
func MustLimit(maxRequests int, window time.Duration) *Limit {
	l, err := NewLimit(maxRequests, window)
	if err != nil {
		panic(err)
	}
	return l
}

// MaxRequests returns the admission ceiling for one window.
func (l *Limit) MaxRequests() int {
	return l.maxRequests
}

// Window returns the sliding window duration.
func (l *Limit) Window() time.Duration {
	return l.window
}

// String renders the limit as "<max>/<window>", e.g. "10/1s".
func (l *Limit) String() string {
	return fmt.Sprintf("%d/%s", l.maxRequests, l.window)
}

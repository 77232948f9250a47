package gate

import (
	"errors"
	"fmt"
)

// ErrLimitExceeded is the sentinel matched by errors.Is for every
// rate-limit rejection produced by the gate.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// LimitError reports that a call was rejected because the named limit was
// still at capacity after the single wait cycle. It carries the violated
// limit for diagnostics.
type LimitError struct {
	Limit *Limit
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s", e.Limit)
}

func (e *LimitError) Is(target error) bool {
	return target == ErrLimitExceeded
}

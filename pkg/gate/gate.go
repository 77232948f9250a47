// Package gate provides a concurrency-safe admission gate that throttles
// one asynchronous action against several independent sliding-window rate
// limits at once, with runtime replacement of the active limit set.
package gate

import (
	"context"
	"fmt"
	"sync"

	"github.com/sluice-go/sluice/pkg/clock"
)

// Action is the throttled operation. The gate runs it exactly once per
// successful Perform call; its error and latency are the caller's
// business and do not influence admission decisions.
type Action[A any] func(ctx context.Context, arg A) error

// Gate admits calls to a single action while honoring every limit in its
// active set simultaneously. A caller that finds a window full waits once
// for the nearest projected opening and then makes exactly one more
// attempt; if a concurrent caller took the freed slot first, the call
// fails with ErrLimitExceeded. There is no retry loop and no queueing
// among waiters.
//
// The zero value is not usable; construct with New.
type Gate[A any] struct {
	action   Action[A]
	clock    clock.Clock
	observer func(Event)

	// mu guards the active limit set and every ledger in it. One lock
	// across all limits: critical sections are short (purge, check,
	// append) and are never held across a wait or the action itself.
	mu      sync.RWMutex
	limits  []*Limit
	ledgers map[*Limit]*ledger
}

// Option configures a Gate at construction.
type Option func(*settings)

type settings struct {
	clock    clock.Clock
	observer func(Event)
}

// WithClock substitutes the clock used for timestamps and waits.
func WithClock(c clock.Clock) Option {
	return func(s *settings) { s.clock = c }
}

// WithObserver installs a callback receiving one Event per admission
// outcome. The callback runs on the calling goroutine, outside the
// gate's lock.
func WithObserver(fn func(Event)) Option {
	return func(s *settings) { s.observer = fn }
}

// New creates a Gate around action, enforcing the given limits in order.
// An empty limit set means no throttling is ever applied. Duplicate
// descriptors (same *Limit instance) are collapsed to one entry.
func New[A any](action Action[A], limits []*Limit, opts ...Option) (*Gate[A], error) {
	if action == nil {
		return nil, fmt.Errorf("gate: action is required")
	}

	set := settings{clock: clock.NewRealClock()}
	for _, opt := range opts {
		opt(&set)
	}

	g := &Gate[A]{
		action:   action,
		clock:    set.clock,
		observer: set.observer,
		ledgers:  make(map[*Limit]*ledger, len(limits)),
	}
	for _, l := range limits {
		if l == nil {
			return nil, fmt.Errorf("gate: limit must not be nil")
		}
		if _, ok := g.ledgers[l]; ok {
			continue
		}
		g.ledgers[l] = &ledger{}
		g.limits = append(g.limits, l)
	}
	return g, nil
}

// Perform admits one call through every active limit, runs the action
// exactly once with arg, and records a single shared timestamp against
// every limit in the snapshot afterward. Limits are evaluated
// sequentially in snapshot order, so a wait incurred for an earlier limit
// has already elapsed when later limits are checked.
//
// If any limit rejects, Perform returns a *LimitError naming it, the
// action is not invoked, and no ledger is touched for this call. An
// admission wait runs to completion regardless of ctx; ctx is only
// forwarded to the action.
func (g *Gate[A]) Perform(ctx context.Context, arg A) error {
	limits := g.RateLimits()

	for _, l := range limits {
		if err := g.admit(l); err != nil {
			return err
		}
	}

	err := g.action(ctx, arg)

	// One timestamp for all ledgers, captured after the action completed.
	stamp := g.clock.Now()
	g.mu.Lock()
	for _, l := range limits {
		// A ledger removed by a concurrent UpdateRateLimits stays gone;
		// recording must not resurrect a retired limit.
		if led, ok := g.ledgers[l]; ok {
			led.record(stamp)
		}
	}
	g.mu.Unlock()

	g.emit(Event{Kind: EventAdmitted, At: stamp})
	return err
}

// admit runs the sliding-window check for one limit: purge, immediate
// admission if below capacity, otherwise a single lock-free wait until
// the oldest entry is projected to expire, then one raw re-check of the
// ledger size. The re-check does not purge again: a slot only opens if
// some other caller's purge or a reconfiguration freed it meanwhile.
func (g *Gate[A]) admit(l *Limit) error {
	g.mu.Lock()
	led, ok := g.ledgers[l]
	if !ok {
		// Swapped out after the snapshot was taken; nothing to enforce.
		g.mu.Unlock()
		return nil
	}

	now := g.clock.Now()
	led.purge(now.Add(-l.window))
	if led.size() < l.maxRequests {
		g.mu.Unlock()
		return nil
	}

	wait := l.window - now.Sub(led.oldest())
	g.mu.Unlock()

	g.emit(limitEvent(EventDelayed, l, wait, now))

	// Timed suspension with no locks held; any number of other callers
	// proceed against this and every other limit while we sleep.
	<-g.clock.After(wait)

	g.mu.Lock()
	led, ok = g.ledgers[l]
	stillFull := ok && led.size() >= l.maxRequests
	g.mu.Unlock()

	if stillFull {
		g.emit(limitEvent(EventRejected, l, 0, g.clock.Now()))
		return &LimitError{Limit: l}
	}
	return nil
}

// UpdateRateLimits atomically replaces the active limit set. Descriptors
// present in both the old and new sets (by identity) keep their ledgers
// and accumulated history; new descriptors start with empty ledgers;
// ledgers of removed descriptors are discarded. Calls already past their
// snapshot complete against the limits they captured.
func (g *Gate[A]) UpdateRateLimits(limits []*Limit) {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := make(map[*Limit]*ledger, len(limits))
	ordered := make([]*Limit, 0, len(limits))
	for _, l := range limits {
		if l == nil {
			continue
		}
		if _, ok := next[l]; ok {
			continue
		}
		if existing, ok := g.ledgers[l]; ok {
			next[l] = existing
		} else {
			next[l] = &ledger{}
		}
		ordered = append(ordered, l)
	}

	g.limits = ordered
	g.ledgers = next
}

// RateLimits returns an independent copy of the active limit set, in
// enforcement order. Perform snapshots through this so a concurrent
// reconfiguration cannot mutate the set mid-iteration.
func (g *Gate[A]) RateLimits() []*Limit {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Limit, len(g.limits))
	copy(out, g.limits)
	return out
}

func (g *Gate[A]) emit(ev Event) {
	if g.observer != nil {
		g.observer(ev)
	}
}

package stats

import (
	"context"
	"sync"

	"github.com/sluice-go/sluice/pkg/gate"
)

// MemoryStore is an in-memory Store. It never expires anything; intended
// for single-process servers, demos, and tests.
type MemoryStore struct {
	mu       sync.Mutex
	total    Counters
	byWindow map[string]Counters // keyed by limit string, e.g. "2/1s"
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byWindow: make(map[string]Counters),
	}
}

func (s *MemoryStore) Record(_ context.Context, ev gate.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bump(&s.total, ev.Kind)

	if ev.MaxRequests > 0 {
		key := limitKey(ev)
		c := s.byWindow[key]
		bump(&c, ev.Kind)
		s.byWindow[key] = c
	}
	return nil
}

func (s *MemoryStore) Totals(context.Context) (Counters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total, nil
}

// ByLimit returns per-limit counters keyed by "<max>/<window>".
func (s *MemoryStore) ByLimit() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Counters, len(s.byWindow))
	for k, v := range s.byWindow {
		out[k] = v
	}
	return out
}

func bump(c *Counters, kind gate.EventKind) {
	switch kind {
	case gate.EventAdmitted:
		c.Admitted++
	case gate.EventDelayed:
		c.Delayed++
	case gate.EventRejected:
		c.Rejected++
	}
}

var _ Store = (*MemoryStore)(nil)

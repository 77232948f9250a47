package stats

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sluice-go/sluice/pkg/gate"
)

func TestMemoryStore_Totals(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, gate.Event{Kind: gate.EventAdmitted}))
	require.NoError(t, s.Record(ctx, gate.Event{Kind: gate.EventAdmitted}))
	require.NoError(t, s.Record(ctx, gate.Event{Kind: gate.EventDelayed, MaxRequests: 2, Window: time.Second}))
	require.NoError(t, s.Record(ctx, gate.Event{Kind: gate.EventRejected, MaxRequests: 2, Window: time.Second}))

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counters{Admitted: 2, Delayed: 1, Rejected: 1}, totals)

	byLimit := s.ByLimit()
	assert.Equal(t, Counters{Delayed: 1, Rejected: 1}, byLimit["2/1s"])
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Record(ctx, gate.Event{Kind: gate.EventAdmitted})
			}
		}()
	}
	wg.Wait()

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), totals.Admitted)
}

package generate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ValidatesOptions(t *testing.T) {
	r := NewRunner(nil)
	ctx := context.Background()

	_, err := r.Run(ctx, Options{Count: 0, Rate: 5, Target: "http://x"})
	assert.Error(t, err)

	_, err = r.Run(ctx, Options{Count: 5, Rate: 0, Target: "http://x"})
	assert.Error(t, err)

	_, err = r.Run(ctx, Options{Count: 5, Rate: 5})
	assert.Error(t, err)
}

func TestRun_CountsOutcomes(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/perform", r.URL.Path)
		// Admit the first three requests, throttle the rest.
		if calls.Add(1) <= 3 {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := NewRunner(nil)
	res, err := r.Run(context.Background(), Options{
		Target:  srv.URL,
		Count:   8,
		Rate:    1000,
		Pattern: PatternBurst,
		Seed:    1,
	})
	require.NoError(t, err)

	assert.Equal(t, 8, res.Sent)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 5, res.Throttled)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, int64(8), calls.Load())
}

func TestRun_ReportsTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse every connection

	r := NewRunner(nil)
	res, err := r.Run(context.Background(), Options{
		Target: srv.URL,
		Count:  2,
		Rate:   1000,
		Seed:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
}

func TestRun_HonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	r := NewRunner(nil)
	res, err := r.Run(ctx, Options{
		Target:  srv.URL,
		Count:   1000,
		Rate:    1, // far too slow to finish inside the deadline
		Pattern: PatternSteady,
		Seed:    1,
	})
	require.Error(t, err)
	assert.Less(t, res.Sent, 1000)
}

package server

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/sluice-go/sluice/pkg/gate"
)

// exchange is the argument the gateway's gate carries through Perform:
// one in-flight HTTP request and its response writer.
type exchange struct {
	w http.ResponseWriter
	r *http.Request
}

// Gateway wraps an http.Handler so every request passes the admission
// gate before reaching it. The wrapped handler is the gate's action, so
// each request that gets through counts against every active limit.
type Gateway struct {
	g *gate.Gate[exchange]
}

// NewGateway builds a gateway enforcing limits in front of next.
func NewGateway(next http.Handler, limits []*gate.Limit, opts ...gate.Option) (*Gateway, error) {
	if next == nil {
		return nil, errors.New("server: next handler is required")
	}

	g, err := gate.New(func(ctx context.Context, ex exchange) error {
		next.ServeHTTP(ex.w, ex.r.WithContext(ctx))
		return nil
	}, limits, opts...)
	if err != nil {
		return nil, err
	}
	return &Gateway{g: g}, nil
}

func (gw *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := gw.g.Perform(r.Context(), exchange{w: w, r: r})
	if err == nil {
		return
	}

	var lerr *gate.LimitError
	if errors.As(err, &lerr) {
		writeRateLimited(w, lerr)
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// UpdateRateLimits swaps the enforced limit set for all requests that
// start afterward.
func (gw *Gateway) UpdateRateLimits(limits []*gate.Limit) {
	gw.g.UpdateRateLimits(limits)
}

// RateLimits returns a copy of the currently enforced limits.
func (gw *Gateway) RateLimits() []*gate.Limit {
	return gw.g.RateLimits()
}

func writeRateLimited(w http.ResponseWriter, lerr *gate.LimitError) {
	// The violated limit's window is the worst-case horizon for a slot
	// to open; surface it as the retry hint.
	retryAfter := int(math.Ceil(lerr.Limit.Window().Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(lerr.Limit.MaxRequests()))
	w.Header().Set("X-RateLimit-Window", lerr.Limit.Window().String())
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded","limit":"` + lerr.Limit.String() + `"}` + "\n"))
}

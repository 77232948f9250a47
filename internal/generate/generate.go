// Package generate drives synthetic traffic against a running sluice
// server, useful for demonstrating admission behavior under load.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// PatternSteady spaces requests evenly at the target rate.
	PatternSteady = "steady"
	// PatternBurst sends clustered bursts with quiet gaps between them.
	PatternBurst = "burst"
	// PatternRamp starts slow and accelerates toward the target rate.
	PatternRamp = "ramp"
)

// Options controls a traffic run.
type Options struct {
	Target  string        // base URL of the server, e.g. http://localhost:8080
	Count   int           // total requests to send
	Rate    float64       // target requests per second
	Pattern string        // steady, burst or ramp
	Names   int           // size of the synthetic job-name pool
	Seed    int64         // rng seed, 0 means time-based
	Timeout time.Duration // per-request timeout
}

// DefaultOptions returns defaults aligned with the sluice CLI behavior.
func DefaultOptions() Options {
	return Options{
		Target:  "http://localhost:8080",
		Count:   50,
		Rate:    5,
		Pattern: PatternSteady,
		Names:   3,
		Timeout: 10 * time.Second,
	}
}

// Result summarizes one traffic run.
type Result struct {
	Sent      int
	Succeeded int
	Throttled int
	Failed    int
	Elapsed   time.Duration
}

// Runner sends paced requests at a sluice server's gated work endpoint.
type Runner struct {
	client *http.Client
	logger *zap.Logger
}

// NewRunner builds a Runner. A nil logger disables logging.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		client: &http.Client{},
		logger: logger,
	}
}

// Run sends opts.Count requests to the target's /api/perform endpoint,
// paced according to the chosen pattern, and reports how the server
// answered. Throttled counts 429 responses; Failed counts transport
// errors and any other non-200 status.
func (r *Runner) Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Count <= 0 {
		return Result{}, fmt.Errorf("count must be positive, got %d", opts.Count)
	}
	if opts.Rate <= 0 {
		return Result{}, fmt.Errorf("rate must be positive, got %g", opts.Rate)
	}
	if opts.Target == "" {
		return Result{}, fmt.Errorf("target must not be empty")
	}
	if opts.Pattern == "" {
		opts.Pattern = PatternSteady
	}
	if opts.Names <= 0 {
		opts.Names = 3
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Timeout > 0 {
		r.client.Timeout = opts.Timeout
	}

	limiter := newPacer(opts)
	rng := rand.New(rand.NewSource(opts.Seed))
	url := opts.Target + "/api/perform"

	start := time.Now()
	var res Result
	for i := 0; i < opts.Count; i++ {
		if opts.Pattern == PatternRamp {
			// Quadratic ramp from a tenth of the target rate up to
			// the full rate over the course of the run.
			frac := float64(i) / float64(opts.Count)
			limiter.SetLimit(rate.Limit(opts.Rate * (0.1 + 0.9*frac*frac)))
		}
		if err := limiter.Wait(ctx); err != nil {
			res.Elapsed = time.Since(start)
			return res, err
		}

		name := fmt.Sprintf("user-%d", rng.Intn(opts.Names)+1)
		res.Sent++
		switch status, err := r.send(ctx, url, name); {
		case err != nil:
			res.Failed++
			r.logger.Warn("request failed", zap.String("name", name), zap.Error(err))
		case status == http.StatusOK:
			res.Succeeded++
		case status == http.StatusTooManyRequests:
			res.Throttled++
		default:
			res.Failed++
			r.logger.Warn("unexpected status", zap.String("name", name), zap.Int("status", status))
		}
	}
	res.Elapsed = time.Since(start)

	r.logger.Info("traffic run complete",
		zap.Int("sent", res.Sent),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("throttled", res.Throttled),
		zap.Int("failed", res.Failed),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func (r *Runner) send(ctx context.Context, url, name string) (int, error) {
	body, _ := json.Marshal(map[string]string{"name": name})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

// newPacer picks a rate.Limiter shape for the pattern. Steady allows no
// burst so requests are evenly spaced; burst banks a quarter of the run
// to release in clusters; ramp starts slow and is re-tuned per request.
func newPacer(opts Options) *rate.Limiter {
	switch opts.Pattern {
	case PatternBurst:
		burst := opts.Count / 4
		if burst < 1 {
			burst = 1
		}
		return rate.NewLimiter(rate.Limit(opts.Rate), burst)
	case PatternRamp:
		return rate.NewLimiter(rate.Limit(opts.Rate*0.1), 1)
	default: // steady and unknown patterns pace evenly
		return rate.NewLimiter(rate.Limit(opts.Rate), 1)
	}
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sluice-go/sluice/internal/metrics"
	"github.com/sluice-go/sluice/internal/recorder"
	"github.com/sluice-go/sluice/internal/stats"
	"github.com/sluice-go/sluice/pkg/clock"
	"github.com/sluice-go/sluice/pkg/gate"
)

// Options configures a Server. Zero-value fields get safe defaults;
// Recorder, Hub, and Metrics stay disabled when nil.
type Options struct {
	Logger   *zap.Logger
	Clock    clock.Clock
	Stats    stats.Store
	Recorder *recorder.Recorder
	Hub      *Hub
	Metrics  *metrics.Metrics
}

// Server is the sluice HTTP gateway: a demonstration work endpoint behind
// the admission gate, plus runtime limit management, stats, a live event
// stream, and Prometheus metrics.
type Server struct {
	httpServer *http.Server
	gateway    *Gateway
	logger     *zap.Logger
	clock      clock.Clock
	stats      stats.Store
	recorder   *recorder.Recorder
	hub        *Hub
	metrics    *metrics.Metrics
}

// New creates a Server enforcing the given limits on its work endpoint.
func New(addr string, limits []*gate.Limit, opts Options) (*Server, error) {
	s := &Server{
		logger:   opts.Logger,
		clock:    opts.Clock,
		stats:    opts.Stats,
		recorder: opts.Recorder,
		hub:      opts.Hub,
		metrics:  opts.Metrics,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.clock == nil {
		s.clock = clock.NewRealClock()
	}
	if s.stats == nil {
		s.stats = stats.NewMemoryStore()
	}

	gw, err := NewGateway(
		http.HandlerFunc(s.handleWork),
		limits,
		gate.WithClock(s.clock),
		gate.WithObserver(s.observe),
	)
	if err != nil {
		return nil, err
	}
	s.gateway = gw

	if s.metrics != nil {
		s.metrics.ActiveLimits.Set(float64(len(limits)))
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodPost, "/api/perform", s.gateway)
	r.Get("/api/limits", s.handleGetLimits)
	r.Put("/api/limits", s.handleUpdateLimits)
	r.Get("/api/stats", s.handleStats)
	r.Get("/dashboard", s.handleDashboard)
	r.Handle("/metrics", promhttp.Handler())
	if s.hub != nil {
		r.Get("/ws", s.hub.HandleWebSocket)
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s, nil
}

// observe fans one gate event out to stats, metrics, the recorder, and
// the websocket hub. Runs on the admitting caller's goroutine.
func (s *Server) observe(ev gate.Event) {
	if err := s.stats.Record(context.Background(), ev); err != nil {
		s.logger.Warn("stats record failed", zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.Observe(ev)
	}
	if s.recorder == nil && s.hub == nil {
		return
	}

	rec := recorder.FromEvent(ev)
	if s.recorder != nil {
		if err := s.recorder.Record(rec); err != nil {
			s.logger.Warn("recorder failed", zap.Error(err))
		}
	}
	if s.hub != nil {
		s.hub.Broadcast(rec)
	}
}

// ApplyLimits swaps the enforced limit set at runtime; requests that
// started earlier finish against the limits they saw.
func (s *Server) ApplyLimits(limits []*gate.Limit) {
	s.gateway.UpdateRateLimits(limits)
	if s.metrics != nil {
		s.metrics.ActiveLimits.Set(float64(len(limits)))
	}
	s.logger.Info("rate limits updated", zap.Int("count", len(limits)))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "sluice",
		"status":  "running",
		"time":    s.clock.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// workRequest is the optional body for the gated work endpoint.
type workRequest struct {
	Name string `json:"name"`
	Work string `json:"work"` // simulated work duration, e.g. "25ms"
}

// handleWork is the throttled action: it simulates a downstream call and
// reports completion. It only ever runs after every limit admitted.
func (s *Server) handleWork(w http.ResponseWriter, r *http.Request) {
	var req workRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body is optional
	}

	if req.Work != "" {
		d, err := time.ParseDuration(req.Work)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid work duration: %v", err)})
			return
		}
		<-s.clock.After(d)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "completed",
		"name":         req.Name,
		"completed_at": s.clock.Now().Format(time.RFC3339Nano),
	})
}

// limitPayload is the wire form of one limit.
type limitPayload struct {
	MaxRequests int    `json:"max_requests"`
	Window      string `json:"window"`
}

func (s *Server) handleGetLimits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"limits": toPayload(s.gateway.RateLimits()),
	})
}

func (s *Server) handleUpdateLimits(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Limits []limitPayload `json:"limits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid body: %v", err)})
		return
	}

	limits := make([]*gate.Limit, 0, len(body.Limits))
	for i, p := range body.Limits {
		window, err := time.ParseDuration(p.Window)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("limits[%d]: invalid window: %v", i, err)})
			return
		}
		l, err := gate.NewLimit(p.MaxRequests, window)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("limits[%d]: %v", i, err)})
			return
		}
		limits = append(limits, l)
	}

	s.ApplyLimits(limits)
	writeJSON(w, http.StatusOK, map[string]any{
		"limits": toPayload(s.gateway.RateLimits()),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	totals, err := s.stats.Totals(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(dashboardHTML))
}

func toPayload(limits []*gate.Limit) []limitPayload {
	out := make([]limitPayload, 0, len(limits))
	for _, l := range limits {
		out = append(out, limitPayload{
			MaxRequests: l.MaxRequests(),
			Window:      l.Window().String(),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Start begins listening. It blocks until the server is shut down.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("sluice server listening", zap.String("addr", ln.Addr().String()))
	return s.httpServer.Serve(ln)
}

// StartOnListener begins serving on the provided listener. Useful for
// tests that need an ephemeral port.
func (s *Server) StartOnListener(ln net.Listener) error {
	s.logger.Info("sluice server listening", zap.String("addr", ln.Addr().String()))
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

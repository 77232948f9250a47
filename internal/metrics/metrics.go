// Package metrics exposes Prometheus instrumentation for the admission
// gate and the HTTP gateway around it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sluice-go/sluice/pkg/gate"
)

// Metrics bundles the collectors for one gateway instance.
type Metrics struct {
	Admissions   *prometheus.CounterVec
	WaitSeconds  prometheus.Histogram
	ActiveLimits prometheus.Gauge
}

// New registers the sluice collectors on reg and returns them. Pass
// prometheus.DefaultRegisterer outside of tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Admissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sluice",
			Name:      "admissions_total",
			Help:      "Gate admission outcomes by kind.",
		}, []string{"kind"}),
		WaitSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sluice",
			Name:      "wait_seconds",
			Help:      "Time callers spent suspended waiting for a window slot.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		ActiveLimits: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sluice",
			Name:      "active_limits",
			Help:      "Number of limits currently enforced by the gate.",
		}),
	}
}

// Observe folds one gate event into the collectors.
func (m *Metrics) Observe(ev gate.Event) {
	m.Admissions.WithLabelValues(string(ev.Kind)).Inc()
	if ev.Kind == gate.EventDelayed {
		m.WaitSeconds.Observe(ev.Wait.Seconds())
	}
}

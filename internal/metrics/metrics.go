package metrics

import (
	"podsync/internal/inventory"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "podsync"

// Metrics holds the collectors describing reconciliation passes.
type Metrics struct {
	PassesTotal     *prometheus.CounterVec
	PassDuration    prometheus.Histogram
	ProductsTotal   *prometheus.CounterVec
	LastPassSuccess prometheus.Gauge
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// binaries and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PassesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "passes_total",
			Help:      "Reconciliation passes by trigger and final status",
		}, []string{"trigger", "status"}),
		PassDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "pass_duration_seconds",
			Help:      "Wall time of a reconciliation pass",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		ProductsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "products_total",
			Help:      "Products checked by decision and terminal state",
		}, []string{"decision", "state"}),
		LastPassSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "last_pass_success_timestamp_seconds",
			Help:      "Unix time of the last pass that listed the store successfully",
		}),
	}
}

// ObservePass records a finished pass. report is nil when the store listing failed.
func (m *Metrics) ObservePass(trigger, status string, report *inventory.Report) {
	m.PassesTotal.WithLabelValues(trigger, status).Inc()
	if report == nil {
		return
	}

	if !report.FinishedAt.IsZero() {
		m.PassDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
		m.LastPassSuccess.Set(float64(report.FinishedAt.Unix()))
	}
	for _, res := range report.Results {
		decision := string(res.Decision)
		if decision == "" {
			decision = "none"
		}
		m.ProductsTotal.WithLabelValues(decision, string(res.State)).Inc()
	}
}

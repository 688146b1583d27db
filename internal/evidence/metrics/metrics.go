// Package metrics provides observability for the obligation-evidence mapper
// and conflict detector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects mapper counters. A nil receiver is safe everywhere so
// tests can pass nil.
type Metrics struct {
	// Evidence verdicts by satisfaction status.
	Verdicts *prometheus.CounterVec

	// Conflicting obligation rows detected per run.
	ConflictRows prometheus.Counter

	// Duration of one full mapping pass for a fund.
	MapLatency prometheus.Histogram
}

// New registers and returns the mapper metrics.
func New() *Metrics {
	return &Metrics{
		Verdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "govlink_evidence_verdicts_total",
			Help: "Obligation evidence verdicts, by satisfaction status",
		}, []string{"status"}),

		ConflictRows: promauto.NewCounter(prometheus.CounterOpts{
			Name: "govlink_evidence_conflict_rows_total",
			Help: "Obligation register rows found in a conflicting group",
		}),

		MapLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "govlink_evidence_map_duration_seconds",
			Help:    "Duration of one obligation-evidence mapping pass",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// ObserveVerdict records one evidence verdict.
func (m *Metrics) ObserveVerdict(status string) {
	if m != nil {
		m.Verdicts.WithLabelValues(status).Inc()
	}
}

// ObserveConflictRows records rows belonging to conflicting groups.
func (m *Metrics) ObserveConflictRows(n int) {
	if m != nil {
		m.ConflictRows.Add(float64(n))
	}
}

// ObservePass records the latency of one mapping pass.
func (m *Metrics) ObservePass(d time.Duration) {
	if m != nil {
		m.MapLatency.Observe(d.Seconds())
	}
}

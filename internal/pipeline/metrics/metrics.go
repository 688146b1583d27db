// Package metrics provides observability for pipeline runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects run counters. A nil receiver is safe everywhere so tests
// can pass nil.
type Metrics struct {
	// Completed runs by final status.
	Runs *prometheus.CounterVec

	// Per-stage latency.
	StageLatency *prometheus.HistogramVec

	// Full-run latency.
	RunLatency prometheus.Histogram
}

// New registers and returns the pipeline metrics.
func New() *Metrics {
	return &Metrics{
		Runs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "govlink_pipeline_runs_total",
			Help: "Completed pipeline runs, by final status",
		}, []string{"status"}),

		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "govlink_pipeline_stage_duration_seconds",
			Help:    "Duration of one pipeline stage",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),

		RunLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "govlink_pipeline_run_duration_seconds",
			Help:    "Duration of one full pipeline run for a fund",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// ObserveRun records a completed run.
func (m *Metrics) ObserveRun(status string, d time.Duration) {
	if m != nil {
		m.Runs.WithLabelValues(status).Inc()
		m.RunLatency.Observe(d.Seconds())
	}
}

// ObserveStage records one stage's latency.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

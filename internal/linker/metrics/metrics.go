// Package metrics provides observability for the cross-container linker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects linker counters. A nil receiver is safe everywhere so
// tests can pass nil.
type Metrics struct {
	// Links created or refreshed, by link type and outcome.
	LinksUpserted *prometheus.CounterVec

	// Candidate links discarded by the authority permission matrix.
	MatrixRejections *prometheus.CounterVec

	// Per-document linking latency.
	LinkLatency prometheus.Histogram
}

// New registers and returns the linker metrics.
func New() *Metrics {
	return &Metrics{
		LinksUpserted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "govlink_linker_links_upserted_total",
			Help: "Knowledge links created or refreshed, by link type and outcome",
		}, []string{"link_type", "outcome"}), // outcome: "created", "refreshed"

		MatrixRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "govlink_linker_matrix_rejections_total",
			Help: "Candidate links discarded by the authority permission matrix",
		}, []string{"tier", "link_type"}),

		LinkLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "govlink_linker_document_duration_seconds",
			Help:    "Duration of linking one document against the entity index",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveUpsert records a link upsert outcome.
func (m *Metrics) ObserveUpsert(linkType string, created bool) {
	if m != nil {
		outcome := "refreshed"
		if created {
			outcome = "created"
		}
		m.LinksUpserted.WithLabelValues(linkType, outcome).Inc()
	}
}

// ObserveRejection records a permission-matrix discard.
func (m *Metrics) ObserveRejection(tier, linkType string) {
	if m != nil {
		m.MatrixRejections.WithLabelValues(tier, linkType).Inc()
	}
}

// ObserveDocument records the latency of linking one document.
func (m *Metrics) ObserveDocument(d time.Duration) {
	if m != nil {
		m.LinkLatency.Observe(d.Seconds())
	}
}

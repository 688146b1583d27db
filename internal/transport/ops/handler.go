// Package ops exposes the linker's operational HTTP surface: health,
// metrics, and the latest run summaries. The business API remains owned by
// downstream consumers of the graph rows; this listener is for operators.
package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"govlink/internal/pipeline"
	"govlink/pkg/domain"
)

// RunLog keeps the most recent run summary per fund for the ops endpoint.
type RunLog struct {
	mu     sync.RWMutex
	latest map[domain.FundID]pipeline.Summary
}

// NewRunLog creates an empty run log.
func NewRunLog() *RunLog {
	return &RunLog{latest: make(map[domain.FundID]pipeline.Summary)}
}

// Record stores a completed run's summary, replacing the fund's previous one.
func (l *RunLog) Record(s pipeline.Summary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.latest[s.FundID] = s
}

// Latest returns the stored summaries ordered by fund for stable output.
func (l *RunLog) Latest() []pipeline.Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]pipeline.Summary, 0, len(l.latest))
	for _, s := range l.latest {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FundID.String() < out[j].FundID.String() })
	return out
}

// HealthChecker reports the liveness of one dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler serves the ops endpoints.
type Handler struct {
	logger *slog.Logger
	runs   *RunLog
	checks map[string]HealthChecker
}

// New creates the ops Handler. checks maps dependency names to their health
// probes; nil values are skipped so optional dependencies wire cleanly.
func New(logger *slog.Logger, runs *RunLog, checks map[string]HealthChecker) *Handler {
	filtered := make(map[string]HealthChecker, len(checks))
	for name, c := range checks {
		if c != nil {
			filtered[name] = c
		}
	}
	return &Handler{logger: logger, runs: runs, checks: filtered}
}

// Register registers the ops routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/v1/runs/latest", h.handleLatestRuns)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Health(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":       http.StatusText(status),
		"dependencies": deps,
	})
}

func (h *Handler) handleLatestRuns(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.runs.Latest()); err != nil {
		h.logger.ErrorContext(r.Context(), "encode run summaries", "error", err)
	}
}

// DBHealth adapts a sql.DB to the HealthChecker interface.
type DBHealth struct {
	DB *sql.DB
}

func (d DBHealth) Health(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

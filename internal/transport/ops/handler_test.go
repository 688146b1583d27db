package ops

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govlink/internal/pipeline"
	"govlink/pkg/domain"
)

type staticCheck struct {
	err error
}

func (c staticCheck) Health(context.Context) error { return c.err }

func newTestRouter(runs *RunLog, checks map[string]HealthChecker) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(logger, runs, checks).Register(r)
	return r
}

func TestHandleHealth(t *testing.T) {
	t.Run("all dependencies healthy", func(t *testing.T) {
		router := newTestRouter(NewRunLog(), map[string]HealthChecker{
			"postgres": staticCheck{},
			"redis":    nil, // optional dependency not configured
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		deps := body["dependencies"].(map[string]any)
		assert.Equal(t, "ok", deps["postgres"])
		assert.NotContains(t, deps, "redis")
	})

	t.Run("failing dependency degrades status", func(t *testing.T) {
		router := newTestRouter(NewRunLog(), map[string]HealthChecker{
			"postgres": staticCheck{err: errors.New("connection refused")},
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHandleLatestRuns(t *testing.T) {
	runs := NewRunLog()
	fund := domain.FundID(uuid.New())
	runs.Record(pipeline.Summary{
		RunID:  domain.NewRunID(),
		FundID: fund,
		Mode:   "batch",
		AsOf:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Status: pipeline.StatusPass,
		Payload: pipeline.Payload{
			EntitiesLinked: 4,
			LinksCreated:   9,
		},
	})
	// A second run for the same fund replaces the first.
	runs.Record(pipeline.Summary{
		RunID:  domain.NewRunID(),
		FundID: fund,
		Mode:   "batch",
		Status: pipeline.StatusPartial,
	})

	router := newTestRouter(runs, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs/latest", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var summaries []pipeline.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, pipeline.StatusPartial, summaries[0].Status)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(NewRunLog(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

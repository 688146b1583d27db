// Package audit captures the run trail of the linking engine: stage
// transitions, governance decisions, and run summaries. Events are
// transport-agnostic so stores and sinks can fan out.
package audit

import (
	"context"
	"time"

	id "govlink/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. Categories
// map to retention policies and downstream routing.
type EventCategory string

const (
	// CategoryRun covers pipeline lifecycle events: stage start/finish,
	// run summaries, BLOCK signals. Short retention, operational use.
	CategoryRun EventCategory = "run"

	// CategoryGovernance covers events with compliance significance:
	// authority resolutions, conflict detections, evidence verdicts.
	CategoryGovernance EventCategory = "governance"
)

// Action names a recorded occurrence.
type Action string

const (
	ActionRunStarted       Action = "run.started"
	ActionRunCompleted     Action = "run.completed"
	ActionRunBlocked       Action = "run.blocked"
	ActionStageCompleted   Action = "stage.completed"
	ActionConflictDetected Action = "conflict.detected"
)

// Category maps an action to its event category.
func (a Action) Category() EventCategory {
	if a == ActionConflictDetected {
		return CategoryGovernance
	}
	return CategoryRun
}

// Event is one audit record for a pipeline run.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	RunID     id.RunID
	FundID    id.FundID
	Action    Action
	// Stage names the pipeline stage the event belongs to, empty for
	// run-level events.
	Stage string
	// Outcome carries the run status or stage verdict.
	Outcome string
	// Detail is free-text context: counts, divergent rules, block reasons.
	Detail string
}

// Store is the append-only persistence port for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByRun(ctx context.Context, run id.RunID) ([]Event, error)
}

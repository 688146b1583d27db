// Package postgres persists audit events to the run_audit_events table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "govlink/pkg/domain"
	audit "govlink/pkg/platform/audit"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_audit_events (id, category, occurred_at, run_id, fund_id, action, stage, outcome, detail)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(), string(event.Category), event.Timestamp,
		uuid.UUID(event.RunID), uuid.UUID(event.FundID),
		string(event.Action), event.Stage, event.Outcome, event.Detail,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByRun(ctx context.Context, run id.RunID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, occurred_at, run_id, fund_id, action, stage, outcome, detail
		 FROM run_audit_events WHERE run_id = $1 ORDER BY occurred_at, id`,
		uuid.UUID(run),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var (
			e        audit.Event
			category string
			action   string
			runID    uuid.UUID
			fundID   uuid.UUID
		)
		if err := rows.Scan(&category, &e.Timestamp, &runID, &fundID, &action, &e.Stage, &e.Outcome, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		e.Action = audit.Action(action)
		e.RunID = id.RunID(runID)
		e.FundID = id.FundID(fundID)
		out = append(out, e)
	}
	return out, rows.Err()
}

package obligation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"govlink/pkg/domain"
	"govlink/pkg/platform/sentinel"
)

// Postgres reads the obligation register table maintained by the extraction
// collaborator.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed register reader.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const selectEntry = `
	SELECT fund_id, obligation_id, obligation_text, due_rule, frequency,
	       responsible_party, status, source_document_ids, effective_at
	FROM obligation_register`

func (s *Postgres) ListByFund(ctx context.Context, fund domain.FundID, asOf time.Time) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		selectEntry+` WHERE fund_id = $1 AND effective_at <= $2 ORDER BY obligation_id`,
		uuid.UUID(fund), asOf)
	if err != nil {
		return nil, fmt.Errorf("list obligation register: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan obligation entry: %w", err)
		}
		out = append(out, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate obligation register: %w", err)
	}
	return out, nil
}

func (s *Postgres) FindByObligationID(ctx context.Context, fund domain.FundID, obligationID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		selectEntry+` WHERE fund_id = $1 AND obligation_id = $2`,
		uuid.UUID(fund), obligationID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find obligation entry: %w", err)
	}
	return entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (*Entry, error) {
	var (
		entry   Entry
		fund    uuid.UUID
		sources pq.StringArray
		dueRule sql.NullString
	)
	err := r.Scan(&fund, &entry.ObligationID, &entry.Text, &dueRule,
		&entry.Frequency, &entry.ResponsibleParty, &entry.Status,
		&sources, &entry.EffectiveAt)
	if err != nil {
		return nil, err
	}
	entry.FundID = domain.FundID(fund)
	entry.DueRule = dueRule.String
	for _, src := range sources {
		id, err := domain.ParseDocumentID(src)
		if err != nil {
			continue // malformed references degrade to "cannot resolve"
		}
		entry.SourceDocumentIDs = append(entry.SourceDocumentIDs, id)
	}
	return &entry, nil
}

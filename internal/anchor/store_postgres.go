package anchor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"govlink/pkg/domain"
)

// Postgres implements Store on PostgreSQL. Replace-on-extract runs as a
// single transaction: delete the document's anchor set, insert the fresh
// one.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed anchor store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) ReplaceForDocument(ctx context.Context, fund domain.FundID, doc domain.DocumentID, anchors []Anchor) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin anchor replace: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM knowledge_anchors WHERE fund_id = $1 AND document_id = $2`,
		uuid.UUID(fund), uuid.UUID(doc),
	)
	if err != nil {
		return fmt.Errorf("delete anchors: %w", err)
	}

	for i, a := range anchors {
		var page sql.NullInt32
		if a.Page != nil {
			page = sql.NullInt32{Int32: int32(*a.Page), Valid: true}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO knowledge_anchors (fund_id, document_id, seq, anchor_type, value, snippet, page, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
			uuid.UUID(fund), uuid.UUID(doc), i, string(a.Type), a.Value, a.Snippet, page,
		)
		if err != nil {
			return fmt.Errorf("insert anchor %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (s *Postgres) ListByDocument(ctx context.Context, fund domain.FundID, doc domain.DocumentID) ([]Anchor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT anchor_type, value, snippet, page
		 FROM knowledge_anchors
		 WHERE fund_id = $1 AND document_id = $2
		 ORDER BY seq`,
		uuid.UUID(fund), uuid.UUID(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("list anchors: %w", err)
	}
	defer rows.Close()

	var out []Anchor
	for rows.Next() {
		var (
			a    Anchor
			typ  string
			page sql.NullInt32
		)
		if err := rows.Scan(&typ, &a.Value, &a.Snippet, &page); err != nil {
			return nil, fmt.Errorf("scan anchor: %w", err)
		}
		a.Type = Type(typ)
		if page.Valid {
			p := int(page.Int32)
			a.Page = &p
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

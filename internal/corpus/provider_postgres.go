package corpus

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"govlink/internal/registry"
)

// PostgresProvider reads extracted chunks from the document_chunks table,
// populated by the external extraction collaborator.
type PostgresProvider struct {
	db *sql.DB
}

// NewPostgresProvider constructs a PostgreSQL-backed chunk provider.
func NewPostgresProvider(db *sql.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

func (p *PostgresProvider) Chunks(ctx context.Context, doc *registry.Document) ([]Chunk, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT seq, body FROM document_chunks
		 WHERE fund_id = $1 AND document_id = $2
		 ORDER BY seq`,
		uuid.UUID(doc.FundID), uuid.UUID(doc.ID),
	)
	if err != nil {
		return nil, &ExtractionError{DocumentID: doc.ID.String(), Stage: "query", Err: err}
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.Seq, &c.Body); err != nil {
			return nil, &ExtractionError{DocumentID: doc.ID.String(), Stage: "scan", Err: err}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &ExtractionError{DocumentID: doc.ID.String(), Stage: "scan", Err: fmt.Errorf("iterate chunks: %w", err)}
	}
	return out, nil
}

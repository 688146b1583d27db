package index

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"govlink/pkg/domain"
)

// PostgresManagerFeed reads manager profiles maintained by the upstream
// profile collaborator.
type PostgresManagerFeed struct {
	db *sql.DB
}

func NewPostgresManagerFeed(db *sql.DB) *PostgresManagerFeed {
	return &PostgresManagerFeed{db: db}
}

func (f *PostgresManagerFeed) List(ctx context.Context, fund domain.FundID, asOf time.Time) ([]ManagerProfile, error) {
	rows, err := f.db.QueryContext(ctx,
		`SELECT name, effective_at FROM manager_profiles
		 WHERE fund_id = $1 AND effective_at <= $2 ORDER BY name`,
		uuid.UUID(fund), asOf)
	if err != nil {
		return nil, fmt.Errorf("list manager profiles: %w", err)
	}
	defer rows.Close()

	out := make([]ManagerProfile, 0)
	for rows.Next() {
		p := ManagerProfile{FundID: fund}
		if err := rows.Scan(&p.Name, &p.EffectiveAt); err != nil {
			return nil, fmt.Errorf("scan manager profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate manager profiles: %w", err)
	}
	return out, nil
}

// PostgresDealFeed reads deals maintained by the upstream deal collaborator.
type PostgresDealFeed struct {
	db *sql.DB
}

func NewPostgresDealFeed(db *sql.DB) *PostgresDealFeed {
	return &PostgresDealFeed{db: db}
}

func (f *PostgresDealFeed) List(ctx context.Context, fund domain.FundID) ([]Deal, error) {
	rows, err := f.db.QueryContext(ctx,
		`SELECT name, COALESCE(sponsor, '') FROM deals WHERE fund_id = $1 ORDER BY name`,
		uuid.UUID(fund))
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	out := make([]Deal, 0)
	for rows.Next() {
		d := Deal{FundID: fund}
		if err := rows.Scan(&d.Name, &d.Sponsor); err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deals: %w", err)
	}
	return out, nil
}

package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"govlink/internal/authority"
	"govlink/pkg/domain"
	"govlink/pkg/platform/sentinel"
)

// Postgres implements Store on PostgreSQL. Business-key uniqueness is
// enforced by unique indexes and ON CONFLICT upserts; the xmax = 0 check
// distinguishes inserts from updates so callers can count new rows.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed graph store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) UpsertEntity(ctx context.Context, entity *Entity) (bool, error) {
	if entity.ID.IsNil() {
		entity.ID = domain.NewEntityID()
	}
	query := `
		INSERT INTO knowledge_entities (id, fund_id, entity_type, canonical_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (fund_id, entity_type, canonical_name) DO UPDATE SET
			updated_at = now()
		RETURNING id, created_at, updated_at, (xmax = 0) AS created
	`
	var (
		id      uuid.UUID
		created bool
	)
	err := s.db.QueryRowContext(ctx, query,
		uuid.UUID(entity.ID), uuid.UUID(entity.FundID), string(entity.Type), entity.CanonicalName,
	).Scan(&id, &entity.CreatedAt, &entity.UpdatedAt, &created)
	if err != nil {
		return false, fmt.Errorf("upsert knowledge entity: %w", err)
	}
	entity.ID = domain.EntityID(id)
	return created, nil
}

func (s *Postgres) FindEntity(ctx context.Context, fund domain.FundID, entityType EntityType, canonicalName string) (*Entity, error) {
	var (
		e   Entity
		id  uuid.UUID
		typ string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, entity_type, canonical_name, created_at, updated_at
		 FROM knowledge_entities
		 WHERE fund_id = $1 AND entity_type = $2 AND canonical_name = $3`,
		uuid.UUID(fund), string(entityType), canonicalName,
	).Scan(&id, &typ, &e.CanonicalName, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find knowledge entity: %w", err)
	}
	e.ID = domain.EntityID(id)
	e.FundID = fund
	e.Type = EntityType(typ)
	return &e, nil
}

func (s *Postgres) ListEntities(ctx context.Context, fund domain.FundID) ([]Entity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity_type, canonical_name, created_at, updated_at
		 FROM knowledge_entities WHERE fund_id = $1
		 ORDER BY entity_type, canonical_name`,
		uuid.UUID(fund))
	if err != nil {
		return nil, fmt.Errorf("list knowledge entities: %w", err)
	}
	defer rows.Close()

	out := make([]Entity, 0)
	for rows.Next() {
		var (
			e   Entity
			id  uuid.UUID
			typ string
		)
		if err := rows.Scan(&id, &typ, &e.CanonicalName, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan knowledge entity: %w", err)
		}
		e.ID = domain.EntityID(id)
		e.FundID = fund
		e.Type = EntityType(typ)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge entities: %w", err)
	}
	return out, nil
}

func (s *Postgres) UpsertLink(ctx context.Context, link *Link) (bool, error) {
	if link.ID == (domain.LinkID{}) {
		link.ID = domain.NewLinkID()
	}
	query := `
		INSERT INTO knowledge_links (
			id, fund_id, source_document_id, target_entity_id, link_type,
			authority_tier, confidence, snippet, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (fund_id, source_document_id, target_entity_id, link_type) DO UPDATE SET
			authority_tier = EXCLUDED.authority_tier,
			confidence = EXCLUDED.confidence,
			snippet = EXCLUDED.snippet,
			updated_at = now()
		RETURNING id, created_at, updated_at, (xmax = 0) AS created
	`
	var (
		id      uuid.UUID
		created bool
	)
	err := s.db.QueryRowContext(ctx, query,
		uuid.UUID(link.ID), uuid.UUID(link.FundID), uuid.UUID(link.SourceDocumentID),
		uuid.UUID(link.TargetEntityID), string(link.Type), link.AuthorityTier.String(),
		link.Confidence, link.Snippet,
	).Scan(&id, &link.CreatedAt, &link.UpdatedAt, &created)
	if err != nil {
		return false, fmt.Errorf("upsert knowledge link: %w", err)
	}
	link.ID = domain.LinkID(id)
	return created, nil
}

const selectLink = `
	SELECT id, source_document_id, target_entity_id, link_type,
	       authority_tier, confidence, snippet, created_at, updated_at
	FROM knowledge_links`

func (s *Postgres) ListLinks(ctx context.Context, fund domain.FundID) ([]Link, error) {
	rows, err := s.db.QueryContext(ctx,
		selectLink+` WHERE fund_id = $1 ORDER BY source_document_id, target_entity_id, link_type`,
		uuid.UUID(fund))
	if err != nil {
		return nil, fmt.Errorf("list knowledge links: %w", err)
	}
	defer rows.Close()
	return collectLinks(rows, fund)
}

func (s *Postgres) ListLinksBySource(ctx context.Context, fund domain.FundID, source domain.DocumentID) ([]Link, error) {
	rows, err := s.db.QueryContext(ctx,
		selectLink+` WHERE fund_id = $1 AND source_document_id = $2 ORDER BY target_entity_id, link_type`,
		uuid.UUID(fund), uuid.UUID(source))
	if err != nil {
		return nil, fmt.Errorf("list links by source: %w", err)
	}
	defer rows.Close()
	return collectLinks(rows, fund)
}

func (s *Postgres) DeleteLinksByType(ctx context.Context, fund domain.FundID, linkType LinkType) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM knowledge_links WHERE fund_id = $1 AND link_type = $2`,
		uuid.UUID(fund), string(linkType))
	if err != nil {
		return fmt.Errorf("delete links by type: %w", err)
	}
	return nil
}

func (s *Postgres) UpsertEvidenceMap(ctx context.Context, row *EvidenceMap) error {
	var evidenceDoc any
	if row.EvidenceDocumentID != nil {
		evidenceDoc = uuid.UUID(*row.EvidenceDocumentID)
	}
	query := `
		INSERT INTO obligation_evidence_map (
			fund_id, obligation_entity_id, evidence_document_id,
			satisfaction_status, last_checked_at
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (fund_id, obligation_entity_id) DO UPDATE SET
			evidence_document_id = EXCLUDED.evidence_document_id,
			satisfaction_status = EXCLUDED.satisfaction_status,
			last_checked_at = EXCLUDED.last_checked_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(row.FundID), uuid.UUID(row.ObligationEntityID), evidenceDoc,
		string(row.Status), row.LastCheckedAt)
	if err != nil {
		return fmt.Errorf("upsert obligation evidence map: %w", err)
	}
	return nil
}

func (s *Postgres) ListEvidenceMaps(ctx context.Context, fund domain.FundID) ([]EvidenceMap, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT obligation_entity_id, evidence_document_id, satisfaction_status, last_checked_at
		 FROM obligation_evidence_map WHERE fund_id = $1 ORDER BY obligation_entity_id`,
		uuid.UUID(fund))
	if err != nil {
		return nil, fmt.Errorf("list evidence maps: %w", err)
	}
	defer rows.Close()

	out := make([]EvidenceMap, 0)
	for rows.Next() {
		var (
			m      EvidenceMap
			entity uuid.UUID
			doc    uuid.NullUUID
			status string
		)
		if err := rows.Scan(&entity, &doc, &status, &m.LastCheckedAt); err != nil {
			return nil, fmt.Errorf("scan evidence map: %w", err)
		}
		m.FundID = fund
		m.ObligationEntityID = domain.EntityID(entity)
		if doc.Valid {
			id := domain.DocumentID(doc.UUID)
			m.EvidenceDocumentID = &id
		}
		m.Status = SatisfactionStatus(status)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evidence maps: %w", err)
	}
	return out, nil
}

func collectLinks(rows *sql.Rows, fund domain.FundID) ([]Link, error) {
	out := make([]Link, 0)
	for rows.Next() {
		var (
			l              Link
			id, src, tgt   uuid.UUID
			linkType, tier string
		)
		if err := rows.Scan(&id, &src, &tgt, &linkType, &tier,
			&l.Confidence, &l.Snippet, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan knowledge link: %w", err)
		}
		l.ID = domain.LinkID(id)
		l.FundID = fund
		l.SourceDocumentID = domain.DocumentID(src)
		l.TargetEntityID = domain.EntityID(tgt)
		l.Type = LinkType(linkType)
		if t, ok := authority.ParseTier(tier); ok {
			l.AuthorityTier = t
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge links: %w", err)
	}
	return out, nil
}

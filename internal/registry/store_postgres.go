package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"govlink/internal/authority"
	"govlink/internal/classify"
	"govlink/pkg/domain"
	"govlink/pkg/platform/sentinel"
)

// Postgres implements Store on PostgreSQL. Uniqueness invariants are enforced
// by ON CONFLICT upserts so reruns replace rather than duplicate.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registry store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Put(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO registry_documents (
			id, fund_id, container, blob_path, title, authority_tag,
			domain_tag, shareability, lifecycle_stage, checksum,
			detected_doc_type, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			container = EXCLUDED.container,
			blob_path = EXCLUDED.blob_path,
			title = EXCLUDED.title,
			authority_tag = EXCLUDED.authority_tag,
			domain_tag = EXCLUDED.domain_tag,
			shareability = EXCLUDED.shareability,
			lifecycle_stage = EXCLUDED.lifecycle_stage,
			checksum = EXCLUDED.checksum,
			updated_at = now()
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(doc.ID), uuid.UUID(doc.FundID), doc.Container, doc.BlobPath,
		doc.Title, doc.AuthorityTag, doc.DomainTag, doc.Shareability,
		doc.LifecycleStage, doc.Checksum, string(doc.DetectedDocType),
	)
	if err != nil {
		return fmt.Errorf("put registry document: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, fund domain.FundID, id domain.DocumentID) (*Document, error) {
	row := s.db.QueryRowContext(ctx, selectDocument+` WHERE fund_id = $1 AND id = $2`,
		uuid.UUID(fund), uuid.UUID(id))
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registry document: %w", err)
	}
	return doc, nil
}

func (s *Postgres) ListByFund(ctx context.Context, fund domain.FundID) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, selectDocument+` WHERE fund_id = $1 ORDER BY container, blob_path`,
		uuid.UUID(fund))
	if err != nil {
		return nil, fmt.Errorf("list registry documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (s *Postgres) ListByContainer(ctx context.Context, fund domain.FundID, container string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		selectDocument+` WHERE fund_id = $1 AND lower(container) = lower($2) ORDER BY blob_path`,
		uuid.UUID(fund), container)
	if err != nil {
		return nil, fmt.Errorf("list container documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (s *Postgres) SetDetectedDocType(ctx context.Context, fund domain.FundID, id domain.DocumentID, docType classify.DocType) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE registry_documents SET detected_doc_type = $3, updated_at = now() WHERE fund_id = $1 AND id = $2`,
		uuid.UUID(fund), uuid.UUID(id), string(docType))
	if err != nil {
		return fmt.Errorf("set detected doc type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) UpsertClassification(ctx context.Context, row *Classification) error {
	query := `
		INSERT INTO document_classifications (fund_id, document_id, doc_type, confidence, basis, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (fund_id, document_id) DO UPDATE SET
			doc_type = EXCLUDED.doc_type,
			confidence = EXCLUDED.confidence,
			basis = EXCLUDED.basis,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(row.FundID), uuid.UUID(row.DocumentID), string(row.DocType),
		row.Confidence, pq.Array(row.Basis), row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert classification: %w", err)
	}
	return nil
}

func (s *Postgres) GetClassification(ctx context.Context, fund domain.FundID, id domain.DocumentID) (*Classification, error) {
	var (
		row     Classification
		docType string
		basis   pq.StringArray
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT doc_type, confidence, basis, updated_at
		 FROM document_classifications WHERE fund_id = $1 AND document_id = $2`,
		uuid.UUID(fund), uuid.UUID(id),
	).Scan(&docType, &row.Confidence, &basis, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get classification: %w", err)
	}
	row.FundID = fund
	row.DocumentID = id
	row.DocType = classify.DocType(docType)
	row.Basis = basis
	return &row, nil
}

func (s *Postgres) UpsertProfile(ctx context.Context, row *GovernanceProfile) error {
	query := `
		INSERT INTO document_governance_profiles (
			fund_id, document_id, resolved_authority, binding_scope,
			shareability_final, jurisdiction, updated_at
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		ON CONFLICT (fund_id, document_id) DO UPDATE SET
			resolved_authority = EXCLUDED.resolved_authority,
			binding_scope = EXCLUDED.binding_scope,
			shareability_final = EXCLUDED.shareability_final,
			jurisdiction = EXCLUDED.jurisdiction,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(row.FundID), uuid.UUID(row.DocumentID), row.Authority.String(),
		string(row.Scope), row.ShareabilityFinal, row.Jurisdiction, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert governance profile: %w", err)
	}
	return nil
}

func (s *Postgres) GetProfile(ctx context.Context, fund domain.FundID, id domain.DocumentID) (*GovernanceProfile, error) {
	var (
		row          GovernanceProfile
		tier, scope  string
		jurisdiction sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT resolved_authority, binding_scope, shareability_final, jurisdiction, updated_at
		 FROM document_governance_profiles WHERE fund_id = $1 AND document_id = $2`,
		uuid.UUID(fund), uuid.UUID(id),
	).Scan(&tier, &scope, &row.ShareabilityFinal, &jurisdiction, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get governance profile: %w", err)
	}
	row.FundID = fund
	row.DocumentID = id
	if t, ok := authority.ParseTier(tier); ok {
		row.Authority = t
	}
	row.Scope = authority.BindingScope(scope)
	row.Jurisdiction = jurisdiction.String
	return &row, nil
}

const selectDocument = `
	SELECT id, fund_id, container, blob_path, title, authority_tag, domain_tag,
	       shareability, lifecycle_stage, checksum, detected_doc_type,
	       created_at, updated_at
	FROM registry_documents`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (*Document, error) {
	var (
		doc      Document
		id, fund uuid.UUID
		docType  string
	)
	err := r.Scan(&id, &fund, &doc.Container, &doc.BlobPath, &doc.Title,
		&doc.AuthorityTag, &doc.DomainTag, &doc.Shareability,
		&doc.LifecycleStage, &doc.Checksum, &docType,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	doc.ID = domain.DocumentID(id)
	doc.FundID = domain.FundID(fund)
	doc.DetectedDocType = classify.DocType(docType)
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]Document, error) {
	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registry document: %w", err)
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registry documents: %w", err)
	}
	return out, nil
}

package registry

import (
	"context"

	"govlink/internal/classify"
	"govlink/pkg/domain"
)

// Store is the persistence port for registry documents and their derived
// rows. Upserts must honor the one-row-per-(fund, document) invariants;
// implementations replace, never duplicate.
type Store interface {
	// Put creates or replaces a document entry. Only the scanning
	// collaborator calls this; the engine reads.
	Put(ctx context.Context, doc *Document) error
	FindByID(ctx context.Context, fund domain.FundID, id domain.DocumentID) (*Document, error)
	ListByFund(ctx context.Context, fund domain.FundID) ([]Document, error)
	ListByContainer(ctx context.Context, fund domain.FundID, container string) ([]Document, error)

	// SetDetectedDocType writes the classifier's verdict back onto the
	// registry entry. This is the only registry field the engine owns.
	SetDetectedDocType(ctx context.Context, fund domain.FundID, id domain.DocumentID, docType classify.DocType) error

	UpsertClassification(ctx context.Context, row *Classification) error
	GetClassification(ctx context.Context, fund domain.FundID, id domain.DocumentID) (*Classification, error)

	UpsertProfile(ctx context.Context, row *GovernanceProfile) error
	GetProfile(ctx context.Context, fund domain.FundID, id domain.DocumentID) (*GovernanceProfile, error)
}

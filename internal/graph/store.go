package graph

import (
	"context"

	"govlink/pkg/domain"
)

// Store is the persistence port for the knowledge graph. Implementations
// provide row-level upsert atomicity per business key; the engine itself runs
// single-threaded within a fund.
type Store interface {
	// UpsertEntity creates the entity or touches the existing row keyed by
	// (fund, type, canonical name). It reports whether a new row was
	// created and always leaves Entity.ID set to the stored identity.
	UpsertEntity(ctx context.Context, entity *Entity) (created bool, err error)
	FindEntity(ctx context.Context, fund domain.FundID, entityType EntityType, canonicalName string) (*Entity, error)
	ListEntities(ctx context.Context, fund domain.FundID) ([]Entity, error)

	// UpsertLink creates or refreshes the link keyed by (fund, source
	// document, target entity, link type), reporting whether a new row was
	// created. Confidence and snippet are always refreshed.
	UpsertLink(ctx context.Context, link *Link) (created bool, err error)
	ListLinks(ctx context.Context, fund domain.FundID) ([]Link, error)
	ListLinksBySource(ctx context.Context, fund domain.FundID, source domain.DocumentID) ([]Link, error)
	// DeleteLinksByType removes all links of one type for the fund. Used
	// only as conflict invalidation before re-detection within a run.
	DeleteLinksByType(ctx context.Context, fund domain.FundID, linkType LinkType) error

	UpsertEvidenceMap(ctx context.Context, row *EvidenceMap) error
	ListEvidenceMaps(ctx context.Context, fund domain.FundID) ([]EvidenceMap, error)
}

// Package graph holds the per-fund knowledge graph: canonical entities,
// authority-gated document-to-entity links, and obligation evidence maps.
// All rows are exclusively owned by their fund scope and upserts are
// idempotent by business key.
package graph

import (
	"time"

	"govlink/internal/authority"
	"govlink/pkg/domain"
)

// EntityType is the closed node-type enumeration.
type EntityType string

const (
	EntityManager    EntityType = "MANAGER"
	EntityDeal       EntityType = "DEAL"
	EntityObligation EntityType = "OBLIGATION"
	EntityProvider   EntityType = "PROVIDER"
)

// LinkType is the closed edge-type enumeration.
type LinkType string

const (
	LinkReferences        LinkType = "REFERENCES"
	LinkDerivesObligation LinkType = "DERIVES_OBLIGATION"
	LinkSatisfies         LinkType = "SATISFIES"
	LinkConflictsWith     LinkType = "CONFLICTS_WITH"
	LinkRequires          LinkType = "REQUIRES"
	LinkRelatesToManager  LinkType = "RELATES_TO_MANAGER"
	LinkRelatesToDeal     LinkType = "RELATES_TO_DEAL"
)

// Entity is a canonical, deduplicated node. (fund, type, canonical name) is
// unique: re-encountering the same name touches the row, never duplicates it.
type Entity struct {
	ID            domain.EntityID
	FundID        domain.FundID
	Type          EntityType
	CanonicalName string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Touch updates audit metadata on re-encounter. Identity and creation fields
// are immutable.
func (e *Entity) Touch(at time.Time) {
	e.UpdatedAt = at
}

// Link is a directed, typed edge from a source document to a target entity.
// (fund, source document, target entity, link type) is unique; re-running
// refreshes confidence and snippet in place.
type Link struct {
	ID               domain.LinkID
	FundID           domain.FundID
	SourceDocumentID domain.DocumentID
	TargetEntityID   domain.EntityID
	Type             LinkType
	// AuthorityTier is the resolved tier of the source document at
	// link-creation time.
	AuthorityTier authority.Tier
	// Confidence is 0.0–1.0.
	Confidence float64
	Snippet    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ApplyPatch refreshes the mutable fields of a stored link from a fresh
// computation. Key fields and CreatedAt are immutable.
func (l *Link) ApplyPatch(fresh Link) {
	l.AuthorityTier = fresh.AuthorityTier
	l.Confidence = fresh.Confidence
	l.Snippet = fresh.Snippet
	l.UpdatedAt = fresh.UpdatedAt
}

// SatisfactionStatus classifies how well an obligation is evidenced.
type SatisfactionStatus string

const (
	SatisfactionMatched SatisfactionStatus = "MATCHED"
	SatisfactionPartial SatisfactionStatus = "PARTIAL"
	SatisfactionNone    SatisfactionStatus = "NONE"
)

// EvidenceMap records the best evidentiary document for one OBLIGATION
// entity. One row per (fund, obligation entity).
type EvidenceMap struct {
	FundID             domain.FundID
	ObligationEntityID domain.EntityID
	// EvidenceDocumentID is nil when no document scored at all.
	EvidenceDocumentID *domain.DocumentID
	Status             SatisfactionStatus
	LastCheckedAt      time.Time
}

// ApplyPatch replaces the evidence verdict while keeping the row identity.
func (m *EvidenceMap) ApplyPatch(fresh EvidenceMap) {
	m.EvidenceDocumentID = fresh.EvidenceDocumentID
	m.Status = fresh.Status
	m.LastCheckedAt = fresh.LastCheckedAt
}

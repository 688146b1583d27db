// Package registry models the physical documents observed in fund containers
// and the per-document rows this engine derives from them. Registry entries
// themselves are created by an external scanning collaborator; the engine
// only writes the detected document type, the classification row, and the
// governance profile row.
package registry

import (
	"time"

	"govlink/internal/authority"
	"govlink/internal/classify"
	"govlink/pkg/domain"
)

// Document is one physical document observed in a container.
type Document struct {
	ID        domain.DocumentID
	FundID    domain.FundID
	Container string
	BlobPath  string
	Title     string
	// AuthorityTag is the container-level tag as denormalized by the
	// scanner. The linker treats container identity as authoritative over
	// this tag.
	AuthorityTag   string
	DomainTag      string
	Shareability   string
	LifecycleStage string
	// Checksum is the content etag; it keys the corpus cache.
	Checksum string
	// DetectedDocType is written back by the classifier, empty until the
	// first classification pass.
	DetectedDocType classify.DocType
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Classification is the one-per-document classification row.
type Classification struct {
	FundID     domain.FundID
	DocumentID domain.DocumentID
	DocType    classify.DocType
	Confidence int
	// Basis records the deduplicated, sorted signal categories that
	// contributed (container/filename/content).
	Basis     []string
	UpdatedAt time.Time
}

// ApplyPatch merges a fresh classification into the stored row. Identity
// fields are creation-only and never overwritten.
func (c *Classification) ApplyPatch(fresh Classification) {
	c.DocType = fresh.DocType
	c.Confidence = fresh.Confidence
	c.Basis = fresh.Basis
	c.UpdatedAt = fresh.UpdatedAt
}

// GovernanceProfile is the one-per-document resolved authority row.
// Authority is always a member of the 5-tier enumeration; unrecognized
// container tags resolve to EVIDENCE upstream.
type GovernanceProfile struct {
	FundID            domain.FundID
	DocumentID        domain.DocumentID
	Authority         authority.Tier
	Scope             authority.BindingScope
	ShareabilityFinal string
	// Jurisdiction is a best-effort hint, empty when unknown.
	Jurisdiction string
	UpdatedAt    time.Time
}

// ApplyPatch merges a fresh profile into the stored row, excluding identity
// fields.
func (p *GovernanceProfile) ApplyPatch(fresh GovernanceProfile) {
	p.Authority = fresh.Authority
	p.Scope = fresh.Scope
	p.ShareabilityFinal = fresh.ShareabilityFinal
	p.Jurisdiction = fresh.Jurisdiction
	p.UpdatedAt = fresh.UpdatedAt
}

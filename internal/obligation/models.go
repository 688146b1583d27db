// Package obligation models the obligation register consumed by the linking
// engine. Register rows are produced by a separate extraction pass over
// binding and regulatory document text; this engine never writes them.
package obligation

import (
	"time"

	"govlink/pkg/domain"
)

// Entry is one textual obligation derived from a binding or regulatory
// document.
type Entry struct {
	FundID domain.FundID
	// ObligationID is the register's stable business key (e.g. "OBL-0012").
	ObligationID string
	Text         string
	// DueRule is free text ("within 30 days after quarter end"); empty means
	// the obligation is ongoing.
	DueRule          string
	Frequency        string
	ResponsibleParty string
	Status           string
	// SourceDocumentIDs reference the registry documents the obligation was
	// derived from, first reference first.
	SourceDocumentIDs []domain.DocumentID
	EffectiveAt       time.Time
}

// Package anchor extracts typed fact anchors (dates, governing law, section
// references, obligation keywords, named entities) from document text.
// Anchors are a derived cache: every extraction run fully replaces the
// previous set for the document.
package anchor

// Type is the closed anchor-type enumeration.
type Type string

const (
	TypeFundName            Type = "FUND_NAME"
	TypeProviderName        Type = "PROVIDER_NAME"
	TypeEffectiveDate       Type = "EFFECTIVE_DATE"
	TypeGoverningLaw        Type = "GOVERNING_LAW"
	TypeRegulatoryReference Type = "REGULATORY_REFERENCE"
	TypeObligationKeyword   Type = "OBLIGATION_KEYWORD"
	// TypeDocType is the fallback anchor carrying the classified document
	// type, emitted only when extraction found nothing else so every
	// document has at least one anchor.
	TypeDocType Type = "DOC_TYPE"
)

// Anchor is one typed fact extracted from document text. Snippet preserves
// the surrounding source text for evidentiary traceability.
type Anchor struct {
	Type    Type
	Value   string
	Snippet string
	// Page is the 1-based page reference when the extractor knows it,
	// nil otherwise.
	Page *int
}

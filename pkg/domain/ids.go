// Package domain holds shared value types for the knowledge-linking engine.
// IDs are typed wrappers around UUIDs so a FundID can never be passed where a
// DocumentID is expected.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// FundID identifies the fund scope every row in the engine belongs to.
type FundID uuid.UUID

// DocumentID identifies a physical document observed in a container.
type DocumentID uuid.UUID

// EntityID identifies a canonical knowledge-graph node.
type EntityID uuid.UUID

// LinkID identifies a directed document-to-entity edge.
type LinkID uuid.UUID

// RunID identifies one pipeline invocation for a fund.
type RunID uuid.UUID

func (id FundID) String() string     { return uuid.UUID(id).String() }
func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id EntityID) String() string   { return uuid.UUID(id).String() }
func (id LinkID) String() string     { return uuid.UUID(id).String() }
func (id RunID) String() string      { return uuid.UUID(id).String() }

func (id FundID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EntityID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// Text marshaling renders IDs as canonical UUID strings so run summaries
// and audit payloads stay readable on the wire.

func (id FundID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *FundID) UnmarshalText(b []byte) error {
	parsed, err := ParseFundID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id DocumentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *DocumentID) UnmarshalText(b []byte) error {
	parsed, err := ParseDocumentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id EntityID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *EntityID) UnmarshalText(b []byte) error {
	parsed, err := ParseEntityID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id RunID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *RunID) UnmarshalText(b []byte) error {
	u, err := parseUUID(string(b))
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}
	*id = RunID(u)
	return nil
}

// NewDocumentID returns a fresh random DocumentID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// NewEntityID returns a fresh random EntityID.
func NewEntityID() EntityID { return EntityID(uuid.New()) }

// NewLinkID returns a fresh random LinkID.
func NewLinkID() LinkID { return LinkID(uuid.New()) }

// NewRunID returns a fresh random RunID.
func NewRunID() RunID { return RunID(uuid.New()) }

// ParseFundID validates and returns a FundID. Nil and malformed UUIDs are
// rejected so fund scoping cannot silently collapse to the zero scope.
func ParseFundID(s string) (FundID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return FundID{}, fmt.Errorf("fund id: %w", err)
	}
	return FundID(u), nil
}

// ParseDocumentID validates and returns a DocumentID.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return DocumentID{}, fmt.Errorf("document id: %w", err)
	}
	return DocumentID(u), nil
}

// ParseEntityID validates and returns an EntityID.
func ParseEntityID(s string) (EntityID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return EntityID{}, fmt.Errorf("entity id: %w", err)
	}
	return EntityID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, fmt.Errorf("empty id")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	if u == uuid.Nil {
		return uuid.Nil, fmt.Errorf("nil id")
	}
	return u, nil
}

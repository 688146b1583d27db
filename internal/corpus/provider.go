// Package corpus provides chunked document text to the linking engine. Text
// retrieval is the engine's only external I/O; failures surface as a typed
// ExtractionError and the caller decides the fallback policy, keeping the
// core algorithms pure.
package corpus

import (
	"context"
	"fmt"

	"govlink/internal/registry"
)

// Chunk is one extracted text segment of a document version.
type Chunk struct {
	Seq  int
	Body string
}

// Provider supplies the chunked text corpus for a document.
type Provider interface {
	Chunks(ctx context.Context, doc *registry.Document) ([]Chunk, error)
}

// ExtractionError reports a failed text retrieval or extraction. It is an
// explicit result, not a swallowed exception: callers substitute degraded
// text where their policy allows it.
type ExtractionError struct {
	DocumentID string
	Stage      string
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("corpus extraction failed at %s for document %s: %v", e.Stage, e.DocumentID, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// DegradedText is the fallback corpus used when extraction fails: the
// document still classifies and anchors on its title and path, never on an
// error signal.
func DegradedText(doc *registry.Document) string {
	return doc.Title + " " + doc.BlobPath
}

// TextOrFallback fetches the document's chunks, substituting the degraded
// single-chunk corpus on extraction failure. The error is reported to the
// caller for logging but the returned chunks are always usable.
func TextOrFallback(ctx context.Context, p Provider, doc *registry.Document) ([]Chunk, error) {
	chunks, err := p.Chunks(ctx, doc)
	if err != nil {
		return []Chunk{{Seq: 0, Body: DegradedText(doc)}}, err
	}
	if len(chunks) == 0 {
		return []Chunk{{Seq: 0, Body: DegradedText(doc)}}, nil
	}
	return chunks, nil
}

// Static is a seeded in-memory Provider for tests and fixtures.
type Static struct {
	chunks map[string][]Chunk
	errs   map[string]error
}

// NewStatic creates an empty static provider.
func NewStatic() *Static {
	return &Static{
		chunks: make(map[string][]Chunk),
		errs:   make(map[string]error),
	}
}

// SetText seeds a single-chunk corpus for a document.
func (s *Static) SetText(doc *registry.Document, text string) {
	s.chunks[doc.ID.String()] = []Chunk{{Seq: 0, Body: text}}
}

// SetChunks seeds a multi-chunk corpus for a document.
func (s *Static) SetChunks(doc *registry.Document, chunks []Chunk) {
	s.chunks[doc.ID.String()] = chunks
}

// FailWith makes retrieval for the document return an ExtractionError.
func (s *Static) FailWith(doc *registry.Document, err error) {
	s.errs[doc.ID.String()] = err
}

func (s *Static) Chunks(ctx context.Context, doc *registry.Document) ([]Chunk, error) {
	if err, ok := s.errs[doc.ID.String()]; ok {
		return nil, &ExtractionError{DocumentID: doc.ID.String(), Stage: "fetch", Err: err}
	}
	return s.chunks[doc.ID.String()], nil
}

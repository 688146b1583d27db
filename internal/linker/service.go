package linker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"govlink/internal/authority"
	"govlink/internal/corpus"
	"govlink/internal/graph"
	"govlink/internal/index"
	"govlink/internal/linker/metrics"
	"govlink/internal/registry"
	"govlink/pkg/domain"
)

// chunkLimit bounds the text chunks folded into a document's search corpus.
const chunkLimit = 60

// snippetLimit bounds the evidence snippet stored on a link.
const snippetLimit = 200

// Service links documents to index entities under the authority permission
// matrix. It is stateless between documents; re-running over an unchanged
// corpus refreshes links in place without duplicating rows.
type Service struct {
	resolver *authority.Resolver
	corpus   corpus.Provider
	graph    graph.Store
	// providerContainer names the service-provider-contracts container for
	// the REQUIRES decision.
	providerContainer string
	metrics           *metrics.Metrics
	logger            *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger for per-document diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithProviderContainer overrides the service-provider container name.
func WithProviderContainer(container string) Option {
	return func(s *Service) {
		if container != "" {
			s.providerContainer = container
		}
	}
}

// NewService wires a linker over the authority resolver, corpus provider,
// and graph store.
func NewService(resolver *authority.Resolver, corpusProvider corpus.Provider, graphStore graph.Store, opts ...Option) *Service {
	s := &Service{
		resolver:          resolver,
		corpus:            corpusProvider,
		graph:             graphStore,
		providerContainer: "service-provider-contracts",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DocumentResult reports one document's linking outcome.
type DocumentResult struct {
	// Created counts newly created links; refreshed links are not counted.
	Created int
	// Matched lists the entities this document linked to, in index order.
	Matched []domain.EntityID
}

// LinkDocument links one document against the entity index.
//
// The document's tier comes from the static container map — container
// identity is authoritative over the denormalized authority tag on the
// registry row. For each index entry, the first term found as a substring of
// the normalized corpus wins; the computed link type must survive the
// permission matrix or the candidate is discarded.
func (s *Service) LinkDocument(ctx context.Context, doc *registry.Document, entries []index.Entry) (DocumentResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDocument(time.Since(start)) }()

	searchable, extractErr := s.buildCorpus(ctx, doc)
	if extractErr != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "corpus degraded to title and path",
			"document_id", doc.ID.String(), "error", extractErr)
	}

	tier := s.resolver.TierForContainer(doc.Container)
	allowed := AllowedLinkTypes(tier)

	var result DocumentResult
	for _, entry := range entries {
		term, idx := firstMatch(searchable, entry.Terms)
		if idx < 0 {
			continue
		}

		linkType := decideLinkType(entry.Entity.Type, tier, doc.Container, s.providerContainer)
		if !allowed[linkType] {
			s.metrics.ObserveRejection(tier.String(), string(linkType))
			continue
		}

		confidence := ConfidencePartial
		if term == index.Normalize(entry.Entity.CanonicalName) {
			confidence = ConfidenceExact
		}

		link := graph.Link{
			FundID:           doc.FundID,
			SourceDocumentID: doc.ID,
			TargetEntityID:   entry.Entity.ID,
			Type:             linkType,
			AuthorityTier:    tier,
			Confidence:       confidence,
			Snippet:          matchSnippet(searchable, term, idx),
		}
		created, err := s.graph.UpsertLink(ctx, &link)
		if err != nil {
			return result, fmt.Errorf("upsert link for entity %q: %w", entry.Entity.CanonicalName, err)
		}
		s.metrics.ObserveUpsert(string(linkType), created)
		if created {
			result.Created++
		}
		result.Matched = append(result.Matched, entry.Entity.ID)
	}
	return result, nil
}

// buildCorpus assembles the normalized searchable text: title, blob path,
// and up to chunkLimit associated chunk bodies. Extraction failure degrades
// to title + path and is reported, never fatal.
func (s *Service) buildCorpus(ctx context.Context, doc *registry.Document) (string, error) {
	chunks, err := corpus.TextOrFallback(ctx, s.corpus, doc)

	var b strings.Builder
	b.WriteString(doc.Title)
	b.WriteByte(' ')
	b.WriteString(doc.BlobPath)
	for i, chunk := range chunks {
		if i == chunkLimit {
			break
		}
		b.WriteByte(' ')
		b.WriteString(chunk.Body)
	}
	return index.Normalize(b.String()), err
}

// firstMatch returns the first term appearing as a substring of the corpus
// and its position, or ("", -1). Term order is the index's order; first
// match wins.
func firstMatch(searchable string, terms []string) (string, int) {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if idx := strings.Index(searchable, term); idx >= 0 {
			return term, idx
		}
	}
	return "", -1
}

// matchSnippet captures the corpus context around a matched term for
// evidentiary traceability.
func matchSnippet(searchable, term string, idx int) string {
	start := idx - 60
	if start < 0 {
		start = 0
	}
	end := idx + len(term) + 60
	if end > len(searchable) {
		end = len(searchable)
	}
	window := searchable[start:end]
	if len(window) > snippetLimit {
		window = window[:snippetLimit]
	}
	return fmt.Sprintf("matched %q in: %s", term, window)
}

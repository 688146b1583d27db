// Package evidence maps obligation entities to their best evidentiary
// documents and detects divergent due rules across duplicate obligations.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"govlink/internal/authority"
	"govlink/internal/corpus"
	"govlink/internal/evidence/metrics"
	"govlink/internal/graph"
	"govlink/internal/index"
	"govlink/internal/linker"
	"govlink/internal/obligation"
	"govlink/internal/registry"
	"govlink/pkg/domain"
	"govlink/pkg/platform/sentinel"
)

const (
	// termLimit bounds the significant terms drawn from an obligation's text.
	termLimit = 12

	// matchedThreshold is the minimum term-overlap score for MATCHED.
	matchedThreshold = 3

	// chunkLimit bounds the chunks folded into an evidence document's corpus.
	chunkLimit = 60

	// ConfidenceMatched scores a SATISFIES link backed by a MATCHED verdict.
	ConfidenceMatched = 0.91
	// ConfidencePartial scores a SATISFIES link backed by a PARTIAL verdict.
	ConfidencePartial = 0.64
)

// Service computes obligation evidence maps and conflict links. Like the
// linker, it is idempotent: re-running over unchanged inputs refreshes rows
// in place.
type Service struct {
	resolver    *authority.Resolver
	documents   registry.Store
	obligations obligation.Store
	corpus      corpus.Provider
	graph       graph.Store
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger for soft-failure diagnostics.
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

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wires the mapper over its read ports and the graph store.
func NewService(
	resolver *authority.Resolver,
	documents registry.Store,
	obligations obligation.Store,
	corpusProvider corpus.Provider,
	graphStore graph.Store,
	opts ...Option,
) *Service {
	s := &Service{
		resolver:    resolver,
		documents:   documents,
		obligations: obligations,
		corpus:      corpusProvider,
		graph:       graphStore,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MapResult reports one evidence-mapping pass.
type MapResult struct {
	// Satisfied counts obligations with a MATCHED or PARTIAL verdict.
	Satisfied int
	// LinksCreated counts newly created SATISFIES links.
	LinksCreated int
}

// evidenceDoc pairs an evidence-container document with its normalized
// corpus, built once per pass.
type evidenceDoc struct {
	doc        registry.Document
	searchable string
}

// MapObligations scores every OBLIGATION entity against the fund's
// evidence-container documents and upserts one ObligationEvidenceMap row per
// entity. Obligations with no register row, and funds with no evidence
// documents, yield NONE verdicts, never errors.
func (s *Service) MapObligations(ctx context.Context, fund domain.FundID, asOf time.Time) (MapResult, error) {
	start := s.now()
	defer func() { s.metrics.ObservePass(time.Since(start)) }()

	var result MapResult

	entities, err := s.graph.ListEntities(ctx, fund)
	if err != nil {
		return result, fmt.Errorf("list entities: %w", err)
	}

	evidence, err := s.evidenceCorpora(ctx, fund, asOf)
	if err != nil {
		return result, fmt.Errorf("load evidence documents: %w", err)
	}

	for _, entity := range entities {
		if entity.Type != graph.EntityObligation {
			continue
		}

		terms := s.obligationTerms(ctx, fund, entity.CanonicalName)
		best, score := bestEvidence(evidence, terms)

		status := graph.SatisfactionNone
		confidence := 0.0
		switch {
		case score >= matchedThreshold:
			status = graph.SatisfactionMatched
			confidence = ConfidenceMatched
		case score >= 1:
			status = graph.SatisfactionPartial
			confidence = ConfidencePartial
		}
		s.metrics.ObserveVerdict(string(status))

		row := graph.EvidenceMap{
			FundID:             fund,
			ObligationEntityID: entity.ID,
			Status:             status,
			LastCheckedAt:      s.now(),
		}
		if best != nil {
			docID := best.doc.ID
			row.EvidenceDocumentID = &docID
		}
		if err := s.graph.UpsertEvidenceMap(ctx, &row); err != nil {
			return result, fmt.Errorf("upsert evidence map for %q: %w", entity.CanonicalName, err)
		}
		if status == graph.SatisfactionNone {
			continue
		}
		result.Satisfied++

		tier := s.resolver.TierForContainer(best.doc.Container)
		if !linker.AllowedLinkTypes(tier)[graph.LinkSatisfies] {
			continue
		}
		link := graph.Link{
			FundID:           fund,
			SourceDocumentID: best.doc.ID,
			TargetEntityID:   entity.ID,
			Type:             graph.LinkSatisfies,
			AuthorityTier:    tier,
			Confidence:       confidence,
			Snippet:          fmt.Sprintf("evidence overlap: %d of %d obligation terms in %s", score, len(terms), best.doc.Title),
		}
		created, err := s.graph.UpsertLink(ctx, &link)
		if err != nil {
			return result, fmt.Errorf("upsert satisfies link for %q: %w", entity.CanonicalName, err)
		}
		if created {
			result.LinksCreated++
		}
	}
	return result, nil
}

// obligationTerms extracts up to termLimit significant terms from the
// entity's register text. A missing register row is a soft no-match.
func (s *Service) obligationTerms(ctx context.Context, fund domain.FundID, obligationID string) []string {
	entry, err := s.obligations.FindByObligationID(ctx, fund, obligationID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) && s.logger != nil {
			s.logger.WarnContext(ctx, "obligation register lookup failed",
				"obligation_id", obligationID, "error", err)
		}
		return nil
	}
	return index.SignificantWords(entry.Text, termLimit)
}

// evidenceCorpora loads the fund's evidence-container documents observed at
// or before asOf and builds each one's normalized corpus. Container identity
// decides membership: only containers resolving to the EVIDENCE tier
// participate.
func (s *Service) evidenceCorpora(ctx context.Context, fund domain.FundID, asOf time.Time) ([]evidenceDoc, error) {
	docs, err := s.documents.ListByFund(ctx, fund)
	if err != nil {
		return nil, err
	}
	out := make([]evidenceDoc, 0, len(docs))
	for _, doc := range docs {
		if s.resolver.TierForContainer(doc.Container) != authority.TierEvidence {
			continue
		}
		if doc.CreatedAt.After(asOf) {
			continue
		}
		d := doc
		chunks, extractErr := corpus.TextOrFallback(ctx, s.corpus, &d)
		if extractErr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "evidence corpus degraded to title and path",
				"document_id", doc.ID.String(), "error", extractErr)
		}

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
		out = append(out, evidenceDoc{doc: doc, searchable: index.Normalize(b.String())})
	}
	return out, nil
}

// bestEvidence returns the highest-scoring evidence document and its score.
// Ties keep the earlier document; a zero score returns no document.
func bestEvidence(evidence []evidenceDoc, terms []string) (*evidenceDoc, int) {
	var best *evidenceDoc
	bestScore := 0
	for i := range evidence {
		score := 0
		for _, term := range terms {
			if strings.Contains(evidence[i].searchable, term) {
				score++
			}
		}
		if score > bestScore {
			best = &evidence[i]
			bestScore = score
		}
	}
	return best, bestScore
}

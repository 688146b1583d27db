package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"govlink/internal/graph"
	"govlink/internal/obligation"
	"govlink/internal/registry"
	"govlink/pkg/domain"
)

// obligationTermLimit caps the significant words drawn from obligation text.
const obligationTermLimit = 10

// Entry pairs a canonical entity with its matchable search terms, in the
// order the linker will test them.
type Entry struct {
	Entity graph.Entity
	Terms  []string
}

// Builder produces the per-run entity index from the canonical domain feeds
// and upserts the backing KnowledgeEntity rows. Building twice over an
// unchanged corpus yields the same index and touches rather than duplicates.
type Builder struct {
	managers    ManagerFeed
	deals       DealFeed
	obligations obligation.Store
	documents   registry.Store
	graph       graph.Store
	// providerContainer names the container whose documents become
	// PROVIDER entities.
	providerContainer string
	logger            *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the builder's logger.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithProviderContainer overrides the service-provider container name.
func WithProviderContainer(container string) BuilderOption {
	return func(b *Builder) {
		if container != "" {
			b.providerContainer = container
		}
	}
}

// NewBuilder wires a Builder over its feeds and stores.
func NewBuilder(managers ManagerFeed, deals DealFeed, obligations obligation.Store, documents registry.Store, graphStore graph.Store, opts ...BuilderOption) *Builder {
	b := &Builder{
		managers:          managers,
		deals:             deals,
		obligations:       obligations,
		documents:         documents,
		graph:             graphStore,
		providerContainer: "service-provider-contracts",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles the fund's entity index as of the given time. Every entity
// is upserted keyed by (fund, type, canonical name); existing rows are
// touched, never duplicated.
func (b *Builder) Build(ctx context.Context, fund domain.FundID, asOf time.Time) ([]Entry, error) {
	entries := make([]Entry, 0)
	seen := make(map[string]bool)

	add := func(entityType graph.EntityType, canonicalName string, terms []string) error {
		if canonicalName == "" {
			return nil
		}
		dedupeKey := string(entityType) + "\x00" + canonicalName
		if seen[dedupeKey] {
			return nil
		}
		seen[dedupeKey] = true

		entity := graph.Entity{FundID: fund, Type: entityType, CanonicalName: canonicalName}
		if _, err := b.graph.UpsertEntity(ctx, &entity); err != nil {
			return fmt.Errorf("upsert %s entity %q: %w", entityType, canonicalName, err)
		}
		entries = append(entries, Entry{Entity: entity, Terms: terms})
		return nil
	}

	managers, err := b.managers.List(ctx, fund, asOf)
	if err != nil {
		return nil, fmt.Errorf("manager feed: %w", err)
	}
	for _, m := range managers {
		name := Normalize(m.Name)
		if err := add(graph.EntityManager, name, []string{name}); err != nil {
			return nil, err
		}
	}

	deals, err := b.deals.List(ctx, fund)
	if err != nil {
		return nil, fmt.Errorf("deal feed: %w", err)
	}
	for _, d := range deals {
		name := Normalize(d.Name)
		terms := []string{name}
		if sponsor := Normalize(d.Sponsor); sponsor != "" {
			terms = append(terms, sponsor)
		}
		if err := add(graph.EntityDeal, name, terms); err != nil {
			return nil, err
		}
	}

	obligations, err := b.obligations.ListByFund(ctx, fund, asOf)
	if err != nil {
		return nil, fmt.Errorf("obligation register: %w", err)
	}
	for _, o := range obligations {
		terms := append([]string{Normalize(o.ObligationID)}, SignificantWords(o.Text, obligationTermLimit)...)
		if err := add(graph.EntityObligation, o.ObligationID, terms); err != nil {
			return nil, err
		}
	}

	providerDocs, err := b.documents.ListByContainer(ctx, fund, b.providerContainer)
	if err != nil {
		return nil, fmt.Errorf("provider documents: %w", err)
	}
	for _, doc := range providerDocs {
		name := Normalize(StripExtension(doc.Title))
		if err := add(graph.EntityProvider, name, []string{name}); err != nil {
			return nil, err
		}
	}

	if b.logger != nil {
		b.logger.DebugContext(ctx, "entity index built",
			"fund_id", fund.String(),
			"entities", len(entries),
			"managers", len(managers),
			"deals", len(deals),
			"obligations", len(obligations),
			"provider_documents", len(providerDocs),
		)
	}
	return entries, nil
}

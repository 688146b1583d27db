package evidence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govlink/internal/authority"
	"govlink/internal/corpus"
	"govlink/internal/graph"
	"govlink/internal/obligation"
	"govlink/internal/registry"
	"govlink/pkg/domain"
)

type mapperFixture struct {
	fund        domain.FundID
	asOf        time.Time
	documents   *registry.InMemory
	obligations *obligation.InMemory
	corpus      *corpus.Static
	graph       *graph.InMemory
	service     *Service
}

func newMapperFixture(t *testing.T) *mapperFixture {
	t.Helper()
	f := &mapperFixture{
		fund:        domain.FundID(uuid.New()),
		asOf:        time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		documents:   registry.NewInMemory(),
		obligations: obligation.NewInMemory(),
		corpus:      corpus.NewStatic(),
		graph:       graph.NewInMemory(),
	}
	f.service = NewService(
		authority.NewResolver(authority.DefaultTables()),
		f.documents, f.obligations, f.corpus, f.graph,
	)
	return f
}

func (f *mapperFixture) obligationEntity(t *testing.T, obligationID, text string) graph.Entity {
	t.Helper()
	f.obligations.Seed(obligation.Entry{
		FundID:       f.fund,
		ObligationID: obligationID,
		Text:         text,
		EffectiveAt:  f.asOf.AddDate(-1, 0, 0),
	})
	e := graph.Entity{FundID: f.fund, Type: graph.EntityObligation, CanonicalName: obligationID}
	_, err := f.graph.UpsertEntity(context.Background(), &e)
	require.NoError(t, err)
	return e
}

func (f *mapperFixture) evidenceDocument(t *testing.T, title, text string) *registry.Document {
	t.Helper()
	doc := &registry.Document{
		ID:        domain.NewDocumentID(),
		FundID:    f.fund,
		Container: "portfolio-monitoring",
		BlobPath:  "monitoring/" + title,
		Title:     title,
		CreatedAt: f.asOf.AddDate(0, -1, 0),
	}
	require.NoError(t, f.documents.Put(context.Background(), doc))
	f.corpus.SetText(doc, text)
	return doc
}

func TestMapObligations_ScoringBoundaries(t *testing.T) {
	ctx := context.Background()

	t.Run("three shared terms is matched", func(t *testing.T) {
		f := newMapperFixture(t)
		entity := f.obligationEntity(t, "OBL-1",
			"deliver audited financial statements to investors annually")
		doc := f.evidenceDocument(t, "fy-report.pdf",
			"audited financial statements as at year end")

		res, err := f.service.MapObligations(ctx, f.fund, f.asOf)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Satisfied)

		maps, err := f.graph.ListEvidenceMaps(ctx, f.fund)
		require.NoError(t, err)
		require.Len(t, maps, 1)
		assert.Equal(t, graph.SatisfactionMatched, maps[0].Status)
		require.NotNil(t, maps[0].EvidenceDocumentID)
		assert.Equal(t, doc.ID, *maps[0].EvidenceDocumentID)

		links, err := f.graph.ListLinksBySource(ctx, f.fund, doc.ID)
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, graph.LinkSatisfies, links[0].Type)
		assert.Equal(t, entity.ID, links[0].TargetEntityID)
		assert.Equal(t, ConfidenceMatched, links[0].Confidence)
		assert.Equal(t, authority.TierEvidence, links[0].AuthorityTier)
	})

	t.Run("two shared terms is partial", func(t *testing.T) {
		f := newMapperFixture(t)
		f.obligationEntity(t, "OBL-1",
			"deliver audited financial statements to investors annually")
		doc := f.evidenceDocument(t, "note.pdf", "audited statements")

		res, err := f.service.MapObligations(ctx, f.fund, f.asOf)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Satisfied)

		maps, _ := f.graph.ListEvidenceMaps(ctx, f.fund)
		require.Len(t, maps, 1)
		assert.Equal(t, graph.SatisfactionPartial, maps[0].Status)

		links, _ := f.graph.ListLinksBySource(ctx, f.fund, doc.ID)
		require.Len(t, links, 1)
		assert.Equal(t, ConfidencePartial, links[0].Confidence)
	})

	t.Run("no shared terms is none with null document", func(t *testing.T) {
		f := newMapperFixture(t)
		f.obligationEntity(t, "OBL-1",
			"deliver audited financial statements to investors annually")
		doc := f.evidenceDocument(t, "other.pdf", "completely unrelated corpus body")

		res, err := f.service.MapObligations(ctx, f.fund, f.asOf)
		require.NoError(t, err)
		assert.Zero(t, res.Satisfied)
		assert.Zero(t, res.LinksCreated)

		maps, _ := f.graph.ListEvidenceMaps(ctx, f.fund)
		require.Len(t, maps, 1)
		assert.Equal(t, graph.SatisfactionNone, maps[0].Status)
		assert.Nil(t, maps[0].EvidenceDocumentID)

		links, _ := f.graph.ListLinksBySource(ctx, f.fund, doc.ID)
		assert.Empty(t, links)
	})
}

func TestMapObligations_BestDocumentWins(t *testing.T) {
	f := newMapperFixture(t)
	f.obligationEntity(t, "OBL-1",
		"deliver audited financial statements to investors annually")
	f.evidenceDocument(t, "partial.pdf", "audited statements")
	best := f.evidenceDocument(t, "full.pdf",
		"audited financial statements sent to investors")

	_, err := f.service.MapObligations(context.Background(), f.fund, f.asOf)
	require.NoError(t, err)

	maps, _ := f.graph.ListEvidenceMaps(context.Background(), f.fund)
	require.Len(t, maps, 1)
	require.NotNil(t, maps[0].EvidenceDocumentID)
	assert.Equal(t, best.ID, *maps[0].EvidenceDocumentID)
}

func TestMapObligations_OnlyEvidenceContainersParticipate(t *testing.T) {
	f := newMapperFixture(t)
	f.obligationEntity(t, "OBL-1",
		"deliver audited financial statements to investors annually")
	// Binding container carries the same text, but it is not evidence.
	doc := &registry.Document{
		ID:        domain.NewDocumentID(),
		FundID:    f.fund,
		Container: "fund-governance",
		BlobPath:  "governance/constitution.pdf",
		Title:     "constitution.pdf",
	}
	require.NoError(t, f.documents.Put(context.Background(), doc))
	f.corpus.SetText(doc, "deliver audited financial statements to investors annually")

	_, err := f.service.MapObligations(context.Background(), f.fund, f.asOf)
	require.NoError(t, err)

	maps, _ := f.graph.ListEvidenceMaps(context.Background(), f.fund)
	require.Len(t, maps, 1)
	assert.Equal(t, graph.SatisfactionNone, maps[0].Status)
}

func TestMapObligations_CutoffExcludesLaterDocuments(t *testing.T) {
	ctx := context.Background()
	f := newMapperFixture(t)
	f.obligationEntity(t, "OBL-1",
		"deliver audited financial statements to investors annually")
	// Perfect match on text, but observed after the pass cutoff.
	doc := &registry.Document{
		ID:        domain.NewDocumentID(),
		FundID:    f.fund,
		Container: "portfolio-monitoring",
		BlobPath:  "monitoring/late-report.pdf",
		Title:     "late-report.pdf",
		CreatedAt: f.asOf.AddDate(0, 0, 1),
	}
	require.NoError(t, f.documents.Put(ctx, doc))
	f.corpus.SetText(doc, "audited financial statements as at year end")

	res, err := f.service.MapObligations(ctx, f.fund, f.asOf)
	require.NoError(t, err)
	assert.Zero(t, res.Satisfied)

	maps, err := f.graph.ListEvidenceMaps(ctx, f.fund)
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, graph.SatisfactionNone, maps[0].Status)
	assert.Nil(t, maps[0].EvidenceDocumentID)
}

func TestMapObligations_MissingRegisterRowIsSoft(t *testing.T) {
	f := newMapperFixture(t)
	// Entity exists in the graph but the register feed has no row for it.
	e := graph.Entity{FundID: f.fund, Type: graph.EntityObligation, CanonicalName: "OBL-GONE"}
	_, err := f.graph.UpsertEntity(context.Background(), &e)
	require.NoError(t, err)
	f.evidenceDocument(t, "report.pdf", "anything at all")

	res, err := f.service.MapObligations(context.Background(), f.fund, f.asOf)
	require.NoError(t, err)
	assert.Zero(t, res.Satisfied)

	maps, _ := f.graph.ListEvidenceMaps(context.Background(), f.fund)
	require.Len(t, maps, 1)
	assert.Equal(t, graph.SatisfactionNone, maps[0].Status)
}

func TestMapObligations_Idempotent(t *testing.T) {
	f := newMapperFixture(t)
	f.obligationEntity(t, "OBL-1",
		"deliver audited financial statements to investors annually")
	f.evidenceDocument(t, "fy-report.pdf",
		"audited financial statements as at year end")

	first, err := f.service.MapObligations(context.Background(), f.fund, f.asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, first.LinksCreated)

	second, err := f.service.MapObligations(context.Background(), f.fund, f.asOf)
	require.NoError(t, err)
	assert.Zero(t, second.LinksCreated, "rerun refreshes in place")
	assert.Equal(t, first.Satisfied, second.Satisfied)

	maps, _ := f.graph.ListEvidenceMaps(context.Background(), f.fund)
	assert.Len(t, maps, 1, "one row per obligation entity")
}

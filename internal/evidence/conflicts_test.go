package evidence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govlink/internal/authority"
	"govlink/internal/graph"
	"govlink/internal/obligation"
	"govlink/internal/registry"
	"govlink/pkg/domain"
)

func (f *mapperFixture) sourceDocument(t *testing.T, container, title string) *registry.Document {
	t.Helper()
	doc := &registry.Document{
		ID:        domain.NewDocumentID(),
		FundID:    f.fund,
		Container: container,
		BlobPath:  container + "/" + title,
		Title:     title,
	}
	require.NoError(t, f.documents.Put(context.Background(), doc))
	return doc
}

func (f *mapperFixture) registerRow(t *testing.T, obligationID, text, dueRule string, sources ...domain.DocumentID) {
	t.Helper()
	f.obligations.Seed(obligation.Entry{
		FundID:            f.fund,
		ObligationID:      obligationID,
		Text:              text,
		DueRule:           dueRule,
		SourceDocumentIDs: sources,
		EffectiveAt:       f.asOf.AddDate(-1, 0, 0),
	})
	e := graph.Entity{FundID: f.fund, Type: graph.EntityObligation, CanonicalName: obligationID}
	_, err := f.graph.UpsertEntity(context.Background(), &e)
	require.NoError(t, err)
}

const duplicateObligationText = "deliver audited financial statements to investors after each quarter"

func TestDetectConflicts_DivergentDueRules(t *testing.T) {
	f := newMapperFixture(t)
	constitution := f.sourceDocument(t, "fund-governance", "constitution.pdf")
	rulebook := f.sourceDocument(t, "regulatory-filings", "cima-rulebook.pdf")
	f.registerRow(t, "OBL-1", duplicateObligationText,
		"within 30 days after quarter end", constitution.ID)
	f.registerRow(t, "OBL-2", duplicateObligationText,
		"within 45 days after quarter end", rulebook.ID)

	res, err := f.service.DetectConflicts(context.Background(), f.fund, f.asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Detected)
	assert.Equal(t, 2, res.LinksCreated)

	links, err := f.graph.ListLinks(context.Background(), f.fund)
	require.NoError(t, err)
	require.Len(t, links, 2)
	for _, l := range links {
		assert.Equal(t, graph.LinkConflictsWith, l.Type)
		assert.Equal(t, ConfidenceConflict, l.Confidence)
		assert.True(t, l.AuthorityTier.AtLeast(authority.TierPolicy),
			"conflict links originate only from BINDING or POLICY documents")
	}
}

func TestDetectConflicts_AgreeingDueRulesAreNotConflicts(t *testing.T) {
	f := newMapperFixture(t)
	constitution := f.sourceDocument(t, "fund-governance", "constitution.pdf")
	rulebook := f.sourceDocument(t, "regulatory-filings", "cima-rulebook.pdf")
	f.registerRow(t, "OBL-1", duplicateObligationText,
		"within 30 days after quarter end", constitution.ID)
	f.registerRow(t, "OBL-2", duplicateObligationText,
		"Within 30 days  after quarter END", rulebook.ID)

	res, err := f.service.DetectConflicts(context.Background(), f.fund, f.asOf)
	require.NoError(t, err)
	assert.Zero(t, res.Detected, "due rules agree after normalization")

	links, _ := f.graph.ListLinks(context.Background(), f.fund)
	assert.Empty(t, links)
}

func TestDetectConflicts_UnsetDueRuleDefaultsToOngoing(t *testing.T) {
	f := newMapperFixture(t)
	constitution := f.sourceDocument(t, "fund-governance", "constitution.pdf")
	rulebook := f.sourceDocument(t, "regulatory-filings", "cima-rulebook.pdf")
	f.registerRow(t, "OBL-1", duplicateObligationText, "", constitution.ID)
	f.registerRow(t, "OBL-2", duplicateObligationText,
		"within 30 days after quarter end", rulebook.ID)

	res, err := f.service.DetectConflicts(context.Background(), f.fund, f.asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Detected, `unset rule compares as "ongoing"`)
}

func TestDetectConflicts_LowTierRowsCountButDoNotLink(t *testing.T) {
	f := newMapperFixture(t)
	constitution := f.sourceDocument(t, "fund-governance", "constitution.pdf")
	memo := f.sourceDocument(t, "deal-pipeline", "memo.docx")
	f.registerRow(t, "OBL-1", duplicateObligationText,
		"within 30 days after quarter end", constitution.ID)
	f.registerRow(t, "OBL-2", duplicateObligationText,
		"within 45 days after quarter end", memo.ID)

	res, err := f.service.DetectConflicts(context.Background(), f.fund, f.asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Detected)
	assert.Equal(t, 1, res.LinksCreated, "intelligence-tier source is excluded from linking")

	links, _ := f.graph.ListLinksBySource(context.Background(), f.fund, constitution.ID)
	require.Len(t, links, 1)
	memoLinks, _ := f.graph.ListLinksBySource(context.Background(), f.fund, memo.ID)
	assert.Empty(t, memoLinks)
}

func TestDetectConflicts_UnresolvableSourceCountsWithoutLink(t *testing.T) {
	f := newMapperFixture(t)
	constitution := f.sourceDocument(t, "fund-governance", "constitution.pdf")
	f.registerRow(t, "OBL-1", duplicateObligationText,
		"within 30 days after quarter end", constitution.ID)
	f.registerRow(t, "OBL-2", duplicateObligationText,
		"within 45 days after quarter end", domain.NewDocumentID())

	res, err := f.service.DetectConflicts(context.Background(), f.fund, f.asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Detected)
	assert.Equal(t, 1, res.LinksCreated)
}

func TestDetectConflicts_EmptyKeyRowsAreExcluded(t *testing.T) {
	f := newMapperFixture(t)
	constitution := f.sourceDocument(t, "fund-governance", "constitution.pdf")
	f.registerRow(t, "OBL-1", "to do", "within 30 days", constitution.ID)
	f.registerRow(t, "OBL-2", "to do", "within 45 days", constitution.ID)

	res, err := f.service.DetectConflicts(context.Background(), f.fund, f.asOf)
	require.NoError(t, err)
	assert.Zero(t, res.Detected, "no significant words means no grouping key")
}

// TestDetectConflicts_InvalidationClearsResolvedConflicts verifies the full
// CONFLICTS_WITH invalidation: once the register rows agree, a re-run leaves
// no stale conflict links behind.
func TestDetectConflicts_InvalidationClearsResolvedConflicts(t *testing.T) {
	f := newMapperFixture(t)
	constitution := f.sourceDocument(t, "fund-governance", "constitution.pdf")
	rulebook := f.sourceDocument(t, "regulatory-filings", "cima-rulebook.pdf")
	f.registerRow(t, "OBL-1", duplicateObligationText,
		"within 30 days after quarter end", constitution.ID)
	f.registerRow(t, "OBL-2", duplicateObligationText,
		"within 45 days after quarter end", rulebook.ID)

	_, err := f.service.DetectConflicts(context.Background(), f.fund, f.asOf)
	require.NoError(t, err)
	links, _ := f.graph.ListLinks(context.Background(), f.fund)
	require.Len(t, links, 2)

	// The register is amended: both rows now agree.
	f.registerRow(t, "OBL-2", duplicateObligationText,
		"within 30 days after quarter end", rulebook.ID)

	res, err := f.service.DetectConflicts(context.Background(), f.fund, f.asOf)
	require.NoError(t, err)
	assert.Zero(t, res.Detected)

	links, _ = f.graph.ListLinks(context.Background(), f.fund)
	assert.Empty(t, links, "resolved conflicts are invalidated, not retained")
}

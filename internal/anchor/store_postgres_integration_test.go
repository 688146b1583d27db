//go:build integration

package anchor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"govlink/internal/anchor"
	"govlink/pkg/domain"
	"govlink/pkg/testutil/containers"
)

type AnchorPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *anchor.Postgres
	fund     domain.FundID
}

func TestAnchorPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AnchorPostgresSuite))
}

func (s *AnchorPostgresSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = anchor.NewPostgres(s.postgres.DB)
}

func (s *AnchorPostgresSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "knowledge_anchors")
	s.Require().NoError(err)
	s.fund = domain.NewFundID()
}

func (s *AnchorPostgresSuite) TestReplaceForDocument_FullyReplaces() {
	ctx := context.Background()
	doc := domain.NewDocumentID()
	page := 4

	first := []anchor.Anchor{
		{Type: anchor.TypeGoverningLaw, Value: "cayman islands", Snippet: "governed by the laws of the Cayman Islands", Page: &page},
		{Type: anchor.TypeObligationKeyword, Value: "shall deliver", Snippet: "the fund shall deliver"},
		{Type: anchor.TypeEffectiveDate, Value: "2026-01-01", Snippet: "effective as of 1 January 2026"},
	}
	s.Require().NoError(s.store.ReplaceForDocument(ctx, s.fund, doc, first))

	second := []anchor.Anchor{
		{Type: anchor.TypeFundName, Value: "atlas fund iv", Snippet: "Atlas Fund IV, L.P."},
		{Type: anchor.TypeGoverningLaw, Value: "cayman islands", Snippet: "governed by the laws of the Cayman Islands"},
	}
	s.Require().NoError(s.store.ReplaceForDocument(ctx, s.fund, doc, second))

	got, err := s.store.ListByDocument(ctx, s.fund, doc)
	s.Require().NoError(err)
	s.Require().Len(got, 2, "re-extraction replaces the full set")
	s.Equal(anchor.TypeFundName, got[0].Type)
	s.Equal(anchor.TypeGoverningLaw, got[1].Type)
	s.Nil(got[0].Page)
}

func (s *AnchorPostgresSuite) TestReplaceForDocument_EmptySetClears() {
	ctx := context.Background()
	doc := domain.NewDocumentID()

	s.Require().NoError(s.store.ReplaceForDocument(ctx, s.fund, doc, []anchor.Anchor{
		{Type: anchor.TypeDocType, Value: "OTHER", Snippet: ""},
	}))
	s.Require().NoError(s.store.ReplaceForDocument(ctx, s.fund, doc, nil))

	got, err := s.store.ListByDocument(ctx, s.fund, doc)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *AnchorPostgresSuite) TestPageRoundTrip() {
	ctx := context.Background()
	doc := domain.NewDocumentID()
	page := 12

	s.Require().NoError(s.store.ReplaceForDocument(ctx, s.fund, doc, []anchor.Anchor{
		{Type: anchor.TypeRegulatoryReference, Value: "rule 17-4", Snippet: "pursuant to Rule 17-4", Page: &page},
	}))

	got, err := s.store.ListByDocument(ctx, s.fund, doc)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Require().NotNil(got[0].Page)
	s.Equal(12, *got[0].Page)
}

//go:build integration

package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"govlink/internal/authority"
	"govlink/internal/classify"
	"govlink/internal/registry"
	"govlink/pkg/domain"
	"govlink/pkg/platform/sentinel"
	"govlink/pkg/testutil/containers"
)

type RegistryPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *registry.Postgres
	fund     domain.FundID
}

func TestRegistryPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RegistryPostgresSuite))
}

func (s *RegistryPostgresSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = registry.NewPostgres(s.postgres.DB)
}

func (s *RegistryPostgresSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx,
		"document_classifications", "document_governance_profiles", "registry_documents")
	s.Require().NoError(err)
	s.fund = domain.NewFundID()
}

func (s *RegistryPostgresSuite) newDocument(container, title string) *registry.Document {
	return &registry.Document{
		ID:           domain.NewDocumentID(),
		FundID:       s.fund,
		Container:    container,
		BlobPath:     "/" + container + "/" + title + ".pdf",
		Title:        title,
		AuthorityTag: "BINDING",
		Shareability: "restricted",
		Checksum:     "sha256:" + title,
	}
}

func (s *RegistryPostgresSuite) TestPut_ReplacesByID() {
	ctx := context.Background()
	doc := s.newDocument("fund-governance", "lpa")
	s.Require().NoError(s.store.Put(ctx, doc))

	doc.Title = "lpa amended and restated"
	s.Require().NoError(s.store.Put(ctx, doc))

	found, err := s.store.FindByID(ctx, s.fund, doc.ID)
	s.Require().NoError(err)
	s.Equal("lpa amended and restated", found.Title)

	docs, err := s.store.ListByFund(ctx, s.fund)
	s.Require().NoError(err)
	s.Len(docs, 1)
}

func (s *RegistryPostgresSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(context.Background(), s.fund, domain.NewDocumentID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RegistryPostgresSuite) TestListByContainer() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, s.newDocument("fund-governance", "lpa")))
	s.Require().NoError(s.store.Put(ctx, s.newDocument("deal-pipeline", "memo")))

	docs, err := s.store.ListByContainer(ctx, s.fund, "deal-pipeline")
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal("memo", docs[0].Title)
}

func (s *RegistryPostgresSuite) TestSetDetectedDocType() {
	ctx := context.Background()
	doc := s.newDocument("fund-governance", "lpa")
	s.Require().NoError(s.store.Put(ctx, doc))

	err := s.store.SetDetectedDocType(ctx, s.fund, doc.ID, classify.DocTypeFundConstitution)
	s.Require().NoError(err)

	found, err := s.store.FindByID(ctx, s.fund, doc.ID)
	s.Require().NoError(err)
	s.Equal(classify.DocTypeFundConstitution, found.DetectedDocType)

	err = s.store.SetDetectedDocType(ctx, s.fund, domain.NewDocumentID(), classify.DocTypeFundConstitution)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RegistryPostgresSuite) TestClassificationRoundTrip() {
	ctx := context.Background()
	doc := s.newDocument("fund-governance", "lpa")
	s.Require().NoError(s.store.Put(ctx, doc))

	row := &registry.Classification{
		FundID:     s.fund,
		DocumentID: doc.ID,
		DocType:    classify.DocTypeFundConstitution,
		Confidence: 85,
		Basis:      []string{"container", "content", "filename"},
		UpdatedAt:  time.Now().UTC(),
	}
	s.Require().NoError(s.store.UpsertClassification(ctx, row))

	got, err := s.store.GetClassification(ctx, s.fund, doc.ID)
	s.Require().NoError(err)
	s.Equal(classify.DocTypeFundConstitution, got.DocType)
	s.Equal(85, got.Confidence)
	s.Equal([]string{"container", "content", "filename"}, got.Basis)

	// Re-running replaces, never duplicates.
	row.Confidence = 60
	row.Basis = []string{"container"}
	s.Require().NoError(s.store.UpsertClassification(ctx, row))

	got, err = s.store.GetClassification(ctx, s.fund, doc.ID)
	s.Require().NoError(err)
	s.Equal(60, got.Confidence)
	s.Equal([]string{"container"}, got.Basis)
}

func (s *RegistryPostgresSuite) TestProfileRoundTrip() {
	ctx := context.Background()
	doc := s.newDocument("fund-governance", "lpa")
	s.Require().NoError(s.store.Put(ctx, doc))

	row := &registry.GovernanceProfile{
		FundID:            s.fund,
		DocumentID:        doc.ID,
		Authority:         authority.TierBinding,
		Scope:             authority.ScopeFund,
		ShareabilityFinal: "restricted",
		Jurisdiction:      "",
		UpdatedAt:         time.Now().UTC(),
	}
	s.Require().NoError(s.store.UpsertProfile(ctx, row))

	got, err := s.store.GetProfile(ctx, s.fund, doc.ID)
	s.Require().NoError(err)
	s.Equal(authority.TierBinding, got.Authority)
	s.Equal(authority.ScopeFund, got.Scope)
	s.Empty(got.Jurisdiction, "empty jurisdiction stays empty through NULL")

	row.Authority = authority.TierPolicy
	row.Jurisdiction = "cayman-islands"
	s.Require().NoError(s.store.UpsertProfile(ctx, row))

	got, err = s.store.GetProfile(ctx, s.fund, doc.ID)
	s.Require().NoError(err)
	s.Equal(authority.TierPolicy, got.Authority)
	s.Equal("cayman-islands", got.Jurisdiction)
}

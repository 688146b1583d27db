package registry

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"govlink/internal/authority"
	"govlink/internal/classify"
	"govlink/pkg/domain"
	"govlink/pkg/platform/sentinel"
)

type RegistryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	fund  domain.FundID
}

func (s *RegistryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.fund = domain.FundID(uuid.New())
}

func TestRegistryStoreSuite(t *testing.T) {
	suite.Run(t, new(RegistryStoreSuite))
}

func (s *RegistryStoreSuite) newDocument(container, path string) *Document {
	return &Document{
		ID:           domain.NewDocumentID(),
		FundID:       s.fund,
		Container:    container,
		BlobPath:     path,
		Title:        path,
		AuthorityTag: "EVIDENCE",
		Checksum:     "etag-" + path,
		CreatedAt:    time.Now(),
	}
}

func (s *RegistryStoreSuite) TestPutAndLookups() {
	s.Run("stores and finds by id", func() {
		doc := s.newDocument("portfolio-monitoring", "q2/holdings.xlsx")
		s.Require().NoError(s.store.Put(s.ctx, doc))

		found, err := s.store.FindByID(s.ctx, s.fund, doc.ID)
		s.Require().NoError(err)
		s.Equal(doc.BlobPath, found.BlobPath)
	})

	s.Run("scopes lookups to the fund", func() {
		doc := s.newDocument("portfolio-monitoring", "q3/holdings.xlsx")
		s.Require().NoError(s.store.Put(s.ctx, doc))

		_, err := s.store.FindByID(s.ctx, domain.FundID(uuid.New()), doc.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("lists by container case-insensitively", func() {
		s.Require().NoError(s.store.Put(s.ctx, s.newDocument("service-provider-contracts", "admin-agreement.pdf")))
		s.Require().NoError(s.store.Put(s.ctx, s.newDocument("deal-pipeline", "memo.docx")))

		docs, err := s.store.ListByContainer(s.ctx, s.fund, "Service-Provider-Contracts")
		s.Require().NoError(err)
		s.Require().Len(docs, 1)
		s.Equal("admin-agreement.pdf", docs[0].BlobPath)
	})
}

func (s *RegistryStoreSuite) TestDetectedDocType() {
	doc := s.newDocument("fund-governance", "constitution.pdf")
	s.Require().NoError(s.store.Put(s.ctx, doc))

	s.Require().NoError(s.store.SetDetectedDocType(s.ctx, s.fund, doc.ID, classify.DocTypeFundConstitution))

	found, err := s.store.FindByID(s.ctx, s.fund, doc.ID)
	s.Require().NoError(err)
	s.Equal(classify.DocTypeFundConstitution, found.DetectedDocType)

	s.ErrorIs(s.store.SetDetectedDocType(s.ctx, s.fund, domain.NewDocumentID(), classify.DocTypeOther), sentinel.ErrNotFound)
}

func (s *RegistryStoreSuite) TestClassificationUpsertReplaces() {
	doc := s.newDocument("fund-governance", "constitution.pdf")
	s.Require().NoError(s.store.Put(s.ctx, doc))

	first := &Classification{
		FundID:     s.fund,
		DocumentID: doc.ID,
		DocType:    classify.DocTypeOther,
		Confidence: 60,
		Basis:      []string{},
		UpdatedAt:  time.Now(),
	}
	s.Require().NoError(s.store.UpsertClassification(s.ctx, first))

	second := *first
	second.DocType = classify.DocTypeFundConstitution
	second.Confidence = 93
	second.Basis = []string{"container", "filename"}
	s.Require().NoError(s.store.UpsertClassification(s.ctx, &second))

	got, err := s.store.GetClassification(s.ctx, s.fund, doc.ID)
	s.Require().NoError(err)
	s.Equal(classify.DocTypeFundConstitution, got.DocType)
	s.Equal(93, got.Confidence)
	s.Equal([]string{"container", "filename"}, got.Basis)
}

func (s *RegistryStoreSuite) TestProfileUpsertReplaces() {
	doc := s.newDocument("deal-pipeline", "memo.docx")
	s.Require().NoError(s.store.Put(s.ctx, doc))

	first := &GovernanceProfile{
		FundID:     s.fund,
		DocumentID: doc.ID,
		Authority:  authority.TierEvidence,
		Scope:      authority.ScopeFund,
		UpdatedAt:  time.Now(),
	}
	s.Require().NoError(s.store.UpsertProfile(s.ctx, first))

	second := *first
	second.Authority = authority.TierIntelligence
	second.Scope = authority.ScopeManager
	second.Jurisdiction = "Cayman Islands"
	s.Require().NoError(s.store.UpsertProfile(s.ctx, &second))

	got, err := s.store.GetProfile(s.ctx, s.fund, doc.ID)
	s.Require().NoError(err)
	s.Equal(authority.TierIntelligence, got.Authority)
	s.Equal(authority.ScopeManager, got.Scope)
	s.Equal("Cayman Islands", got.Jurisdiction)
}

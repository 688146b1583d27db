//go:build integration

package obligation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"govlink/internal/obligation"
	"govlink/pkg/domain"
	"govlink/pkg/platform/sentinel"
	"govlink/pkg/testutil/containers"
)

type ObligationPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *obligation.Postgres
	fund     domain.FundID
}

func TestObligationPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ObligationPostgresSuite))
}

func (s *ObligationPostgresSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = obligation.NewPostgres(s.postgres.DB)
}

func (s *ObligationPostgresSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "obligation_register")
	s.Require().NoError(err)
	s.fund = domain.NewFundID()
}

// seedRow inserts a register row the way the extraction collaborator would.
func (s *ObligationPostgresSuite) seedRow(obligationID, text, dueRule string, effectiveAt time.Time, sources ...string) {
	_, err := s.postgres.DB.ExecContext(context.Background(),
		`INSERT INTO obligation_register (
			fund_id, obligation_id, obligation_text, due_rule, frequency,
			responsible_party, status, source_document_ids, effective_at
		) VALUES ($1, $2, $3, NULLIF($4, ''), 'quarterly', 'administrator', 'active', $5, $6)`,
		uuid.UUID(s.fund), obligationID, text, dueRule, pq.StringArray(sources), effectiveAt,
	)
	s.Require().NoError(err)
}

func (s *ObligationPostgresSuite) TestListByFund_FiltersByEffectiveDate() {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	s.seedRow("OBL-0002", "deliver audited statements", "within 30 days", asOf.AddDate(0, -1, 0))
	s.seedRow("OBL-0001", "file the annual return", "", asOf.AddDate(0, -2, 0))
	s.seedRow("OBL-0003", "adopt the new valuation policy", "", asOf.AddDate(0, 1, 0))

	entries, err := s.store.ListByFund(context.Background(), s.fund, asOf)
	s.Require().NoError(err)
	s.Require().Len(entries, 2, "rows effective after the cutoff are invisible")
	s.Equal("OBL-0001", entries[0].ObligationID)
	s.Equal("OBL-0002", entries[1].ObligationID)
	s.Empty(entries[0].DueRule)
	s.Equal("within 30 days", entries[1].DueRule)
}

func (s *ObligationPostgresSuite) TestFindByObligationID() {
	source := domain.NewDocumentID()
	s.seedRow("OBL-0001", "deliver audited statements", "within 30 days",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), source.String())

	entry, err := s.store.FindByObligationID(context.Background(), s.fund, "OBL-0001")
	s.Require().NoError(err)
	s.Equal("deliver audited statements", entry.Text)
	s.Require().Len(entry.SourceDocumentIDs, 1)
	s.Equal(source, entry.SourceDocumentIDs[0])

	_, err = s.store.FindByObligationID(context.Background(), s.fund, "OBL-9999")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ObligationPostgresSuite) TestMalformedSourceReferencesAreSkipped() {
	source := domain.NewDocumentID()
	s.seedRow("OBL-0001", "deliver audited statements", "",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "not-a-uuid", source.String())

	entry, err := s.store.FindByObligationID(context.Background(), s.fund, "OBL-0001")
	s.Require().NoError(err)
	s.Require().Len(entry.SourceDocumentIDs, 1, "malformed references degrade, never error")
	s.Equal(source, entry.SourceDocumentIDs[0])
}

func (s *ObligationPostgresSuite) TestFundIsolation() {
	asOf := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	s.seedRow("OBL-0001", "deliver audited statements", "", asOf.AddDate(0, -1, 0))

	other := domain.NewFundID()
	entries, err := s.store.ListByFund(context.Background(), other, asOf)
	s.Require().NoError(err)
	s.Empty(entries)
}

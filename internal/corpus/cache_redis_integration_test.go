//go:build integration

package corpus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"govlink/internal/corpus"
	"govlink/internal/registry"
	"govlink/pkg/domain"
	"govlink/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	inner *corpus.Static
	cache *corpus.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.inner = corpus.NewStatic()
	s.cache = corpus.NewRedisCache(s.inner, s.redis.Client)
}

func newCachedDocument(checksum string) *registry.Document {
	return &registry.Document{
		ID:       domain.NewDocumentID(),
		FundID:   domain.NewFundID(),
		Title:    "limited partnership agreement",
		BlobPath: "/fund-governance/lpa.pdf",
		Checksum: checksum,
	}
}

func (s *RedisCacheSuite) TestServesFromCacheOnSecondRead() {
	ctx := context.Background()
	doc := newCachedDocument("sha256:abc")
	s.inner.SetText(doc, "the fund shall deliver audited statements")

	first, err := s.cache.Chunks(ctx, doc)
	s.Require().NoError(err)
	s.Require().Len(first, 1)

	// The inner provider now fails; a cached corpus must still be served.
	s.inner.FailWith(doc, errors.New("blob storage offline"))

	second, err := s.cache.Chunks(ctx, doc)
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *RedisCacheSuite) TestChecksumChangeInvalidates() {
	ctx := context.Background()
	doc := newCachedDocument("sha256:v1")
	s.inner.SetText(doc, "version one")

	_, err := s.cache.Chunks(ctx, doc)
	s.Require().NoError(err)

	doc.Checksum = "sha256:v2"
	s.inner.SetText(doc, "version two")

	chunks, err := s.cache.Chunks(ctx, doc)
	s.Require().NoError(err)
	s.Require().Len(chunks, 1)
	s.Equal("version two", chunks[0].Body)
}

func (s *RedisCacheSuite) TestUncheckedDocumentsBypassCache() {
	ctx := context.Background()
	doc := newCachedDocument("")
	s.inner.SetText(doc, "first body")

	_, err := s.cache.Chunks(ctx, doc)
	s.Require().NoError(err)

	s.inner.SetText(doc, "second body")
	chunks, err := s.cache.Chunks(ctx, doc)
	s.Require().NoError(err)
	s.Require().Len(chunks, 1)
	s.Equal("second body", chunks[0].Body, "no checksum means no cache entry")
}

func (s *RedisCacheSuite) TestInnerErrorPropagates() {
	ctx := context.Background()
	doc := newCachedDocument("sha256:missing")
	s.inner.FailWith(doc, errors.New("blob storage offline"))

	_, err := s.cache.Chunks(ctx, doc)
	s.Require().Error(err)
	var extractionErr *corpus.ExtractionError
	s.ErrorAs(err, &extractionErr)
}

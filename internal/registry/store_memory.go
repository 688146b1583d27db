package registry

import (
	"context"
	"sort"
	"strings"
	"sync"

	"govlink/internal/classify"
	"govlink/pkg/domain"
	"govlink/pkg/platform/sentinel"
)

// InMemory implements Store with mutex-guarded maps. It is the primary test
// double and a viable single-process backend.
type InMemory struct {
	mu              sync.RWMutex
	docs            map[domain.DocumentID]*Document
	classifications map[domain.DocumentID]*Classification
	profiles        map[domain.DocumentID]*GovernanceProfile
}

// NewInMemory creates an empty in-memory registry store.
func NewInMemory() *InMemory {
	return &InMemory{
		docs:            make(map[domain.DocumentID]*Document),
		classifications: make(map[domain.DocumentID]*Classification),
		profiles:        make(map[domain.DocumentID]*GovernanceProfile),
	}
}

func (s *InMemory) Put(ctx context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *doc
	s.docs[doc.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, fund domain.FundID, id domain.DocumentID) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok || doc.FundID != fund {
		return nil, sentinel.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (s *InMemory) ListByFund(ctx context.Context, fund domain.FundID) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, 0)
	for _, doc := range s.docs {
		if doc.FundID == fund {
			out = append(out, *doc)
		}
	}
	sortDocs(out)
	return out, nil
}

func (s *InMemory) ListByContainer(ctx context.Context, fund domain.FundID, container string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, 0)
	for _, doc := range s.docs {
		if doc.FundID == fund && strings.EqualFold(doc.Container, container) {
			out = append(out, *doc)
		}
	}
	sortDocs(out)
	return out, nil
}

func (s *InMemory) SetDetectedDocType(ctx context.Context, fund domain.FundID, id domain.DocumentID, docType classify.DocType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok || doc.FundID != fund {
		return sentinel.ErrNotFound
	}
	doc.DetectedDocType = docType
	return nil
}

func (s *InMemory) UpsertClassification(ctx context.Context, row *Classification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.classifications[row.DocumentID]; ok && existing.FundID == row.FundID {
		existing.ApplyPatch(*row)
		return nil
	}
	cp := *row
	s.classifications[row.DocumentID] = &cp
	return nil
}

func (s *InMemory) GetClassification(ctx context.Context, fund domain.FundID, id domain.DocumentID) (*Classification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.classifications[id]
	if !ok || row.FundID != fund {
		return nil, sentinel.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (s *InMemory) UpsertProfile(ctx context.Context, row *GovernanceProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.profiles[row.DocumentID]; ok && existing.FundID == row.FundID {
		existing.ApplyPatch(*row)
		return nil
	}
	cp := *row
	s.profiles[row.DocumentID] = &cp
	return nil
}

func (s *InMemory) GetProfile(ctx context.Context, fund domain.FundID, id domain.DocumentID) (*GovernanceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.profiles[id]
	if !ok || row.FundID != fund {
		return nil, sentinel.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

// sortDocs keeps listings deterministic across runs; map iteration order is
// not.
func sortDocs(docs []Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Container != docs[j].Container {
			return docs[i].Container < docs[j].Container
		}
		return docs[i].BlobPath < docs[j].BlobPath
	})
}

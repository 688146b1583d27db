package anchor

import (
	"context"
	"sync"

	"govlink/pkg/domain"
)

// Store persists extracted anchors. Extraction output fully replaces the
// document's previous anchor set; there is no per-anchor update.
type Store interface {
	ReplaceForDocument(ctx context.Context, fund domain.FundID, doc domain.DocumentID, anchors []Anchor) error
	ListByDocument(ctx context.Context, fund domain.FundID, doc domain.DocumentID) ([]Anchor, error)
}

// InMemory implements Store for tests and fixtures.
type InMemory struct {
	mu      sync.RWMutex
	anchors map[domain.FundID]map[domain.DocumentID][]Anchor
}

// NewInMemory creates an empty in-memory anchor store.
func NewInMemory() *InMemory {
	return &InMemory{anchors: make(map[domain.FundID]map[domain.DocumentID][]Anchor)}
}

func (s *InMemory) ReplaceForDocument(ctx context.Context, fund domain.FundID, doc domain.DocumentID, anchors []Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDoc, ok := s.anchors[fund]
	if !ok {
		byDoc = make(map[domain.DocumentID][]Anchor)
		s.anchors[fund] = byDoc
	}
	cp := make([]Anchor, len(anchors))
	copy(cp, anchors)
	byDoc[doc] = cp
	return nil
}

func (s *InMemory) ListByDocument(ctx context.Context, fund domain.FundID, doc domain.DocumentID) ([]Anchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.anchors[fund][doc]
	cp := make([]Anchor, len(stored))
	copy(cp, stored)
	return cp, nil
}

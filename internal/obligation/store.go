package obligation

import (
	"context"
	"sort"
	"sync"
	"time"

	"govlink/pkg/domain"
	"govlink/pkg/platform/sentinel"
)

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

// Store is the read port over the obligation register feed.
type Store interface {
	// ListByFund returns register rows effective at or before asOf, ordered
	// by obligation ID for deterministic processing.
	ListByFund(ctx context.Context, fund domain.FundID, asOf time.Time) ([]Entry, error)
	FindByObligationID(ctx context.Context, fund domain.FundID, obligationID string) (*Entry, error)
}

// InMemory implements Store over a seeded slice; the register feed collaborator
// populates it.
type InMemory struct {
	mu      sync.RWMutex
	entries map[domain.FundID]map[string]Entry
}

// NewInMemory creates an empty in-memory register.
func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[domain.FundID]map[string]Entry)}
}

// Seed inserts or replaces a register row.
func (s *InMemory) Seed(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.entries[entry.FundID]
	if !ok {
		byID = make(map[string]Entry)
		s.entries[entry.FundID] = byID
	}
	byID[entry.ObligationID] = entry
}

func (s *InMemory) ListByFund(ctx context.Context, fund domain.FundID, asOf time.Time) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0)
	for _, e := range s.entries[fund] {
		if e.EffectiveAt.After(asOf) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObligationID < out[j].ObligationID })
	return out, nil
}

func (s *InMemory) FindByObligationID(ctx context.Context, fund domain.FundID, obligationID string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[fund][obligationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := e
	return &cp, nil
}

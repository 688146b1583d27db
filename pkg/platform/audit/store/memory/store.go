// Package memory provides an in-memory audit store for tests and
// single-process runs.
package memory

import (
	"context"
	"sync"

	audit "govlink/pkg/platform/audit"

	id "govlink/pkg/domain"
)

// InMemoryStore keeps events in append order.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByRun(_ context.Context, run id.RunID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, 0)
	for _, e := range s.events {
		if e.RunID == run {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every stored event, for assertions.
func (s *InMemoryStore) All() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]audit.Event, len(s.events))
	copy(cp, s.events)
	return cp
}

package graph

import (
	"context"
	"sort"
	"sync"
	"time"

	"govlink/pkg/domain"
	"govlink/pkg/platform/sentinel"
)

type entityKey struct {
	fund domain.FundID
	typ  EntityType
	name string
}

type linkKey struct {
	fund   domain.FundID
	source domain.DocumentID
	target domain.EntityID
	typ    LinkType
}

type evidenceKey struct {
	fund   domain.FundID
	entity domain.EntityID
}

// InMemory implements Store with mutex-guarded maps keyed by the business
// keys, so the uniqueness invariants hold by construction.
type InMemory struct {
	mu       sync.RWMutex
	entities map[entityKey]*Entity
	links    map[linkKey]*Link
	evidence map[evidenceKey]*EvidenceMap
	clock    func() time.Time
}

// NewInMemory creates an empty in-memory graph store.
func NewInMemory() *InMemory {
	return &InMemory{
		entities: make(map[entityKey]*Entity),
		links:    make(map[linkKey]*Link),
		evidence: make(map[evidenceKey]*EvidenceMap),
		clock:    time.Now,
	}
}

func (s *InMemory) UpsertEntity(ctx context.Context, entity *Entity) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entityKey{fund: entity.FundID, typ: entity.Type, name: entity.CanonicalName}
	if existing, ok := s.entities[key]; ok {
		existing.Touch(s.clock())
		entity.ID = existing.ID
		entity.CreatedAt = existing.CreatedAt
		entity.UpdatedAt = existing.UpdatedAt
		return false, nil
	}
	if entity.ID.IsNil() {
		entity.ID = domain.NewEntityID()
	}
	now := s.clock()
	entity.CreatedAt = now
	entity.UpdatedAt = now
	cp := *entity
	s.entities[key] = &cp
	return true, nil
}

func (s *InMemory) FindEntity(ctx context.Context, fund domain.FundID, entityType EntityType, canonicalName string) (*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[entityKey{fund: fund, typ: entityType, name: canonicalName}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *InMemory) ListEntities(ctx context.Context, fund domain.FundID) ([]Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entity, 0)
	for _, e := range s.entities {
		if e.FundID == fund {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].CanonicalName < out[j].CanonicalName
	})
	return out, nil
}

func (s *InMemory) UpsertLink(ctx context.Context, link *Link) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := linkKey{fund: link.FundID, source: link.SourceDocumentID, target: link.TargetEntityID, typ: link.Type}
	if existing, ok := s.links[key]; ok {
		fresh := *link
		fresh.UpdatedAt = s.clock()
		existing.ApplyPatch(fresh)
		link.ID = existing.ID
		link.CreatedAt = existing.CreatedAt
		return false, nil
	}
	if link.ID == (domain.LinkID{}) {
		link.ID = domain.NewLinkID()
	}
	now := s.clock()
	link.CreatedAt = now
	link.UpdatedAt = now
	cp := *link
	s.links[key] = &cp
	return true, nil
}

func (s *InMemory) ListLinks(ctx context.Context, fund domain.FundID) ([]Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Link, 0)
	for _, l := range s.links {
		if l.FundID == fund {
			out = append(out, *l)
		}
	}
	sortLinks(out)
	return out, nil
}

func (s *InMemory) ListLinksBySource(ctx context.Context, fund domain.FundID, source domain.DocumentID) ([]Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Link, 0)
	for _, l := range s.links {
		if l.FundID == fund && l.SourceDocumentID == source {
			out = append(out, *l)
		}
	}
	sortLinks(out)
	return out, nil
}

func (s *InMemory) DeleteLinksByType(ctx context.Context, fund domain.FundID, linkType LinkType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.links {
		if key.fund == fund && key.typ == linkType {
			delete(s.links, key)
		}
	}
	return nil
}

func (s *InMemory) UpsertEvidenceMap(ctx context.Context, row *EvidenceMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := evidenceKey{fund: row.FundID, entity: row.ObligationEntityID}
	if existing, ok := s.evidence[key]; ok {
		existing.ApplyPatch(*row)
		return nil
	}
	cp := *row
	s.evidence[key] = &cp
	return nil
}

func (s *InMemory) ListEvidenceMaps(ctx context.Context, fund domain.FundID) ([]EvidenceMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]EvidenceMap, 0)
	for _, m := range s.evidence {
		if m.FundID == fund {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ObligationEntityID.String() < out[j].ObligationEntityID.String()
	})
	return out, nil
}

func sortLinks(links []Link) {
	sort.Slice(links, func(i, j int) bool {
		if links[i].SourceDocumentID != links[j].SourceDocumentID {
			return links[i].SourceDocumentID.String() < links[j].SourceDocumentID.String()
		}
		if links[i].TargetEntityID != links[j].TargetEntityID {
			return links[i].TargetEntityID.String() < links[j].TargetEntityID.String()
		}
		return links[i].Type < links[j].Type
	})
}

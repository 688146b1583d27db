package index

import (
	"context"
	"sync"
	"time"

	"govlink/pkg/domain"
)

// ManagerProfile is the canonical manager row consumed from the manager
// profile feed.
type ManagerProfile struct {
	FundID      domain.FundID
	Name        string
	EffectiveAt time.Time
}

// Deal is the canonical deal row consumed from the deal feed.
type Deal struct {
	FundID  domain.FundID
	Name    string
	Sponsor string
}

// ManagerFeed is the read port over manager profiles.
type ManagerFeed interface {
	// List returns profiles effective at or before asOf.
	List(ctx context.Context, fund domain.FundID, asOf time.Time) ([]ManagerProfile, error)
}

// DealFeed is the read port over deals.
type DealFeed interface {
	List(ctx context.Context, fund domain.FundID) ([]Deal, error)
}

// StaticManagerFeed is a seeded ManagerFeed for tests.
type StaticManagerFeed struct {
	mu       sync.RWMutex
	profiles []ManagerProfile
}

func NewStaticManagerFeed(profiles ...ManagerProfile) *StaticManagerFeed {
	return &StaticManagerFeed{profiles: profiles}
}

func (f *StaticManagerFeed) Add(p ManagerProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles = append(f.profiles, p)
}

func (f *StaticManagerFeed) List(ctx context.Context, fund domain.FundID, asOf time.Time) ([]ManagerProfile, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]ManagerProfile, 0)
	for _, p := range f.profiles {
		if p.FundID == fund && !p.EffectiveAt.After(asOf) {
			out = append(out, p)
		}
	}
	return out, nil
}

// StaticDealFeed is a seeded DealFeed for tests.
type StaticDealFeed struct {
	mu    sync.RWMutex
	deals []Deal
}

func NewStaticDealFeed(deals ...Deal) *StaticDealFeed {
	return &StaticDealFeed{deals: deals}
}

func (f *StaticDealFeed) Add(d Deal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deals = append(f.deals, d)
}

func (f *StaticDealFeed) List(ctx context.Context, fund domain.FundID) ([]Deal, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Deal, 0)
	for _, d := range f.deals {
		if d.FundID == fund {
			out = append(out, d)
		}
	}
	return out, nil
}

package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"monadmons-arena/models"

	"github.com/google/uuid"
)

// MemoryInventory is an in-process Inventory for tests and dev mode.
type MemoryInventory struct {
	mu       sync.Mutex
	cards    map[string]models.OwnedCard
	settled  map[string]models.MatchResult
	now      func() time.Time
	reassign int
}

func NewMemoryInventory() *MemoryInventory {
	return &MemoryInventory{
		cards:   make(map[string]models.OwnedCard),
		settled: make(map[string]models.MatchResult),
		now:     time.Now,
	}
}

func (m *MemoryInventory) GetOwnedCards(ctx context.Context, address string) ([]models.OwnedCard, error) {
	address = NormalizeAddress(address)
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.OwnedCard
	for _, c := range m.cards {
		if c.OwnerAddress == address {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AcquiredAt.After(out[j].AcquiredAt) })
	return out, nil
}

func (m *MemoryInventory) InsertOwnedCard(ctx context.Context, cardID, owner string, via models.AcquiredVia) (models.OwnedCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	oc := models.OwnedCard{
		ID:           uuid.NewString(),
		CardID:       cardID,
		OwnerAddress: NormalizeAddress(owner),
		AcquiredVia:  via,
		AcquiredAt:   m.now(),
	}
	m.cards[oc.ID] = oc
	return oc, nil
}

func (m *MemoryInventory) ReassignOwner(ctx context.Context, ownedCardID, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	oc, ok := m.cards[ownedCardID]
	if !ok || oc.OwnerAddress != NormalizeAddress(from) {
		return fmt.Errorf("reassign %s: %w", ownedCardID, ErrNotOwner)
	}
	oc.OwnerAddress = NormalizeAddress(to)
	oc.AcquiredVia = models.AcquiredViaBattleWin
	oc.AcquiredAt = m.now()
	m.cards[ownedCardID] = oc
	m.reassign++
	return nil
}

func (m *MemoryInventory) HasAnyCards(ctx context.Context, address string) (bool, error) {
	address = NormalizeAddress(address)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cards {
		if c.OwnerAddress == address {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryInventory) CanClaimDaily(ctx context.Context, address string) (DailyClaimStatus, error) {
	address = NormalizeAddress(address)
	m.mu.Lock()
	defer m.mu.Unlock()
	var last time.Time
	for _, c := range m.cards {
		if c.OwnerAddress == address && c.AcquiredVia == models.AcquiredViaDailyClaim && c.AcquiredAt.After(last) {
			last = c.AcquiredAt
		}
	}
	if last.IsZero() {
		return DailyClaimStatus{CanClaim: true}, nil
	}
	return nextDailyClaim(last, m.now()), nil
}

func (m *MemoryInventory) ClaimSettlement(ctx context.Context, result models.MatchResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.settled[result.MatchID]; ok {
		return false, nil
	}
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	result.CreatedAt = m.now()
	m.settled[result.MatchID] = result
	return true, nil
}

// Reassignments counts successful ReassignOwner calls.
func (m *MemoryInventory) Reassignments() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reassign
}

// MatchHistory lists settled matches a wallet took part in, newest first.
func (m *MemoryInventory) MatchHistory(ctx context.Context, address string, limit int) ([]models.MatchResult, error) {
	address = NormalizeAddress(address)
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MatchResult
	for _, r := range m.settled {
		if r.WinnerAddress == address || r.LoserAddress == address {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

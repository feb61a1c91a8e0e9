package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"monadmons-arena/models"
)

// DailyClaimCooldown is the wait between two daily claims.
const DailyClaimCooldown = 24 * time.Hour

// DailyClaimStatus reports whether a wallet may claim its daily card.
type DailyClaimStatus struct {
	CanClaim    bool       `json:"can_claim"`
	NextClaimAt *time.Time `json:"next_claim_at,omitempty"`
}

// Inventory is the card ownership store.
type Inventory interface {
	GetOwnedCards(ctx context.Context, address string) ([]models.OwnedCard, error)
	InsertOwnedCard(ctx context.Context, cardID, owner string, via models.AcquiredVia) (models.OwnedCard, error)
	// ReassignOwner moves an owned card to a new wallet in place. It fails with
	// ErrNotOwner when the card is not currently held by from.
	ReassignOwner(ctx context.Context, ownedCardID, from, to string) error
	HasAnyCards(ctx context.Context, address string) (bool, error)
	CanClaimDaily(ctx context.Context, address string) (DailyClaimStatus, error)
	// ClaimSettlement records the result of a match. It reports false when the
	// match was already settled, in which case no transfer may happen.
	ClaimSettlement(ctx context.Context, result models.MatchResult) (bool, error)
}

// MatchHistorian is implemented by inventories that keep settled match results.
type MatchHistorian interface {
	MatchHistory(ctx context.Context, address string, limit int) ([]models.MatchResult, error)
}

var addressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// NormalizeAddress lowercases and trims a wallet address.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ValidAddress reports whether address, once normalized, is a 0x-prefixed
// 20-byte hex wallet address.
func ValidAddress(address string) bool {
	return addressPattern.MatchString(NormalizeAddress(address))
}

func nextDailyClaim(last time.Time, now time.Time) DailyClaimStatus {
	next := last.Add(DailyClaimCooldown)
	if !now.Before(next) {
		return DailyClaimStatus{CanClaim: true}
	}
	return DailyClaimStatus{CanClaim: false, NextClaimAt: &next}
}

// InventoryService implements the acquisition flows on top of an Inventory.
type InventoryService struct {
	Inventory Inventory
	Catalog   *CatalogService
	Intn      func(n int) int
}

func NewInventoryService(inv Inventory, catalog *CatalogService) *InventoryService {
	return &InventoryService{Inventory: inv, Catalog: catalog, Intn: rand.Intn}
}

// OwnedCardView joins an ownership row with its catalog definition.
type OwnedCardView struct {
	models.OwnedCard
	Card models.CardDefinition `json:"card"`
}

// Collection lists a wallet's cards, dropping rows whose card left the catalog.
func (s *InventoryService) Collection(ctx context.Context, address string) ([]OwnedCardView, error) {
	owned, err := s.Inventory.GetOwnedCards(ctx, address)
	if err != nil {
		return nil, err
	}
	views := make([]OwnedCardView, 0, len(owned))
	for _, oc := range owned {
		card, ok := s.Catalog.Get(oc.CardID)
		if !ok {
			continue
		}
		views = append(views, OwnedCardView{OwnedCard: oc, Card: card})
	}
	return views, nil
}

// ClaimDailyCard grants a random daily-claimable card once per cooldown window.
func (s *InventoryService) ClaimDailyCard(ctx context.Context, address string) (models.CardDefinition, error) {
	status, err := s.Inventory.CanClaimDaily(ctx, address)
	if err != nil {
		return models.CardDefinition{}, err
	}
	if !status.CanClaim {
		return models.CardDefinition{}, fmt.Errorf("next claim at %s: %w", status.NextClaimAt.Format(time.RFC3339), ErrDailyClaimUnavailable)
	}
	pool := s.Catalog.DailyClaimable()
	if len(pool) == 0 {
		return models.CardDefinition{}, fmt.Errorf("no daily claimable cards: %w", ErrCardNotFound)
	}
	card := pool[s.Intn(len(pool))]
	if _, err := s.Inventory.InsertOwnedCard(ctx, card.ID, address, models.AcquiredViaDailyClaim); err != nil {
		return models.CardDefinition{}, err
	}
	log.Printf("🎁 [INVENTORY] Daily claim: %s → %s", card.ID, NormalizeAddress(address))
	return card, nil
}

// GiveStarterCard grants the starter card to a wallet that owns nothing.
func (s *InventoryService) GiveStarterCard(ctx context.Context, address string) (models.CardDefinition, error) {
	has, err := s.Inventory.HasAnyCards(ctx, address)
	if err != nil {
		return models.CardDefinition{}, err
	}
	if has {
		return models.CardDefinition{}, ErrAlreadyHasCards
	}
	card, ok := s.Catalog.Get(models.StarterCardID)
	if !ok {
		return models.CardDefinition{}, fmt.Errorf("starter card %s: %w", models.StarterCardID, ErrCardNotFound)
	}
	if _, err := s.Inventory.InsertOwnedCard(ctx, card.ID, address, models.AcquiredViaStarter); err != nil {
		return models.CardDefinition{}, err
	}
	log.Printf("🎁 [INVENTORY] Starter card granted to %s", NormalizeAddress(address))
	return card, nil
}

package services

import (
	"context"
	"log"
	"sync"

	"monadmons-arena/models"
)

// Settler moves the loser's staked card to the winner once a match ends.
// Every client runs it on reaching the result phase; only the winner's
// client ever writes.
type Settler struct {
	mu        sync.Mutex
	store     RoomStore
	inventory Inventory
	address   string
	done      map[string]bool
}

func NewSettler(store RoomStore, inventory Inventory, address string) *Settler {
	return &Settler{
		store:     store,
		inventory: inventory,
		address:   NormalizeAddress(address),
		done:      make(map[string]bool),
	}
}

// claim marks a match as settled locally and reports whether this call won the mark.
func (s *Settler) claim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done[key] {
		return false
	}
	s.done[key] = true
	return true
}

// Done reports whether settlement already ran for the match.
func (s *Settler) Done(matchID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done[matchID]
}

// Settle runs settlement for the match behind snapshot. It reports whether a
// card changed hands. Failures are logged, never returned: the match counts as
// settled either way.
func (s *Settler) Settle(ctx context.Context, snapshot models.Room) bool {
	key := snapshot.MatchID
	if key == "" {
		key = snapshot.ID
	}
	if !s.claim(key) {
		return false
	}

	room, err := s.store.ReadRoom(ctx, snapshot.ID)
	if err != nil {
		log.Printf("❌ [SETTLEMENT] Could not re-read room %s: %v", snapshot.ID, err)
		return false
	}
	if room.MatchID != snapshot.MatchID {
		log.Printf("⚠️ [SETTLEMENT] Room %s now hosts another match, skipping", room.ID)
		return false
	}
	if room.Winner == models.WinnerNone || room.Winner == models.WinnerDraw {
		return false
	}

	iAmP1 := NormalizeAddress(room.Player1Address) == s.address
	iAmP2 := NormalizeAddress(room.Player2Address) == s.address
	won := (room.Winner == models.WinnerPlayer1 && iAmP1) || (room.Winner == models.WinnerPlayer2 && iAmP2)
	if !won {
		return false
	}

	loser, loserCard := room.Player2Address, room.Player2Card
	if room.Winner == models.WinnerPlayer2 {
		loser, loserCard = room.Player1Address, room.Player1Card
	}
	if loserCard == nil {
		log.Printf("❌ [SETTLEMENT] Room %s has no staked card for loser %s", room.ID, loser)
		return false
	}

	owned, err := s.inventory.GetOwnedCards(ctx, loser)
	if err != nil {
		log.Printf("❌ [SETTLEMENT] Could not load cards of %s: %v", loser, err)
		return false
	}
	var stake *models.OwnedCard
	for i := range owned {
		if owned[i].CardID == loserCard.ID {
			stake = &owned[i]
			break
		}
	}
	if stake == nil {
		log.Printf("⚠️ [SETTLEMENT] %s no longer owns %s, nothing to transfer", loser, loserCard.ID)
		return false
	}

	first, err := s.inventory.ClaimSettlement(ctx, models.MatchResult{
		MatchID:       room.MatchID,
		RoomID:        room.ID,
		WinnerAddress: s.address,
		LoserAddress:  NormalizeAddress(loser),
		CardID:        loserCard.ID,
		OwnedCardID:   stake.ID,
		Result:        "win",
	})
	if err != nil {
		log.Printf("❌ [SETTLEMENT] Could not claim settlement of match %s: %v", room.MatchID, err)
		return false
	}
	if !first {
		log.Printf("⚠️ [SETTLEMENT] Match %s already settled", room.MatchID)
		return false
	}

	if err := s.inventory.ReassignOwner(ctx, stake.ID, loser, s.address); err != nil {
		log.Printf("❌ [SETTLEMENT] Transfer of %s from %s failed: %v", stake.ID, loser, err)
		return false
	}
	log.Printf("🏆 [SETTLEMENT] %s won %s (%s) from %s in room %s", s.address, loserCard.ID, stake.ID, loser, room.ID)
	return true
}

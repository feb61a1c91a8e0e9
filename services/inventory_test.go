package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"monadmons-arena/models"
)

func newInventoryService(clock *time.Time) (*InventoryService, *MemoryInventory) {
	inv := NewMemoryInventory()
	inv.now = func() time.Time { return *clock }
	svc := NewInventoryService(inv, NewCatalogService(models.DefaultCatalog))
	svc.Intn = func(int) int { return 0 }
	return svc, inv
}

func TestDailyClaimCooldown(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc, inv := newInventoryService(&clock)

	card, err := svc.ClaimDailyCard(ctx, "0xAAA")
	if err != nil {
		t.Fatal(err)
	}
	if !card.DailyClaimable {
		t.Fatalf("claimed non-claimable card %s", card.ID)
	}

	clock = clock.Add(23 * time.Hour)
	if _, err := svc.ClaimDailyCard(ctx, "0xaaa"); !errors.Is(err, ErrDailyClaimUnavailable) {
		t.Fatalf("claim inside cooldown: got %v", err)
	}
	status, _ := inv.CanClaimDaily(ctx, "0xaaa")
	want := clock.Add(time.Hour)
	if status.CanClaim || status.NextClaimAt == nil || !status.NextClaimAt.Equal(want) {
		t.Fatalf("status = %+v, want next claim at %s", status, want)
	}

	clock = clock.Add(time.Hour)
	if _, err := svc.ClaimDailyCard(ctx, "0xaaa"); err != nil {
		t.Fatalf("claim after cooldown: %v", err)
	}
	owned, _ := inv.GetOwnedCards(ctx, "0xaaa")
	if len(owned) != 2 {
		t.Fatalf("owned = %d cards, want 2", len(owned))
	}
}

func TestStarterCardOnlyForEmptyWallets(t *testing.T) {
	ctx := context.Background()
	clock := time.Now()
	svc, _ := newInventoryService(&clock)

	card, err := svc.GiveStarterCard(ctx, "0xAAA")
	if err != nil || card.ID != models.StarterCardID {
		t.Fatalf("starter = %s, %v", card.ID, err)
	}
	if _, err := svc.GiveStarterCard(ctx, "0xaaa"); !errors.Is(err, ErrAlreadyHasCards) {
		t.Fatalf("second starter: got %v", err)
	}

	views, err := svc.Collection(ctx, "0xaaa")
	if err != nil || len(views) != 1 || views[0].Card.ID != models.StarterCardID || views[0].AcquiredVia != models.AcquiredViaStarter {
		t.Fatalf("collection = %+v, %v", views, err)
	}
}

func TestCollectionSkipsUnknownCards(t *testing.T) {
	ctx := context.Background()
	clock := time.Now()
	svc, inv := newInventoryService(&clock)
	inv.InsertOwnedCard(ctx, "retired-card", "0xaaa", models.AcquiredViaShop)
	inv.InsertOwnedCard(ctx, models.StarterCardID, "0xaaa", models.AcquiredViaShop)

	views, _ := svc.Collection(ctx, "0xaaa")
	if len(views) != 1 {
		t.Fatalf("views = %+v", views)
	}
}

func TestReassignOwnerRequiresCurrentOwner(t *testing.T) {
	ctx := context.Background()
	inv := NewMemoryInventory()
	oc, _ := inv.InsertOwnedCard(ctx, "mew", "0xBBB", models.AcquiredViaShop)

	if err := inv.ReassignOwner(ctx, oc.ID, "0xccc", "0xaaa"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("wrong owner: got %v", err)
	}
	if err := inv.ReassignOwner(ctx, "missing", "0xbbb", "0xaaa"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("missing card: got %v", err)
	}
	if err := inv.ReassignOwner(ctx, oc.ID, "0xBBB", "0xAAA"); err != nil {
		t.Fatal(err)
	}
	if err := inv.ReassignOwner(ctx, oc.ID, "0xbbb", "0xaaa"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("second transfer should fail: %v", err)
	}
	owned, _ := inv.GetOwnedCards(ctx, "0xaaa")
	if len(owned) != 1 || owned[0].ID != oc.ID || owned[0].AcquiredVia != models.AcquiredViaBattleWin {
		t.Fatalf("owned = %+v", owned)
	}
}

func TestClaimSettlementOncePerMatch(t *testing.T) {
	ctx := context.Background()
	inv := NewMemoryInventory()
	r := models.MatchResult{MatchID: "m1", WinnerAddress: "0xaaa", LoserAddress: "0xbbb", Result: "win"}
	first, err := inv.ClaimSettlement(ctx, r)
	if err != nil || !first {
		t.Fatalf("first claim = %v, %v", first, err)
	}
	again, err := inv.ClaimSettlement(ctx, r)
	if err != nil || again {
		t.Fatalf("second claim = %v, %v", again, err)
	}
	history, _ := inv.MatchHistory(ctx, "0xbbb", 10)
	if len(history) != 1 || history[0].MatchID != "m1" {
		t.Fatalf("history = %+v", history)
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalogService(models.DefaultCatalog)
	if len(c.All()) != len(models.DefaultCatalog) {
		t.Fatal("catalog size mismatch")
	}
	starter, ok := c.Get(models.StarterCardID)
	if !ok || starter.MaxHP <= 0 || len(starter.Moves) == 0 {
		t.Fatalf("starter = %+v", starter)
	}
	if _, ok := c.Get("missingno"); ok {
		t.Fatal("unknown card found")
	}
	if len(c.DailyClaimable()) == 0 {
		t.Fatal("no daily claimable cards")
	}
	seen := map[string]bool{}
	for _, card := range c.All() {
		if seen[card.ID] {
			t.Fatalf("duplicate id %s", card.ID)
		}
		seen[card.ID] = true
	}
}

func TestLoadCatalogFileDefaultsToBuiltIn(t *testing.T) {
	c, err := LoadCatalogFile("")
	if err != nil || len(c.All()) != len(models.DefaultCatalog) {
		t.Fatalf("LoadCatalogFile(\"\") = %v", err)
	}
}

func TestValidAddress(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0x0000000000000000000000000000000000000b0b", true},
		{"0X0000000000000000000000000000000000000B0B", true},
		{"  0x0000000000000000000000000000000000000b0b\n", true},
		{"0x0b0b", false},
		{"0000000000000000000000000000000000000b0b", false},
		{"0x0000000000000000000000000000000000000b0b00", false},
		{"0xzz00000000000000000000000000000000000b0b", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidAddress(tt.in); got != tt.want {
			t.Errorf("ValidAddress(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

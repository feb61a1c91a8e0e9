package services

import (
	"context"
	"testing"

	"monadmons-arena/models"
)

func finishedRoom(t *testing.T, store *MemoryRoomStore, winner models.Winner) models.Room {
	t.Helper()
	r := battleRoom()
	r.Winner = winner
	r.Status = models.RoomStatusFinished
	room, err := store.CreateRoom(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	return room
}

func TestSettleTransfersLoserCardExactlyOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRoomStore()
	inv := NewMemoryInventory()
	stake, _ := inv.InsertOwnedCard(ctx, guardian.ID, "0xBBB", models.AcquiredViaStarter)
	room := finishedRoom(t, store, models.WinnerPlayer1)

	winner := NewSettler(store, inv, "0xAAA")
	if !winner.Settle(ctx, room) {
		t.Fatal("winner should settle")
	}
	for i := 0; i < 3; i++ {
		if winner.Settle(ctx, room) {
			t.Fatal("repeat delivery must not settle again")
		}
	}
	// A second client for the same wallet (another tab) hits the server-side key.
	if NewSettler(store, inv, "0xaaa").Settle(ctx, room) {
		t.Fatal("second settler for the same match must not transfer")
	}
	if inv.Reassignments() != 1 {
		t.Fatalf("reassignments = %d, want 1", inv.Reassignments())
	}

	owned, _ := inv.GetOwnedCards(ctx, "0xaaa")
	if len(owned) != 1 || owned[0].ID != stake.ID || owned[0].AcquiredVia != models.AcquiredViaBattleWin {
		t.Fatalf("winner cards = %+v", owned)
	}
	if left, _ := inv.GetOwnedCards(ctx, "0xbbb"); len(left) != 0 {
		t.Fatalf("loser still owns %+v", left)
	}
	if !winner.Done(room.MatchID) {
		t.Fatal("match should be marked settled")
	}
}

func TestSettleLoserAndDrawDoNothing(t *testing.T) {
	tests := []struct {
		name    string
		winner  models.Winner
		address string
	}{
		{"loser", models.WinnerPlayer1, "0xbbb"},
		{"draw player1", models.WinnerDraw, "0xaaa"},
		{"draw player2", models.WinnerDraw, "0xbbb"},
		{"spectator", models.WinnerPlayer2, "0xccc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryRoomStore()
			inv := NewMemoryInventory()
			inv.InsertOwnedCard(ctx, striker.ID, "0xaaa", models.AcquiredViaStarter)
			inv.InsertOwnedCard(ctx, guardian.ID, "0xbbb", models.AcquiredViaStarter)
			room := finishedRoom(t, store, tt.winner)

			s := NewSettler(store, inv, tt.address)
			if s.Settle(ctx, room) {
				t.Fatal("unexpected transfer")
			}
			if !s.Done(room.MatchID) {
				t.Fatal("settlement should still be marked done")
			}
			if inv.Reassignments() != 0 {
				t.Fatalf("reassignments = %d", inv.Reassignments())
			}
		})
	}
}

func TestSettleSkipsWhenLoserNoLongerOwnsCard(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRoomStore()
	inv := NewMemoryInventory()
	room := finishedRoom(t, store, models.WinnerPlayer2)

	if NewSettler(store, inv, "0xbbb").Settle(ctx, room) {
		t.Fatal("nothing to transfer")
	}
	first, err := inv.ClaimSettlement(ctx, models.MatchResult{MatchID: room.MatchID})
	if err != nil || !first {
		t.Fatalf("no result should have been recorded: first=%v err=%v", first, err)
	}
}

func TestSettleSkipsReplacedMatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRoomStore()
	inv := NewMemoryInventory()
	inv.InsertOwnedCard(ctx, guardian.ID, "0xbbb", models.AcquiredViaStarter)
	old := finishedRoom(t, store, models.WinnerPlayer1)

	store.DeleteRoom(ctx, old.ID)
	fresh := battleRoom()
	fresh.MatchID = "match-2"
	fresh.Winner = models.WinnerPlayer1
	store.CreateRoom(ctx, fresh)

	if NewSettler(store, inv, "0xaaa").Settle(ctx, old) {
		t.Fatal("settled a snapshot whose room now hosts another match")
	}
}

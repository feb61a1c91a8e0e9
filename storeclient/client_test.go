package storeclient

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"monadmons-arena/handlers"
	"monadmons-arena/middleware"
	"monadmons-arena/models"
	"monadmons-arena/services"

	"github.com/gofiber/fiber/v2"
)

const (
	alice = "0x00000000000000000000000000000000000a11ce"
	bob   = "0x0000000000000000000000000000000000000b0b"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// startServer runs the real route set on a loopback port.
func startServer(t *testing.T, token string) (*Client, *services.MemoryInventory) {
	t.Helper()
	handlers.StreamKeepAlive = 50 * time.Millisecond
	ReconnectDelay = 20 * time.Millisecond

	store := services.NewMemoryRoomStore()
	inv := services.NewMemoryInventory()
	catalog := services.NewCatalogService(models.DefaultCatalog)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(middleware.GatewayAuthMiddleware(token))
	handlers.SetupHealthRoutes(app)
	handlers.SetupCatalogRoutes(app, catalog)
	handlers.SetupRoomRoutes(app, store)
	handlers.SetupPlayerRoutes(app, services.NewInventoryService(inv, catalog))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go app.Listener(ln)
	t.Cleanup(func() { app.ShutdownWithTimeout(time.Second) })

	return New("http://"+ln.Addr().String(), token), inv
}

func TestReadEvents(t *testing.T) {
	stream := ":\n\n" +
		"event: room\ndata: {\"id\":\"A\"}\n\n" +
		"data: line1\ndata: line2\n\n" +
		"event: room\n\n"
	var got []string
	err := readEvents(strings.NewReader(stream), func(event string, data []byte) {
		got = append(got, event+"="+string(data))
	})
	if err == nil {
		t.Fatal("end of stream should be reported")
	}
	want := []string{`room={"id":"A"}`, "message=line1\nline2"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("events = %q, want %q", got, want)
	}
}

func TestClientRoomStore(t *testing.T) {
	ctx := context.Background()
	c, _ := startServer(t, "secret")

	room, err := c.CreateRoom(ctx, models.Room{ID: "ZX12", MatchID: "m-1", Player1Address: alice, Player1HP: 100})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.CreateRoom(ctx, models.Room{ID: "ZX12"}); !errors.Is(err, services.ErrRoomExists) {
		t.Fatalf("duplicate create: %v", err)
	}

	var (
		mu   sync.Mutex
		seen []models.Room
	)
	cancel, err := c.SubscribeRoom(ctx, room.ID, func(r models.Room) {
		mu.Lock()
		seen = append(seen, r)
		mu.Unlock()
	})
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	hp := 42
	if _, err := c.UpdateRoom(ctx, room.ID, models.RoomUpdate{Player1HP: &hp}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "streamed update", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1].Player1HP == 42
	})

	if err := c.DeleteRoom(ctx, room.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ReadRoom(ctx, room.ID); !errors.Is(err, services.ErrRoomNotFound) {
		t.Fatalf("read deleted: %v", err)
	}
	if _, err := c.UpdateRoom(ctx, room.ID, models.RoomUpdate{Player1HP: &hp}); !errors.Is(err, services.ErrRoomNotFound) {
		t.Fatalf("update deleted: %v", err)
	}
	if _, err := c.SubscribeRoom(ctx, "NONE", func(models.Room) {}); !errors.Is(err, services.ErrRoomNotFound) {
		t.Fatalf("subscribe to missing room: %v", err)
	}
}

func TestClientWrongToken(t *testing.T) {
	c, _ := startServer(t, "secret")
	c.Token = "nope"
	_, err := c.ReadRoom(context.Background(), "ABCD")
	if statusOf(err) != fiber.StatusUnauthorized {
		t.Fatalf("got %v", err)
	}
}

func TestRemoteDuel(t *testing.T) {
	ctx := context.Background()
	c, inv := startServer(t, "")

	if _, err := c.ClaimStarter(ctx, alice); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ClaimStarter(ctx, alice); !errors.Is(err, services.ErrAlreadyHasCards) {
		t.Fatalf("second starter: %v", err)
	}
	if _, err := c.ClaimStarter(ctx, bob); err != nil {
		t.Fatal(err)
	}
	cards, err := c.Catalog(ctx)
	if err != nil || len(cards) == 0 {
		t.Fatalf("catalog: %v", err)
	}
	starter := cards[0]
	for _, card := range cards {
		if card.ID == models.StarterCardID {
			starter = card
		}
	}

	opts := services.SessionOptions{Roller: func() float64 { return 0.5 }}
	a := services.NewSession(alice, c, c, opts)
	b := services.NewSession(bob, c, c, opts)
	defer a.Leave()
	defer b.Leave()

	if _, err := a.EnterRoom("R2D2"); err != nil {
		t.Fatal(err)
	}
	if err := a.SelectCard(ctx, starter); err != nil {
		t.Fatal(err)
	}
	b.EnterRoom("r2d2")
	if err := b.SelectCard(ctx, starter); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "battle", func() bool { return a.State().Phase == services.PhaseBattle })

	attack := starter.Moves[0].Name
	defend := starter.Moves[len(starter.Moves)-1].Name
	for round := 1; a.State().Phase != services.PhaseResult; round++ {
		if round > 30 {
			t.Fatal("battle did not finish")
		}
		if err := a.SubmitMove(ctx, attack); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if err := b.SubmitMove(ctx, defend); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		waitFor(t, "round to resolve", func() bool {
			sa, sb := a.State(), b.State()
			if sa.Phase == services.PhaseResult && sb.Phase == services.PhaseResult {
				return true
			}
			return !sa.MyMoveSubmitted && !sb.MyMoveSubmitted
		})
	}

	if a.State().Outcome != services.OutcomeMe || b.State().Outcome != services.OutcomeOpponent {
		t.Fatalf("outcomes: %q / %q", a.State().Outcome, b.State().Outcome)
	}
	waitFor(t, "card transfer", func() bool { return inv.Reassignments() == 1 })

	won, err := c.Collection(ctx, alice)
	if err != nil || len(won) != 2 {
		t.Fatalf("alice collection = %+v, %v", won, err)
	}
	if left, _ := c.GetOwnedCards(ctx, bob); len(left) != 0 {
		t.Fatalf("bob kept %+v", left)
	}
}

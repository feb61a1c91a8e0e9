package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"monadmons-arena/middleware"
	"monadmons-arena/models"
	"monadmons-arena/services"

	"github.com/gofiber/fiber/v2"
)

const (
	alice = "0x00000000000000000000000000000000000a11ce"
	bob   = "0x0000000000000000000000000000000000000b0b"
)

type testServer struct {
	app   *fiber.App
	store *services.MemoryRoomStore
	inv   *services.MemoryInventory
}

func newTestServer(token string) *testServer {
	s := &testServer{
		app:   fiber.New(),
		store: services.NewMemoryRoomStore(),
		inv:   services.NewMemoryInventory(),
	}
	s.app.Use(middleware.GatewayAuthMiddleware(token))
	catalog := services.NewCatalogService(models.DefaultCatalog)
	SetupHealthRoutes(s.app)
	SetupCatalogRoutes(s.app, catalog)
	SetupRoomRoutes(s.app, s.store)
	SetupPlayerRoutes(s.app, services.NewInventoryService(s.inv, catalog))
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func TestRoomLifecycle(t *testing.T) {
	s := newTestServer("")
	card := models.DefaultCatalog[0]

	status, body := s.do(t, http.MethodPost, "/rooms", models.Room{
		ID: "ab12", MatchID: "m-1", Player1Address: alice, Player1Card: &card, Player1HP: card.MaxHP,
	}, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("create: %d %s", status, body)
	}
	var created models.Room
	json.Unmarshal(body, &created)
	if created.ID != "AB12" || created.Status != models.RoomStatusWaiting {
		t.Fatalf("created = %+v", created)
	}

	if status, _ := s.do(t, http.MethodPost, "/rooms", models.Room{ID: "AB12"}, nil); status != fiber.StatusConflict {
		t.Fatalf("duplicate create: %d", status)
	}
	if status, _ := s.do(t, http.MethodPost, "/rooms", models.Room{ID: "TOOLONG"}, nil); status != fiber.StatusBadRequest {
		t.Fatalf("bad code: %d", status)
	}

	hp := 10
	battle := models.RoomStatusBattle
	status, body = s.do(t, http.MethodPatch, "/rooms/AB12", models.RoomUpdate{Player2HP: &hp, Status: &battle}, nil)
	if status != fiber.StatusOK {
		t.Fatalf("patch: %d %s", status, body)
	}
	var patched models.Room
	json.Unmarshal(body, &patched)
	if patched.Player2HP != 10 || patched.Status != models.RoomStatusBattle || patched.Player1Card == nil {
		t.Fatalf("patched = %+v", patched)
	}

	if status, _ := s.do(t, http.MethodGet, "/rooms/AB12", nil, nil); status != fiber.StatusOK {
		t.Fatalf("get: %d", status)
	}
	if status, _ := s.do(t, http.MethodDelete, "/rooms/AB12", nil, nil); status != fiber.StatusNoContent {
		t.Fatalf("delete: %d", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/rooms/AB12", nil, nil); status != fiber.StatusNotFound {
		t.Fatalf("get deleted: %d", status)
	}
	if status, _ := s.do(t, http.MethodPatch, "/rooms/AB12", models.RoomUpdate{}, nil); status != fiber.StatusNotFound {
		t.Fatalf("patch deleted: %d", status)
	}
}

func TestGatewayToken(t *testing.T) {
	s := newTestServer("secret")
	if status, _ := s.do(t, http.MethodGet, "/catalog", nil, nil); status != fiber.StatusUnauthorized {
		t.Fatalf("no token: %d", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/catalog", nil, map[string]string{"Authorization": "Bearer nope"}); status != fiber.StatusUnauthorized {
		t.Fatalf("wrong token: %d", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/catalog", nil, map[string]string{"Authorization": "Bearer secret"}); status != fiber.StatusOK {
		t.Fatalf("good token: %d", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/health", nil, nil); status != fiber.StatusOK {
		t.Fatalf("health should skip the gateway check: %d", status)
	}
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer("")
	status, body := s.do(t, http.MethodGet, "/catalog/"+models.StarterCardID, nil, nil)
	if status != fiber.StatusOK {
		t.Fatalf("get starter: %d %s", status, body)
	}
	var card models.CardDefinition
	json.Unmarshal(body, &card)
	if card.ID != models.StarterCardID || len(card.Moves) == 0 {
		t.Fatalf("card = %+v", card)
	}
	if status, _ := s.do(t, http.MethodGet, "/catalog/missingno", nil, nil); status != fiber.StatusNotFound {
		t.Fatalf("unknown card: %d", status)
	}
}

func TestPlayerRoutes(t *testing.T) {
	s := newTestServer("")
	me := map[string]string{"X-Wallet-Address": alice}

	if status, _ := s.do(t, http.MethodGet, "/players/me/cards", nil, nil); status != fiber.StatusUnauthorized {
		t.Fatalf("missing wallet: %d", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/players/me/cards", nil, map[string]string{"X-Wallet-Address": "alice"}); status != fiber.StatusBadRequest {
		t.Fatalf("malformed wallet: %d", status)
	}

	if status, body := s.do(t, http.MethodPost, "/players/me/starter", nil, me); status != fiber.StatusCreated {
		t.Fatalf("starter: %d %s", status, body)
	}
	if status, _ := s.do(t, http.MethodPost, "/players/me/starter", nil, me); status != fiber.StatusConflict {
		t.Fatalf("second starter: %d", status)
	}
	if status, _ := s.do(t, http.MethodPost, "/players/me/daily/claim", nil, me); status != fiber.StatusCreated {
		t.Fatalf("daily claim: %d", status)
	}
	if status, _ := s.do(t, http.MethodPost, "/players/me/daily/claim", nil, me); status != fiber.StatusTooManyRequests {
		t.Fatalf("second daily claim: %d", status)
	}
	status, body := s.do(t, http.MethodGet, "/players/me/daily", nil, me)
	var daily services.DailyClaimStatus
	json.Unmarshal(body, &daily)
	if status != fiber.StatusOK || daily.CanClaim || daily.NextClaimAt == nil {
		t.Fatalf("daily status: %d %+v", status, daily)
	}

	status, body = s.do(t, http.MethodGet, "/players/me/cards", nil, me)
	var collection struct {
		Cards []services.OwnedCardView `json:"cards"`
	}
	json.Unmarshal(body, &collection)
	if status != fiber.StatusOK || len(collection.Cards) != 2 {
		t.Fatalf("collection: %d %s", status, body)
	}
}

func TestSettlementRoutes(t *testing.T) {
	s := newTestServer("")
	oc, _ := s.inv.InsertOwnedCard(context.Background(), "mew", bob, models.AcquiredViaShop)

	claim := models.MatchResult{RoomID: "AB12", WinnerAddress: alice, LoserAddress: bob, CardID: "mew", OwnedCardID: oc.ID}
	for i, want := range []bool{true, false} {
		status, body := s.do(t, http.MethodPost, "/matches/m-1/settlement", claim, nil)
		var res struct {
			Claimed bool `json:"claimed"`
		}
		json.Unmarshal(body, &res)
		if status != fiber.StatusOK || res.Claimed != want {
			t.Fatalf("claim %d: %d %s", i, status, body)
		}
	}

	move := reassignRequest{From: bob, To: alice}
	if status, body := s.do(t, http.MethodPost, "/owned-cards/"+oc.ID+"/reassign", move, nil); status != fiber.StatusNoContent {
		t.Fatalf("reassign: %d %s", status, body)
	}
	if status, _ := s.do(t, http.MethodPost, "/owned-cards/"+oc.ID+"/reassign", move, nil); status != fiber.StatusConflict {
		t.Fatalf("reassign again: %d", status)
	}

	status, body := s.do(t, http.MethodGet, "/players/"+alice+"/cards", nil, nil)
	var owned struct {
		Cards []models.OwnedCard `json:"cards"`
	}
	json.Unmarshal(body, &owned)
	if status != fiber.StatusOK || len(owned.Cards) != 1 || owned.Cards[0].ID != oc.ID {
		t.Fatalf("alice cards: %d %s", status, body)
	}

	status, body = s.do(t, http.MethodGet, "/players/me/matches", nil, map[string]string{"X-Wallet-Address": bob})
	var history struct {
		Matches []models.MatchResult `json:"matches"`
	}
	json.Unmarshal(body, &history)
	if status != fiber.StatusOK || len(history.Matches) != 1 || history.Matches[0].MatchID != "m-1" {
		t.Fatalf("history: %d %s", status, body)
	}
}

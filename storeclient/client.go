// Package storeclient talks to the arena API over HTTP. Client implements
// services.RoomStore and services.Inventory, so a Session can run against a
// remote server exactly as it does against the in-process stores.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"monadmons-arena/models"
	"monadmons-arena/services"
	"monadmons-arena/utils"
)

type Client struct {
	BaseURL string
	// Token is sent as a Bearer token when the server enforces the gateway check.
	Token  string
	HTTP   *http.Client
	Stream *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    utils.HTTPClient,
		Stream:  utils.StreamClient,
	}
}

var (
	_ services.RoomStore = (*Client)(nil)
	_ services.Inventory = (*Client)(nil)
)

// statusError carries a non-2xx response.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("arena API returned status %d: %s", e.Status, e.Body)
}

func statusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call arena API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(b))
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &statusError{Status: resp.StatusCode, Body: msg}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// mapStatus turns an expected status into the matching sentinel.
func mapStatus(err error, status int, sentinel error) error {
	if statusOf(err) == status {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	return err
}

func roomPath(id string) string { return "/rooms/" + url.PathEscape(id) }

func (c *Client) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	var out models.Room
	err := c.do(ctx, http.MethodPost, "/rooms", nil, room, &out)
	if err != nil {
		return models.Room{}, mapStatus(err, http.StatusConflict, services.ErrRoomExists)
	}
	return out, nil
}

func (c *Client) UpdateRoom(ctx context.Context, id string, update models.RoomUpdate) (models.Room, error) {
	var out models.Room
	err := c.do(ctx, http.MethodPatch, roomPath(id), nil, update, &out)
	if err != nil {
		return models.Room{}, mapStatus(err, http.StatusNotFound, services.ErrRoomNotFound)
	}
	return out, nil
}

func (c *Client) ReadRoom(ctx context.Context, id string) (models.Room, error) {
	var out models.Room
	err := c.do(ctx, http.MethodGet, roomPath(id), nil, nil, &out)
	if err != nil {
		return models.Room{}, mapStatus(err, http.StatusNotFound, services.ErrRoomNotFound)
	}
	return out, nil
}

func (c *Client) DeleteRoom(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, roomPath(id), nil, nil, nil)
}

func playerPath(address, rest string) string {
	return "/players/" + url.PathEscape(services.NormalizeAddress(address)) + rest
}

func (c *Client) GetOwnedCards(ctx context.Context, address string) ([]models.OwnedCard, error) {
	var out struct {
		Cards []models.OwnedCard `json:"cards"`
	}
	if err := c.do(ctx, http.MethodGet, playerPath(address, "/cards"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Cards, nil
}

func (c *Client) InsertOwnedCard(ctx context.Context, cardID, owner string, via models.AcquiredVia) (models.OwnedCard, error) {
	var out models.OwnedCard
	in := map[string]string{"card_id": cardID, "acquired_via": string(via)}
	if err := c.do(ctx, http.MethodPost, playerPath(owner, "/cards"), nil, in, &out); err != nil {
		return models.OwnedCard{}, mapStatus(err, http.StatusNotFound, services.ErrCardNotFound)
	}
	return out, nil
}

func (c *Client) ReassignOwner(ctx context.Context, ownedCardID, from, to string) error {
	in := map[string]string{"from": from, "to": to}
	err := c.do(ctx, http.MethodPost, "/owned-cards/"+url.PathEscape(ownedCardID)+"/reassign", nil, in, nil)
	return mapStatus(err, http.StatusConflict, services.ErrNotOwner)
}

func (c *Client) HasAnyCards(ctx context.Context, address string) (bool, error) {
	cards, err := c.GetOwnedCards(ctx, address)
	if err != nil {
		return false, err
	}
	return len(cards) > 0, nil
}

func walletHeader(address string) map[string]string {
	return map[string]string{"X-Wallet-Address": services.NormalizeAddress(address)}
}

func (c *Client) CanClaimDaily(ctx context.Context, address string) (services.DailyClaimStatus, error) {
	var out services.DailyClaimStatus
	if err := c.do(ctx, http.MethodGet, "/players/me/daily", walletHeader(address), nil, &out); err != nil {
		return services.DailyClaimStatus{}, err
	}
	return out, nil
}

func (c *Client) ClaimSettlement(ctx context.Context, result models.MatchResult) (bool, error) {
	var out struct {
		Claimed bool `json:"claimed"`
	}
	path := "/matches/" + url.PathEscape(result.MatchID) + "/settlement"
	if err := c.do(ctx, http.MethodPost, path, nil, result, &out); err != nil {
		return false, err
	}
	return out.Claimed, nil
}

// Collection lists the wallet's cards joined with their catalog entries.
func (c *Client) Collection(ctx context.Context, address string) ([]services.OwnedCardView, error) {
	var out struct {
		Cards []services.OwnedCardView `json:"cards"`
	}
	if err := c.do(ctx, http.MethodGet, "/players/me/cards", walletHeader(address), nil, &out); err != nil {
		return nil, err
	}
	return out.Cards, nil
}

// ClaimDaily asks the server for the wallet's daily card.
func (c *Client) ClaimDaily(ctx context.Context, address string) (models.CardDefinition, error) {
	var out models.CardDefinition
	err := c.do(ctx, http.MethodPost, "/players/me/daily/claim", walletHeader(address), nil, &out)
	if err != nil {
		return models.CardDefinition{}, mapStatus(err, http.StatusTooManyRequests, services.ErrDailyClaimUnavailable)
	}
	return out, nil
}

// ClaimStarter asks the server for the starter card.
func (c *Client) ClaimStarter(ctx context.Context, address string) (models.CardDefinition, error) {
	var out models.CardDefinition
	err := c.do(ctx, http.MethodPost, "/players/me/starter", walletHeader(address), nil, &out)
	if err != nil {
		return models.CardDefinition{}, mapStatus(err, http.StatusConflict, services.ErrAlreadyHasCards)
	}
	return out, nil
}

// Catalog fetches the card catalog.
func (c *Client) Catalog(ctx context.Context) ([]models.CardDefinition, error) {
	var out struct {
		Cards []models.CardDefinition `json:"cards"`
	}
	if err := c.do(ctx, http.MethodGet, "/catalog", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Cards, nil
}

// Package client is the Go SDK for a fusering server: a fluent builder for
// board configurations and context-aware calls for every server operation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/fusering/fusering/internal/field"
)

// BoardBuilder provides a fluent API for building board configurations.
// Use it to lay out the initial token sequence of a game, clockwise.
type BoardBuilder struct {
	name   string
	tokens []field.TokenConfig
}

// NewBoard creates a new board builder with the given name.
func NewBoard(name string) *BoardBuilder {
	return &BoardBuilder{
		name:   name,
		tokens: make([]field.TokenConfig, 0),
	}
}

// Numbered appends a numbered token with the given catalog number.
func (bb *BoardBuilder) Numbered(number int) *BoardBuilder {
	bb.tokens = append(bb.tokens, field.TokenConfig{
		Kind:   string(field.KindNumbered),
		Number: number,
	})
	return bb
}

// Accelerator appends an accelerator token.
func (bb *BoardBuilder) Accelerator() *BoardBuilder {
	bb.tokens = append(bb.tokens, field.TokenConfig{Kind: string(field.KindAccelerator)})
	return bb
}

// DarkAccelerator appends a dark accelerator token.
func (bb *BoardBuilder) DarkAccelerator() *BoardBuilder {
	bb.tokens = append(bb.tokens, field.TokenConfig{Kind: string(field.KindDarkAccelerator)})
	return bb
}

// Build converts the builder to a BoardConfig usable with CreateGame.
func (bb *BoardBuilder) Build() field.BoardConfig {
	return field.BoardConfig{
		Name:   bb.name,
		Tokens: bb.tokens,
	}
}

// GameState is a game's current state as reported by the server.
type GameState struct {
	ID     string        `json:"id"`
	Count  int           `json:"count"`
	Moves  int           `json:"moves"`
	Tokens []field.Token `json:"tokens"`
}

// TokenSpec names a token to insert: its kind and, for numbered tokens,
// its catalog number.
type TokenSpec struct {
	Kind   string `json:"kind"`
	Number int    `json:"number,omitempty"`
}

// Numbered is the TokenSpec for a numbered token.
func Numbered(number int) TokenSpec {
	return TokenSpec{Kind: string(field.KindNumbered), Number: number}
}

// Accelerator is the TokenSpec for an accelerator token.
func Accelerator() TokenSpec {
	return TokenSpec{Kind: string(field.KindAccelerator)}
}

// DarkAccelerator is the TokenSpec for a dark accelerator token.
func DarkAccelerator() TokenSpec {
	return TokenSpec{Kind: string(field.KindDarkAccelerator)}
}

// NotifierInfo describes a registered notifier.
type NotifierInfo struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Client talks to a fusering server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL
// (e.g., "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// SetHTTPClient replaces the underlying HTTP client, e.g. to set timeouts.
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.httpClient = hc
	}
}

// CreateGame creates a game from a board configuration. An empty id lets
// the server pick one. Notifier IDs, if given, route the game's board
// events to those notifiers.
func (c *Client) CreateGame(ctx context.Context, id string, board field.BoardConfig, notifierIDs ...string) (GameState, error) {
	req := struct {
		ID        string            `json:"id,omitempty"`
		Board     field.BoardConfig `json:"board"`
		Notifiers []string          `json:"notifiers,omitempty"`
	}{ID: id, Board: board, Notifiers: notifierIDs}

	var state GameState
	if err := c.doJSON(ctx, http.MethodPost, "/games", req, &state); err != nil {
		return GameState{}, err
	}
	return state, nil
}

// RestoreGame creates a game from a previously saved snapshot.
func (c *Client) RestoreGame(ctx context.Context, snapshot field.Snapshot) (GameState, error) {
	var state GameState
	if err := c.doJSON(ctx, http.MethodPost, "/games/restore", snapshot, &state); err != nil {
		return GameState{}, err
	}
	return state, nil
}

// ListGames returns the IDs of all games on the server.
func (c *Client) ListGames(ctx context.Context) ([]string, error) {
	var resp struct {
		Games []string `json:"games"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/games", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Games, nil
}

// GetGame returns a game's current state.
func (c *Client) GetGame(ctx context.Context, id string) (GameState, error) {
	var state GameState
	if err := c.doJSON(ctx, http.MethodGet, "/games/"+url.PathEscape(id), nil, &state); err != nil {
		return GameState{}, err
	}
	return state, nil
}

// DeleteGame deletes a game.
func (c *Client) DeleteGame(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/games/"+url.PathEscape(id), nil, nil)
}

// Insert applies an insert move and returns the board state after all
// triggered reactions resolved.
func (c *Client) Insert(ctx context.Context, id string, token TokenSpec, index int) (GameState, error) {
	req := struct {
		Kind   string `json:"kind"`
		Number int    `json:"number,omitempty"`
		Index  int    `json:"index"`
	}{Kind: token.Kind, Number: token.Number, Index: index}

	var state GameState
	if err := c.doJSON(ctx, http.MethodPost, "/games/"+url.PathEscape(id)+"/insert", req, &state); err != nil {
		return GameState{}, err
	}
	return state, nil
}

// Remove applies a remove move and returns the board state after all
// triggered reactions resolved.
func (c *Client) Remove(ctx context.Context, id string, index int) (GameState, error) {
	req := struct {
		Index int `json:"index"`
	}{Index: index}

	var state GameState
	if err := c.doJSON(ctx, http.MethodPost, "/games/"+url.PathEscape(id)+"/remove", req, &state); err != nil {
		return GameState{}, err
	}
	return state, nil
}

// SaveSnapshot asks the server to persist the game's snapshot and returns
// the server-side path it was written to.
func (c *Client) SaveSnapshot(ctx context.Context, id string) (string, error) {
	var resp struct {
		Status string `json:"status"`
		Path   string `json:"path"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/games/"+url.PathEscape(id)+"/snapshot", nil, &resp); err != nil {
		return "", err
	}
	return resp.Path, nil
}

// GetSnapshot fetches the game's persisted snapshot.
func (c *Client) GetSnapshot(ctx context.Context, id string) (field.Snapshot, error) {
	var snapshot field.Snapshot
	if err := c.doJSON(ctx, http.MethodGet, "/games/"+url.PathEscape(id)+"/snapshot", nil, &snapshot); err != nil {
		return field.Snapshot{}, err
	}
	return snapshot, nil
}

// RegisterWebhookNotifier registers a webhook notifier with the server.
func (c *Client) RegisterWebhookNotifier(ctx context.Context, id, webhookURL string, headers map[string]string) error {
	cfg := map[string]any{"url": webhookURL}
	if len(headers) > 0 {
		hs := make(map[string]any, len(headers))
		for k, v := range headers {
			hs[k] = v
		}
		cfg["headers"] = hs
	}

	req := struct {
		Type   string         `json:"type"`
		ID     string         `json:"id"`
		Config map[string]any `json:"config"`
	}{Type: "webhook", ID: id, Config: cfg}

	return c.doJSON(ctx, http.MethodPost, "/notifiers", req, nil)
}

// RegisterWebSocketNotifier registers a websocket notifier. Clients attach
// to it by dialing ws://host/ws/{id}.
func (c *Client) RegisterWebSocketNotifier(ctx context.Context, id string) error {
	req := struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}{Type: "websocket", ID: id}

	return c.doJSON(ctx, http.MethodPost, "/notifiers", req, nil)
}

// UnregisterNotifier removes a notifier from the server.
func (c *Client) UnregisterNotifier(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/notifiers/"+url.PathEscape(id), nil, nil)
}

// ListNotifiers returns all notifiers registered on the server.
func (c *Client) ListNotifiers(ctx context.Context) ([]NotifierInfo, error) {
	var resp struct {
		Notifiers []NotifierInfo `json:"notifiers"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/notifiers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifiers, nil
}

// doJSON sends a request with an optional JSON body and decodes an
// optional JSON response. Non-2xx responses become errors carrying the
// response body.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

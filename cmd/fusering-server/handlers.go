package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fusering/fusering/internal/field"
	fieldnotifiers "github.com/fusering/fusering/internal/field/notifiers"
)

// extractGameID extracts the game ID from a path like "/games/{gameID}/..."
// Returns the game ID and the remaining path, or empty string if not found
func extractGameID(path string) (field.GameID, string) {
	if !strings.HasPrefix(path, "/games/") {
		return "", ""
	}

	rest := strings.TrimPrefix(path, "/games/")

	idx := strings.Index(rest, "/")
	if idx == -1 {
		return field.GameID(rest), ""
	}

	return field.GameID(rest[:idx]), rest[idx:]
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// gameStateResponse is the JSON shape of a game's current state.
type gameStateResponse struct {
	ID     string        `json:"id"`
	Count  int           `json:"count"`
	Moves  int           `json:"moves"`
	Tokens []field.Token `json:"tokens"`
}

func gameState(game *field.Game) gameStateResponse {
	tokens := game.Board()
	return gameStateResponse{
		ID:     string(game.ID()),
		Count:  len(tokens),
		Moves:  game.Moves(),
		Tokens: tokens,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /games
// Body: { "id": "optional", "board": BoardConfig, "notifiers": ["id", ...] }
type createGameRequest struct {
	ID        string            `json:"id,omitempty"`
	Board     field.BoardConfig `json:"board"`
	Notifiers []string          `json:"notifiers,omitempty"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	tokens, err := field.BuildTokensFromConfig(req.Board, s.catalog)
	if err != nil {
		http.Error(w, "invalid board: "+err.Error(), http.StatusBadRequest)
		return
	}

	game, err := s.manager.CreateGame(field.GameID(req.ID), s.catalog, tokens)
	if err != nil {
		http.Error(w, "cannot create game: "+err.Error(), http.StatusConflict)
		return
	}

	if len(req.Notifiers) > 0 {
		game.SetNotificationManager(s.notifierMgr, req.Notifiers)
	}

	s.logger.Infof("Game created: game_id=%s board=%s tokens=%d", game.ID(), req.Board.Name, len(tokens))

	writeJSON(w, http.StatusCreated, gameState(game))
}

// POST /games/restore
// Body: Snapshot JSON
func (s *Server) handleRestoreGame(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var snapshot field.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		http.Error(w, "invalid snapshot json: "+err.Error(), http.StatusBadRequest)
		return
	}

	game, err := s.manager.RestoreGame(snapshot, s.catalog)
	if err != nil {
		http.Error(w, "cannot restore game: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Infof("Game restored: game_id=%s moves=%d", game.ID(), snapshot.Moves)

	writeJSON(w, http.StatusCreated, gameState(game))
}

// GET /games
func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request) {
	gameIDs := s.manager.ListGames()

	ids := make([]string, len(gameIDs))
	for i, id := range gameIDs {
		ids[i] = string(id)
	}

	writeJSON(w, http.StatusOK, map[string][]string{"games": ids})
}

// GET /games/{gameID}
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID, _ := extractGameID(r.URL.Path)

	game, exists := s.manager.GetGame(gameID)
	if !exists {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, gameState(game))
}

// DELETE /games/{gameID}
func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID, _ := extractGameID(r.URL.Path)

	if err := s.manager.DeleteGame(gameID); err != nil {
		s.logger.Warnf("Failed to delete game: game_id=%s error=%v", gameID, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.logger.Infof("Game deleted: game_id=%s", gameID)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("game deleted"))
}

// POST /games/{gameID}/insert
// Body: { "kind": "numbered"|"accelerator"|"dark", "number": n, "index": i }
type insertTokenRequest struct {
	Kind   string `json:"kind"`
	Number int    `json:"number,omitempty"`
	Index  int    `json:"index"`
}

func (s *Server) handleInsertToken(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	gameID, _ := extractGameID(r.URL.Path)

	game, exists := s.manager.GetGame(gameID)
	if !exists {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	var req insertTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	token, err := field.TokenFromConfig(field.TokenConfig{Kind: req.Kind, Number: req.Number}, s.catalog)
	if err != nil {
		http.Error(w, "invalid token: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := game.Insert(token, req.Index); err != nil {
		http.Error(w, "insert rejected: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Debugf("Token inserted: game_id=%s token=%s index=%d", gameID, token, req.Index)

	writeJSON(w, http.StatusOK, gameState(game))
}

// POST /games/{gameID}/remove
// Body: { "index": i }
type removeTokenRequest struct {
	Index int `json:"index"`
}

func (s *Server) handleRemoveToken(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	gameID, _ := extractGameID(r.URL.Path)

	game, exists := s.manager.GetGame(gameID)
	if !exists {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	var req removeTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := game.Remove(req.Index); err != nil {
		http.Error(w, "remove rejected: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Debugf("Token removed: game_id=%s index=%d", gameID, req.Index)

	writeJSON(w, http.StatusOK, gameState(game))
}

// snapshotPath is where a game's snapshot lives on disk.
func (s *Server) snapshotPath(gameID field.GameID) string {
	return filepath.Join(s.snapshotDir, "game-"+string(gameID)+".json")
}

// POST /games/{gameID}/snapshot
// Saves the game's snapshot to the snapshot directory
func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	gameID, _ := extractGameID(r.URL.Path)

	game, exists := s.manager.GetGame(gameID)
	if !exists {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	if s.snapshotDir == "" {
		http.Error(w, "snapshot directory not configured", http.StatusInternalServerError)
		return
	}

	data, err := field.EncodeSnapshotJSON(game.Snapshot())
	if err != nil {
		http.Error(w, "failed to encode snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := os.MkdirAll(s.snapshotDir, 0o755); err != nil {
		http.Error(w, "failed to create snapshot directory: "+err.Error(), http.StatusInternalServerError)
		return
	}

	path := s.snapshotPath(gameID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Errorf("Failed to save snapshot: game_id=%s error=%v", gameID, err)
		http.Error(w, "failed to save snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Debugf("Snapshot saved: game_id=%s path=%s", gameID, path)

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"path":   path,
	})
}

// GET /games/{gameID}/snapshot
// Returns the raw snapshot JSON if it exists
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	gameID, _ := extractGameID(r.URL.Path)

	if s.snapshotDir == "" {
		http.Error(w, "snapshot directory not configured", http.StatusInternalServerError)
		return
	}

	data, err := os.ReadFile(s.snapshotPath(gameID))
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "snapshot not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to read snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleGamesRoutes routes requests under /games
func (s *Server) handleGamesRoutes(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/games" {
		switch r.Method {
		case http.MethodGet:
			s.handleListGames(w, r)
		case http.MethodPost:
			s.handleCreateGame(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
		return
	}

	if r.URL.Path == "/games/restore" && r.Method == http.MethodPost {
		s.handleRestoreGame(w, r)
		return
	}

	gameID, remainingPath := extractGameID(r.URL.Path)
	if gameID == "" {
		http.Error(w, "game ID is required in path: /games/{gameID}/...", http.StatusBadRequest)
		return
	}

	switch {
	case remainingPath == "" && r.Method == http.MethodGet:
		s.handleGetGame(w, r)
	case remainingPath == "" && r.Method == http.MethodDelete:
		s.handleDeleteGame(w, r)
	case remainingPath == "/insert" && r.Method == http.MethodPost:
		s.handleInsertToken(w, r)
	case remainingPath == "/remove" && r.Method == http.MethodPost:
		s.handleRemoveToken(w, r)
	case remainingPath == "/snapshot" && r.Method == http.MethodPost:
		s.handleSaveSnapshot(w, r)
	case remainingPath == "/snapshot" && r.Method == http.MethodGet:
		s.handleGetSnapshot(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// handleNotifiersRoutes handles notifier management endpoints
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	notifierIDs := s.notifierMgr.ListNotifiers()

	notifiers := make([]map[string]string, 0, len(notifierIDs))
	for _, id := range notifierIDs {
		notifier, exists := s.notifierMgr.GetNotifier(id)
		if exists {
			notifiers = append(notifiers, map[string]string{
				"id":   id,
				"type": notifier.Type(),
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifiers": notifiers})
}

// POST /notifiers
// Body: { "type": "webhook"|"websocket", "id": "my-hook", "config": { "url": "http://..." } }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier field.Notifier

	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := fieldnotifiers.NewWebhookNotifier(req.ID, url)

		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}

		notifier = wh
	case "websocket":
		// Clients attach afterwards via GET /ws/{id}.
		notifier = fieldnotifiers.NewWebSocketNotifier(req.ID)
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.RegisterNotifier(notifier); err != nil {
		_ = notifier.Close()
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}

// GET /ws/{notifierID}
// Upgrades the connection and attaches it to a registered websocket notifier
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/ws/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required in path: /ws/{notifierID}", http.StatusBadRequest)
		return
	}

	notifier, exists := s.notifierMgr.GetNotifier(notifierID)
	if !exists {
		http.Error(w, "notifier not found", http.StatusNotFound)
		return
	}

	wsn, ok := notifier.(*fieldnotifiers.WebSocketNotifier)
	if !ok {
		http.Error(w, "notifier is not a websocket notifier", http.StatusBadRequest)
		return
	}

	upgrader := wsn.GetUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade failed: notifier=%s error=%v", notifierID, err)
		return
	}

	wsn.RegisterClient(conn)
	s.logger.Debugf("WebSocket client attached: notifier=%s remote=%s", notifierID, conn.RemoteAddr())

	// Drain the connection until the client goes away; clients only listen.
	go func() {
		defer wsn.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

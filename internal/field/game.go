package field

import (
	"fmt"
	"sync"
	"time"
)

// GameID is a unique identifier for a game session.
type GameID string

// Game wraps one ring in a session: a mutex serializing moves (the ring
// itself is single-threaded by design), a move counter, and the plumbing
// that forwards board events to notifiers. One Game corresponds to one
// board played one move at a time.
type Game struct {
	mu        sync.Mutex
	id        GameID
	ring      *Ring
	moves     int
	createdAt int64
	notify    *notifyingListener
}

// NewGame creates a game over the given catalog and initial tokens. An
// empty id gets a random one.
func NewGame(id GameID, cat *Catalog, initial []Token) (*Game, error) {
	if id == "" {
		id = GameID(NewRandomID())
	}
	ring, err := NewRing(cat, initial)
	if err != nil {
		return nil, err
	}
	return &Game{
		id:        id,
		ring:      ring,
		createdAt: time.Now().Unix(),
	}, nil
}

// ID returns the game's identifier.
func (g *Game) ID() GameID {
	return g.id
}

// Count returns the current number of tokens on the board.
func (g *Game) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ring.Count()
}

// Board returns a copy of the current token sequence.
func (g *Game) Board() []Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ring.Tokens()
}

// Moves returns how many moves (inserts and removes) have been applied.
func (g *Game) Moves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.moves
}

// Insert applies an insert move, including all triggered reactions, and
// counts it. Failed moves do not count.
func (g *Game) Insert(token Token, index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.ring.Insert(token, index); err != nil {
		return err
	}
	g.moves++
	return nil
}

// Remove applies a remove move, including all triggered reactions, and
// counts it. Failed moves do not count.
func (g *Game) Remove(index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.ring.Remove(index); err != nil {
		return err
	}
	g.moves++
	return nil
}

// AddListener registers a listener on the underlying ring.
func (g *Game) AddListener(l Listener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ring.AddListener(l)
}

// RemoveListener unregisters a listener from the underlying ring.
func (g *Game) RemoveListener(l Listener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ring.RemoveListener(l)
}

// SetNotificationManager routes this game's board events to the given
// notifier IDs through the manager. Passing nil detaches event routing.
func (g *Game) SetNotificationManager(nm *NotificationManager, notifierIDs []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.notify != nil {
		g.ring.RemoveListener(g.notify)
		g.notify = nil
	}
	if nm == nil {
		return
	}
	g.notify = &notifyingListener{gameID: g.id, mgr: nm, notifierIDs: notifierIDs}
	g.ring.AddListener(g.notify)
}

// SetLogger injects a logger into the underlying ring.
func (g *Game) SetLogger(l Logger) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ring.SetLogger(l)
}

// Snapshot captures the game's current state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{
		GameID: g.id,
		Moves:  g.moves,
		Tokens: g.ring.Tokens(),
	}
}

// GameManager manages multiple game sessions, each isolated from the
// others.
type GameManager struct {
	mu    sync.RWMutex
	games map[GameID]*Game
	log   Logger
}

// NewGameManager creates a game manager with a no-op logger.
func NewGameManager() *GameManager {
	return NewGameManagerWithLogger(NewNoOpLogger())
}

// NewGameManagerWithLogger creates a game manager using the given logger.
func NewGameManagerWithLogger(log Logger) *GameManager {
	if log == nil {
		log = NewNoOpLogger()
	}
	return &GameManager{
		games: make(map[GameID]*Game),
		log:   log,
	}
}

// CreateGame creates a new game with the given ID and initial tokens.
// Returns an error if a game with that ID already exists.
func (gm *GameManager) CreateGame(id GameID, cat *Catalog, initial []Token) (*Game, error) {
	game, err := NewGame(id, cat, initial)
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[game.ID()]; exists {
		return nil, fmt.Errorf("game with id %s already exists", game.ID())
	}

	gm.games[game.ID()] = game
	gm.log.Infof("created game %s with %d tokens", game.ID(), len(initial))
	return game, nil
}

// RestoreGame creates a game from a snapshot. Returns an error if a game
// with the snapshot's ID already exists or the snapshot is invalid.
func (gm *GameManager) RestoreGame(snapshot Snapshot, cat *Catalog) (*Game, error) {
	if cat == nil {
		cat = DefaultCatalog()
	}
	if err := ValidateSnapshot(snapshot, cat); err != nil {
		return nil, err
	}

	game, err := NewGame(snapshot.GameID, cat, snapshot.Tokens)
	if err != nil {
		return nil, err
	}
	game.moves = snapshot.Moves

	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[game.ID()]; exists {
		return nil, fmt.Errorf("game with id %s already exists", game.ID())
	}

	gm.games[game.ID()] = game
	gm.log.Infof("restored game %s at move %d", game.ID(), snapshot.Moves)
	return game, nil
}

// GetGame retrieves a game by ID.
func (gm *GameManager) GetGame(id GameID) (*Game, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	game, exists := gm.games[id]
	return game, exists
}

// DeleteGame removes a game by ID. Returns an error if it doesn't exist.
func (gm *GameManager) DeleteGame(id GameID) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[id]; !exists {
		return fmt.Errorf("game with id %s does not exist", id)
	}

	delete(gm.games, id)
	gm.log.Infof("deleted game %s", id)
	return nil
}

// ListGames returns the IDs of all games.
func (gm *GameManager) ListGames() []GameID {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	ids := make([]GameID, 0, len(gm.games))
	for id := range gm.games {
		ids = append(ids, id)
	}
	return ids
}

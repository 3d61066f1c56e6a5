package field

import (
	"encoding/json"
	"fmt"
)

// Snapshot is a point-in-time capture of a game: its ID, move count, and
// token sequence, clockwise from an arbitrary starting index (board
// equality is rotation-invariant, so the starting index carries no
// meaning).
type Snapshot struct {
	GameID GameID  `json:"game_id"`
	Moves  int     `json:"moves"`
	Tokens []Token `json:"tokens"`
}

// ValidateSnapshot checks that a snapshot describes a restorable board:
// a non-empty sequence of valid tokens whose numbered entries exist in the
// given catalog. A nil catalog skips the catalog check.
func ValidateSnapshot(snapshot Snapshot, cat *Catalog) error {
	if len(snapshot.Tokens) == 0 {
		return fmt.Errorf("snapshot has no tokens; a board holds at least one")
	}
	if snapshot.Moves < 0 {
		return fmt.Errorf("snapshot has negative move count %d", snapshot.Moves)
	}

	for i, tok := range snapshot.Tokens {
		if !tok.valid() {
			return fmt.Errorf("snapshot token at index %d is invalid: %+v", i, tok)
		}
		if cat != nil && tok.Kind == KindNumbered {
			if _, err := cat.Lookup(tok.Number); err != nil {
				return fmt.Errorf("snapshot token at index %d: %w", i, err)
			}
		}
	}

	return nil
}

// EncodeSnapshotJSON encodes a snapshot to JSON.
func EncodeSnapshotJSON(snapshot Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot from JSON.
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, nil
}

package field

import "testing"

func TestNewRandomID(t *testing.T) {
	id := NewRandomID()
	if len(id) != 16 {
		t.Errorf("Expected 16 hex characters, got %d (%s)", len(id), id)
	}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewRandomID()
		if seen[id] {
			t.Fatalf("Duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

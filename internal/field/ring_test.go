package field

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recordingListener records every callback in order for assertions.
type recordingListener struct {
	events []string
}

func (rl *recordingListener) OnInsert(index int, token Token) {
	rl.events = append(rl.events, fmt.Sprintf("insert %s @%d", token, index))
}

func (rl *recordingListener) OnReaction(ccwIndex, centerIndex, cwIndex int, result Token, resultIndex int) {
	rl.events = append(rl.events, fmt.Sprintf("reaction (%d %d %d) -> %s @%d", ccwIndex, centerIndex, cwIndex, result, resultIndex))
}

func (rl *recordingListener) OnRemove(index int) {
	rl.events = append(rl.events, fmt.Sprintf("remove @%d", index))
}

// numbered builds a numbered token from the default catalog.
func numbered(t *testing.T, n int) Token {
	t.Helper()
	tok, err := DefaultCatalog().Lookup(n)
	if err != nil {
		t.Fatalf("Lookup(%d) failed: %v", n, err)
	}
	return tok
}

// buildRing builds a ring of numbered tokens over the default catalog.
func buildRing(t *testing.T, numbers ...int) *Ring {
	t.Helper()
	tokens := make([]Token, len(numbers))
	for i, n := range numbers {
		tokens[i] = numbered(t, n)
	}
	ring, err := NewRing(nil, tokens)
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	return ring
}

// assertNumbers checks the ring's sequence of catalog numbers.
func assertNumbers(t *testing.T, ring *Ring, want ...int) {
	t.Helper()
	got := ring.Tokens()
	if len(got) != len(want) {
		t.Fatalf("Expected %d tokens, got %d (%s)", len(want), len(got), ring)
	}
	for i, n := range want {
		if got[i].Kind != KindNumbered || got[i].Number != n {
			t.Errorf("Expected token %d to be #%d, got %s", i, n, got[i])
		}
	}
}

func TestNewRing(t *testing.T) {
	ring := buildRing(t, 1, 2, 3)

	if ring.Count() != 3 {
		t.Errorf("Expected 3 tokens, got %d", ring.Count())
	}
	assertNumbers(t, ring, 1, 2, 3)
}

func TestNewRing_Empty(t *testing.T) {
	_, err := NewRing(nil, nil)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for empty ring, got %v", err)
	}
}

func TestNewRing_InvalidToken(t *testing.T) {
	_, err := NewRing(nil, []Token{{Kind: KindNumbered, Number: 0}})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for number 0, got %v", err)
	}

	_, err = NewRing(nil, []Token{{Kind: "molecule"}})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for unknown kind, got %v", err)
	}
}

func TestNewRing_CopiesInitial(t *testing.T) {
	initial := []Token{numbered(t, 1), numbered(t, 2)}
	ring, err := NewRing(nil, initial)
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}

	initial[0] = numbered(t, 9)
	assertNumbers(t, ring, 1, 2)
}

func TestTokens_ReturnsCopy(t *testing.T) {
	ring := buildRing(t, 1, 2)
	tokens := ring.Tokens()
	tokens[0] = numbered(t, 9)
	assertNumbers(t, ring, 1, 2)
}

func TestInsert_NoReaction(t *testing.T) {
	ring := buildRing(t, 1, 3)
	rl := &recordingListener{}
	ring.AddListener(rl)

	if err := ring.Insert(numbered(t, 5), 1); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	assertNumbers(t, ring, 1, 5, 3)
	want := []string{"insert B[5] @1"}
	if diff := cmp.Diff(want, rl.events); diff != "" {
		t.Errorf("Event mismatch (-want +got):\n%s", diff)
	}
}

func TestInsert_AtCircularBoundary(t *testing.T) {
	ring := buildRing(t, 1, 3)

	// Index Count() appends; the slot is adjacent to index 0 on the circle.
	if err := ring.Insert(numbered(t, 5), 2); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	assertNumbers(t, ring, 1, 3, 5)
}

func TestInsert_AcceleratorFusesEqualNeighbors(t *testing.T) {
	// Inserting before index 0 of (1 2 3 1) puts the accelerator between
	// the two 1s across the circular boundary. They fuse into a 2.
	ring := buildRing(t, 1, 2, 3, 1)
	rl := &recordingListener{}
	ring.AddListener(rl)

	if err := ring.Insert(Accelerator, 0); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	assertNumbers(t, ring, 2, 2, 3)
	want := []string{
		"insert + @0",
		"reaction (4 0 1) -> He[2] @0",
	}
	if diff := cmp.Diff(want, rl.events); diff != "" {
		t.Errorf("Event mismatch (-want +got):\n%s", diff)
	}
}

func TestInsert_AcceleratorUnequalNeighborsStays(t *testing.T) {
	ring := buildRing(t, 1, 2, 3)
	rl := &recordingListener{}
	ring.AddListener(rl)

	if err := ring.Insert(Accelerator, 1); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// 1 and 2 differ, so the accelerator just sits there.
	if ring.Count() != 4 {
		t.Fatalf("Expected 4 tokens, got %d (%s)", ring.Count(), ring)
	}
	if got := ring.Tokens()[1]; got.Kind != KindAccelerator {
		t.Errorf("Expected accelerator at index 1, got %s", got)
	}
	if len(rl.events) != 1 {
		t.Errorf("Expected only the insert event, got %v", rl.events)
	}
}

func TestInsert_CascadeThroughNumberedCenter(t *testing.T) {
	// The accelerator fuses the two 1s into a 2, which lands between the
	// two 2s, which fuse again into a 4.
	ring := buildRing(t, 2, 1, 1, 2)
	rl := &recordingListener{}
	ring.AddListener(rl)

	if err := ring.Insert(Accelerator, 2); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	assertNumbers(t, ring, 4)
	want := []string{
		"insert + @2",
		"reaction (1 2 3) -> He[2] @1",
		"reaction (0 1 2) -> Be[4] @0",
	}
	if diff := cmp.Diff(want, rl.events); diff != "" {
		t.Errorf("Event mismatch (-want +got):\n%s", diff)
	}
}

func TestInsert_DarkAcceleratorFusesAnything(t *testing.T) {
	ring := buildRing(t, 1, 2, 3, 4)
	rl := &recordingListener{}
	ring.AddListener(rl)

	if err := ring.Insert(DarkAccelerator, 2); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// 2 and 3 fuse into max(2,3)+3 = 6.
	assertNumbers(t, ring, 1, 6, 4)
	want := []string{
		"insert (+) @2",
		"reaction (1 2 3) -> C[6] @1",
	}
	if diff := cmp.Diff(want, rl.events); diff != "" {
		t.Errorf("Event mismatch (-want +got):\n%s", diff)
	}
}

func TestInsert_DarkAcceleratorWithOneAcceleratorNeighbor(t *testing.T) {
	ring, err := NewRing(nil, []Token{Accelerator, numbered(t, 5)})
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}

	if err := ring.Insert(DarkAccelerator, 1); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// One accelerator neighbor: result is the other neighbor plus 3.
	assertNumbers(t, ring, 8)
}

func TestInsert_DarkAcceleratorBetweenTwoAccelerators(t *testing.T) {
	ring, err := NewRing(nil, []Token{Accelerator, Accelerator})
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}

	if err := ring.Insert(DarkAccelerator, 1); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	assertNumbers(t, ring, 4)
}

func TestInsert_NextToExistingDarkAccelerator(t *testing.T) {
	// A dark accelerator already on the board reacts when a token lands
	// beside it, even though the inserted token is not the center.
	ring, err := NewRing(nil, []Token{DarkAccelerator, numbered(t, 5)})
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	rl := &recordingListener{}
	ring.AddListener(rl)

	if err := ring.Insert(numbered(t, 7), 1); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// max(5,7)+3 = 10.
	assertNumbers(t, ring, 10)
	want := []string{
		"insert N[7] @1",
		"reaction (2 0 1) -> Ne[10] @0",
	}
	if diff := cmp.Diff(want, rl.events); diff != "" {
		t.Errorf("Event mismatch (-want +got):\n%s", diff)
	}
}

func TestInsert_IndexOutOfRange(t *testing.T) {
	ring := buildRing(t, 1, 2)
	rl := &recordingListener{}
	ring.AddListener(rl)

	for _, index := range []int{-1, 3} {
		err := ring.Insert(numbered(t, 1), index)
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Expected ErrIndexOutOfRange for index %d, got %v", index, err)
		}
	}

	// Failed inserts leave the ring untouched and emit nothing.
	assertNumbers(t, ring, 1, 2)
	if len(rl.events) != 0 {
		t.Errorf("Expected no events, got %v", rl.events)
	}
}

func TestInsert_InvalidToken(t *testing.T) {
	ring := buildRing(t, 1, 2)

	err := ring.Insert(Token{Kind: KindNumbered, Number: -3}, 0)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
	assertNumbers(t, ring, 1, 2)
}

func TestRemove_NoReaction(t *testing.T) {
	ring := buildRing(t, 1, 2, 3)
	rl := &recordingListener{}
	ring.AddListener(rl)

	if err := ring.Remove(1); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	assertNumbers(t, ring, 1, 3)
	want := []string{"remove @1"}
	if diff := cmp.Diff(want, rl.events); diff != "" {
		t.Errorf("Event mismatch (-want +got):\n%s", diff)
	}
}

func TestRemove_TriggersReaction(t *testing.T) {
	// Removing the 5 leaves the accelerator flanked by two 1s across the
	// circular boundary.
	ring, err := NewRing(nil, []Token{numbered(t, 1), numbered(t, 1), Accelerator, numbered(t, 5)})
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	rl := &recordingListener{}
	ring.AddListener(rl)

	if err := ring.Remove(3); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	assertNumbers(t, ring, 2)
	want := []string{
		"remove @3",
		"reaction (1 2 0) -> He[2] @0",
	}
	if diff := cmp.Diff(want, rl.events); diff != "" {
		t.Errorf("Event mismatch (-want +got):\n%s", diff)
	}
}

func TestRemove_ChainReachesNeighborAccelerator(t *testing.T) {
	// After the removal the slot's neighborhood includes an accelerator,
	// which then fires through chain propagation.
	ring, err := NewRing(nil, []Token{numbered(t, 1), Accelerator, numbered(t, 1), numbered(t, 5)})
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	rl := &recordingListener{}
	ring.AddListener(rl)

	if err := ring.Remove(3); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	assertNumbers(t, ring, 2)
	want := []string{
		"remove @3",
		"reaction (0 1 2) -> He[2] @0",
	}
	if diff := cmp.Diff(want, rl.events); diff != "" {
		t.Errorf("Event mismatch (-want +got):\n%s", diff)
	}
}

func TestRemove_LastToken(t *testing.T) {
	ring := buildRing(t, 1)

	err := ring.Remove(0)
	if !errors.Is(err, ErrLastToken) {
		t.Errorf("Expected ErrLastToken, got %v", err)
	}
	if ring.Count() != 1 {
		t.Errorf("Expected ring untouched, got %d tokens", ring.Count())
	}
}

func TestRemove_IndexOutOfRange(t *testing.T) {
	ring := buildRing(t, 1, 2)

	for _, index := range []int{-1, 2} {
		err := ring.Remove(index)
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Expected ErrIndexOutOfRange for index %d, got %v", index, err)
		}
	}
	assertNumbers(t, ring, 1, 2)
}

func TestChain_TerminatesOnAdjacentAccelerators(t *testing.T) {
	// Two adjacent accelerators trigger no fusion: neither has equal
	// numbered flanks. The chain must stop rather than bounce between them.
	ring, err := NewRing(nil, []Token{Accelerator, numbered(t, 5)})
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}

	if err := ring.Insert(Accelerator, 0); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if ring.Count() != 3 {
		t.Errorf("Expected 3 tokens, got %d (%s)", ring.Count(), ring)
	}
}

func TestEqual_RotationInvariant(t *testing.T) {
	a := buildRing(t, 1, 2, 1, 3)
	b := buildRing(t, 3, 1, 2, 1)

	if !a.Equal(b) {
		t.Errorf("Expected %s to equal rotation %s", a, b)
	}
	if !b.Equal(a) {
		t.Errorf("Expected equality to be symmetric")
	}
	if !a.Equal(a) {
		t.Errorf("Expected a ring to equal itself")
	}
}

func TestEqual_SameMultisetDifferentOrder(t *testing.T) {
	a := buildRing(t, 1, 2, 1, 3)
	b := buildRing(t, 2, 3, 1, 1)

	// Same tokens, but (2 3 1 1) is no rotation of (1 2 1 3).
	if a.Equal(b) {
		t.Errorf("Expected %s and %s to differ", a, b)
	}
}

func TestEqual_DifferentLengths(t *testing.T) {
	a := buildRing(t, 1, 2)
	b := buildRing(t, 1, 2, 3)

	if a.Equal(b) {
		t.Error("Expected rings of different lengths to differ")
	}
	if a.Equal(nil) {
		t.Error("Expected ring not to equal nil")
	}
}

func TestEqual_SpecialTokens(t *testing.T) {
	a, err := NewRing(nil, []Token{numbered(t, 1), Accelerator, numbered(t, 2)})
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	b, err := NewRing(nil, []Token{numbered(t, 2), numbered(t, 1), Accelerator})
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	c, err := NewRing(nil, []Token{numbered(t, 1), DarkAccelerator, numbered(t, 2)})
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}

	if !a.Equal(b) {
		t.Errorf("Expected %s to equal rotation %s", a, b)
	}
	if a.Equal(c) {
		t.Errorf("Expected %s and %s to differ by special kind", a, c)
	}
}

func TestHash_ConsistentWithEqual(t *testing.T) {
	a := buildRing(t, 1, 2, 1, 3)
	b := buildRing(t, 3, 1, 2, 1)

	if a.Hash() != b.Hash() {
		t.Errorf("Expected equal rings to hash alike: %d vs %d", a.Hash(), b.Hash())
	}

	c, err := NewRing(nil, []Token{Accelerator, numbered(t, 1)})
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	d, err := NewRing(nil, []Token{numbered(t, 1), Accelerator})
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}
	if c.Hash() != d.Hash() {
		t.Errorf("Expected rotations with specials to hash alike")
	}
}

func TestString(t *testing.T) {
	ring, err := NewRing(nil, []Token{numbered(t, 1), Accelerator, DarkAccelerator})
	if err != nil {
		t.Fatalf("NewRing failed: %v", err)
	}

	if got := ring.String(); got != "H[1] + (+)" {
		t.Errorf("Expected 'H[1] + (+)', got '%s'", got)
	}
}

func TestAddListener_Idempotent(t *testing.T) {
	ring := buildRing(t, 1, 2)
	rl := &recordingListener{}
	ring.AddListener(rl)
	ring.AddListener(rl)

	if err := ring.Remove(0); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(rl.events) != 1 {
		t.Errorf("Expected 1 event from a doubly-added listener, got %d", len(rl.events))
	}
}

func TestRemoveListener(t *testing.T) {
	ring := buildRing(t, 1, 2)
	rl := &recordingListener{}
	ring.AddListener(rl)
	ring.RemoveListener(rl)

	// Removing an unregistered listener is a no-op.
	ring.RemoveListener(&recordingListener{})

	if err := ring.Remove(0); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(rl.events) != 0 {
		t.Errorf("Expected no events after removal, got %v", rl.events)
	}
}

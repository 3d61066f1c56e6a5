package field

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

var (
	// ErrInvalidToken rejects tokens of no known kind or numbered tokens
	// without a positive number.
	ErrInvalidToken = errors.New("invalid token")

	// ErrIndexOutOfRange rejects indices outside the operation's bound.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrLastToken rejects a removal that would empty the ring.
	ErrLastToken = errors.New("the ring must not become empty")
)

// Ring is the game board: an ordered circular sequence of tokens, usually 1
// to 18 of them. Indices wrap modulo the current length; index+1 is
// clockwise and index-1 counterclockwise.
//
// The ring stores board state and implements reactions. It does not embody
// game mechanics: duplicating a token is just an Insert with an external
// restriction on what is inserted, and a destructive move is just a Remove.
// Deciding what to insert, and when the board is too full, is the caller's
// business.
//
// A Ring is not safe for concurrent use.
type Ring struct {
	contents  []Token
	listeners []Listener
	cat       *Catalog
	log       Logger
}

// NewRing creates a ring over the given catalog with the given initial
// tokens. A nil catalog selects the embedded default.
func NewRing(cat *Catalog, initial []Token) (*Ring, error) {
	if len(initial) == 0 {
		return nil, fmt.Errorf("%w: a ring requires at least one initial token", ErrInvalidToken)
	}
	for i, tok := range initial {
		if !tok.valid() {
			return nil, fmt.Errorf("%w: initial token %d (%+v)", ErrInvalidToken, i, tok)
		}
	}
	if cat == nil {
		cat = DefaultCatalog()
	}

	contents := make([]Token, len(initial))
	copy(contents, initial)

	return &Ring{contents: contents, cat: cat, log: NewNoOpLogger()}, nil
}

// SetLogger injects a logger. Passing nil restores the no-op logger.
func (r *Ring) SetLogger(l Logger) {
	if l == nil {
		l = NewNoOpLogger()
	}
	r.log = l
}

// Count returns the number of tokens in the ring, always at least 1.
func (r *Ring) Count() int {
	return len(r.contents)
}

// Tokens returns a copy of the ring's current sequence.
func (r *Ring) Tokens() []Token {
	out := make([]Token, len(r.contents))
	copy(out, r.contents)
	return out
}

// AddListener registers a listener. Adding one already registered is a
// no-op.
func (r *Ring) AddListener(l Listener) {
	if l == nil {
		return
	}
	for _, existing := range r.listeners {
		if existing == l {
			return
		}
	}
	r.listeners = append(r.listeners, l)
}

// RemoveListener unregisters a listener. Removing one never registered is a
// no-op.
func (r *Ring) RemoveListener(l Listener) {
	for i, existing := range r.listeners {
		if existing == l {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

// Insert splices the token in before position index (so inserting at
// Count() appends at the circular boundary adjacent to index 0), notifies
// listeners of the raw insert, and then resolves any reactions the insert
// triggers, including chained ones.
func (r *Ring) Insert(token Token, index int) error {
	if !token.valid() {
		return fmt.Errorf("%w: %+v", ErrInvalidToken, token)
	}
	if index < 0 || index > len(r.contents) {
		return fmt.Errorf("%w: insert index %d with %d tokens", ErrIndexOutOfRange, index, len(r.contents))
	}

	r.contents = append(r.contents, Token{})
	copy(r.contents[index+1:], r.contents[index:])
	r.contents[index] = token
	for _, l := range r.listeners {
		l.OnInsert(index, token)
	}
	r.log.Debugf("inserted %s at %d, ring is now %s", token, index, r)

	ctx := r.contextAt(index)

	// Any dark accelerator reacts first. At most one can exist on the
	// board, and only when it held one or two tokens before this insert;
	// otherwise it would already have reacted here. A dark accelerator
	// that was already present reacts even though the inserted token is
	// not the center.
	var err error
	switch {
	case token.Kind == KindDarkAccelerator:
		ctx, err = r.collapse(ctx, darkRule)
	case ctx.ccw.Kind == KindDarkAccelerator:
		ctx, err = r.collapse(r.contextAt(ctx.ccwIndex), darkRule)
	case ctx.cw.Kind == KindDarkAccelerator:
		ctx, err = r.collapse(r.contextAt(ctx.cwIndex), darkRule)
	case token.Kind == KindAccelerator:
		ctx, err = r.collapse(ctx, acceleratorRule)
	}
	if err != nil {
		return err
	}

	return r.chainFrom(ctx)
}

// Remove splices out the token at index, notifies listeners of the raw
// removal, and then resolves any reactions the removal triggers. Removing
// the sole remaining token is an illegal state and is rejected.
func (r *Ring) Remove(index int) error {
	if len(r.contents) == 1 {
		return ErrLastToken
	}
	if index < 0 || index >= len(r.contents) {
		return fmt.Errorf("%w: remove index %d with %d tokens", ErrIndexOutOfRange, index, len(r.contents))
	}

	// A dark accelerator needs no handling here: if one is on the board it
	// is one of at most two tokens, and no removal can make it adjacent to
	// a reactive pair.

	r.contents = append(r.contents[:index], r.contents[index+1:]...)
	for _, l := range r.listeners {
		l.OnRemove(index)
	}
	r.log.Debugf("removed index %d, ring is now %s", index, r)

	// The next token clockwise now occupies the removed slot, unless the
	// last slot was removed, in which case the center shifts down.
	center := index
	if center == len(r.contents) {
		center--
	}

	ctx := r.contextAt(center)
	if ctx.center.Kind == KindAccelerator {
		var err error
		if ctx, err = r.collapse(ctx, acceleratorRule); err != nil {
			return err
		}
	}

	return r.chainFrom(ctx)
}

// Equal reports rotation-invariant equality: the rings are equal iff some
// rotation of one's sequence matches the other's exactly, token for token.
// Rings (1 2 1 3) and (3 1 2 1) are the same board; (2 3 1 1) is not.
func (r *Ring) Equal(other *Ring) bool {
	if other == nil || len(r.contents) != len(other.contents) {
		return false
	}

	n := len(r.contents)
	for shift := 0; shift < n; shift++ {
		match := true
		for i := 0; i < n; i++ {
			if !r.contents[(i+shift)%n].Same(other.contents[i]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Hash returns a hash consistent with Equal. It is computed from the sorted
// token keys, a rotation-independent projection, so equal rings always
// hash alike while many unequal rings collide.
func (r *Ring) Hash() uint64 {
	keys := make([]int, len(r.contents))
	for i, tok := range r.contents {
		keys[i] = tok.sortKey()
	}
	sort.Ints(keys)

	h := fnv.New64a()
	var buf [8]byte
	for _, k := range keys {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(k)))
		h.Write(buf[:])
	}
	return h.Sum64()
}

func (r *Ring) String() string {
	parts := make([]string, len(r.contents))
	for i, tok := range r.contents {
		parts[i] = tok.String()
	}
	return strings.Join(parts, " ")
}

// collapse is the core algorithm: repeatedly fuse the context's three
// tokens whenever the rule applies, shrinking the ring by two each step,
// until the rule no longer applies or the ring degenerates to
// self-adjacency. After the initial step the rule is always the accelerator
// rule; a dark fusion can only open a chain, never continue one.
//
// Returns the last context used, which is the starting context when
// nothing fused.
func (r *Ring) collapse(ctx reactionContext, rule reaction) (reactionContext, error) {
	for ctx.ccwIndex != ctx.cwIndex && rule.isApplicable(ctx) {
		result, err := rule.react(r.cat, ctx.ccw, ctx.center, ctx.cw)
		if err != nil {
			return ctx, err
		}
		ctx = r.fuse(ctx, result)
		rule = acceleratorRule
	}
	return ctx, nil
}

// fuse applies one reaction result to the ring and notifies listeners. The
// two neighbor entries are removed (larger index first, so the smaller
// stays valid) and the result overwrites the center, whose index shifts
// down once for each removed neighbor index below it.
func (r *Ring) fuse(ctx reactionContext, result Token) reactionContext {
	resultIndex := ctx.centerIndex
	if ctx.ccwIndex < ctx.centerIndex {
		resultIndex--
	}
	if ctx.cwIndex < ctx.centerIndex {
		resultIndex--
	}

	hi := max(ctx.ccwIndex, ctx.cwIndex)
	lo := min(ctx.ccwIndex, ctx.cwIndex)
	r.contents = append(r.contents[:hi], r.contents[hi+1:]...)
	r.contents = append(r.contents[:lo], r.contents[lo+1:]...)
	r.contents[resultIndex] = result

	for _, l := range r.listeners {
		l.OnReaction(ctx.ccwIndex, ctx.centerIndex, ctx.cwIndex, result, resultIndex)
	}
	r.log.Debugf("fused (%d %d %d) into %s at %d, ring is now %s",
		ctx.ccwIndex, ctx.centerIndex, ctx.cwIndex, result, resultIndex, r)

	return r.contextAt(resultIndex)
}

// chainFrom ripples reactions across the ring after a mutation: while a
// neighbor of the current context is an accelerator, a new collapse starts
// there, counterclockwise preferred. A step that fuses nothing ends the
// chain, so every iteration either shrinks the ring by at least two or
// stops; termination is structural, not probabilistic.
func (r *Ring) chainFrom(ctx reactionContext) error {
	for {
		var center int
		switch {
		case ctx.ccw.Kind == KindAccelerator:
			center = ctx.ccwIndex
		case ctx.cw.Kind == KindAccelerator:
			center = ctx.cwIndex
		default:
			return nil
		}

		before := len(r.contents)
		next, err := r.collapse(r.contextAt(center), acceleratorRule)
		if err != nil {
			return err
		}
		if len(r.contents) == before {
			return nil
		}
		ctx = next
	}
}

package field

// Listener observes structural changes to a Ring. Callbacks run
// synchronously, inline with the mutating call, in registration order.
//
// Implementations must not mutate the ring and must not panic; the engine
// does not guard against either.
type Listener interface {
	// OnInsert fires once per raw insert, before any reaction logic runs.
	// The index is valid prior to the insert.
	OnInsert(index int, token Token)

	// OnReaction fires once per collapse step. The three consumed indices
	// are pre-mutation positions; resultIndex is where the result sits
	// after the mutation.
	OnReaction(ccwIndex, centerIndex, cwIndex int, result Token, resultIndex int)

	// OnRemove fires once per raw removal, before any reaction logic runs.
	// The index is valid prior to the removal.
	OnRemove(index int)
}

package field

// reactionContext is an immutable snapshot of a center index and its two
// ring-adjacent neighbors, taken from the ring's state at construction.
// Any mutation of the ring invalidates it; a fresh context must be built
// after every structural change.
type reactionContext struct {
	ccwIndex    int
	centerIndex int
	cwIndex     int
	ccw         Token
	center      Token
	cw          Token
}

// contextAt builds a context centered at the given index. The index must be
// in [0, Count()).
func (r *Ring) contextAt(center int) reactionContext {
	n := len(r.contents)
	ccw := (center - 1 + n) % n
	cw := (center + 1) % n
	return reactionContext{
		ccwIndex:    ccw,
		centerIndex: center,
		cwIndex:     cw,
		ccw:         r.contents[ccw],
		center:      r.contents[center],
		cw:          r.contents[cw],
	}
}

package field

// reaction decides whether three consecutive tokens fuse and what they fuse
// into. The rule set is closed: game semantics define exactly the
// accelerator and dark-accelerator variants.
//
// One universal applicability fact is checked before isApplicable is
// consulted: the ring holds at least 3 tokens (the collapse loop's
// self-adjacency guard).
type reaction interface {
	isApplicable(ctx reactionContext) bool

	// react computes the token produced by fusing the three involved
	// tokens. Called only when applicable.
	react(cat *Catalog, ccw, center, cw Token) (Token, error)
}

var (
	acceleratorRule reaction = acceleratorReaction{}
	darkRule        reaction = darkReaction{}
)

// darkReaction fuses any two flanking tokens when the center is a dark
// accelerator.
type darkReaction struct{}

func (darkReaction) isApplicable(ctx reactionContext) bool {
	return ctx.center.Kind == KindDarkAccelerator
}

func (darkReaction) react(cat *Catalog, ccw, _, cw Token) (Token, error) {
	// Neither flanking token can be a dark accelerator: at most one exists
	// at a time.
	switch {
	case ccw.Kind == KindAccelerator && cw.Kind == KindAccelerator:
		return cat.Lookup(4)
	case ccw.Kind == KindAccelerator:
		return cat.Lookup(cw.Number + 3)
	case cw.Kind == KindAccelerator:
		return cat.Lookup(ccw.Number + 3)
	default:
		return cat.Lookup(max(ccw.Number, cw.Number) + 3)
	}
}

// acceleratorReaction fuses equal-valued flanking tokens. The center is
// either an accelerator (when starting a reaction) or a numbered token (as
// a cascade continues).
type acceleratorReaction struct{}

func (acceleratorReaction) isApplicable(ctx reactionContext) bool {
	return ctx.ccw.Kind == KindNumbered &&
		ctx.cw.Kind == KindNumbered &&
		ctx.center.Kind != KindDarkAccelerator &&
		ctx.ccw.Number == ctx.cw.Number
}

func (acceleratorReaction) react(cat *Catalog, ccw, center, _ Token) (Token, error) {
	// Per applicability both flanking tokens carry the same number.
	adjacent := ccw.Number

	if center.Kind == KindAccelerator {
		return cat.Lookup(adjacent + 1)
	}

	if adjacent < center.Number {
		return cat.Lookup(center.Number + 1)
	}
	return cat.Lookup(adjacent + 2)
}

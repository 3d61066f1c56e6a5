package field

import "fmt"

// TokenKind discriminates the three kinds of ring entries.
type TokenKind string

const (
	// KindNumbered is an ordinary catalog token.
	KindNumbered TokenKind = "numbered"
	// KindAccelerator forces a fusion with its flanking equal-valued neighbors.
	KindAccelerator TokenKind = "accelerator"
	// KindDarkAccelerator fuses its two flanking tokens regardless of equality.
	KindDarkAccelerator TokenKind = "dark"
)

// Token is an entry on the ring: either a numbered catalog token or one of
// the two special markers. Tokens are compared structurally by kind (and by
// number for numbered tokens), never by allocation.
type Token struct {
	Kind   TokenKind `json:"kind" yaml:"kind"`
	Number int       `json:"number,omitempty" yaml:"number,omitempty"`
	Symbol string    `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Name   string    `json:"name,omitempty" yaml:"name,omitempty"`
	Color  string    `json:"color,omitempty" yaml:"color,omitempty"`
}

// Accelerator is the single conceptual accelerator value. All occurrences
// are interchangeable.
var Accelerator = Token{Kind: KindAccelerator}

// DarkAccelerator is the single conceptual dark accelerator value.
var DarkAccelerator = Token{Kind: KindDarkAccelerator}

// Same reports whether two tokens are the same ring entity: equal kind, and
// for numbered tokens, equal catalog number. Display metadata is ignored.
func (t Token) Same(other Token) bool {
	if t.Kind != other.Kind {
		return false
	}
	return t.Kind != KindNumbered || t.Number == other.Number
}

// valid reports whether the token can legally be placed on a ring.
func (t Token) valid() bool {
	switch t.Kind {
	case KindNumbered:
		return t.Number >= 1
	case KindAccelerator, KindDarkAccelerator:
		return true
	default:
		return false
	}
}

// sortKey projects a token onto an integer for the rotation-independent
// hash: numbered tokens map to their number, the specials to -1 and -2.
func (t Token) sortKey() int {
	switch t.Kind {
	case KindAccelerator:
		return -1
	case KindDarkAccelerator:
		return -2
	default:
		return t.Number
	}
}

func (t Token) String() string {
	switch t.Kind {
	case KindAccelerator:
		return "+"
	case KindDarkAccelerator:
		return "(+)"
	default:
		if t.Symbol == "" {
			return fmt.Sprintf("#%d", t.Number)
		}
		return fmt.Sprintf("%s[%d]", t.Symbol, t.Number)
	}
}

// Package pos implements the position (token-occurrence) representation
// used by the parser and DFA builder: the epsilon-free NFA "state" is a
// position in the regex source, not a node in an explicit automaton.
//
// A position could be packed into a single 64-bit integer with flag
// bits, but this uses a plain comparable struct instead: packing would
// be a micro-optimization with no behavioral benefit here, and a
// struct of explicit fields is both clearer and already satisfies Go's
// map-key comparability requirement without any unsafe bit tricks.
package pos

import "fmt"

// Flag is a bitset of the boolean attributes a Position can carry.
type Flag uint8

const (
	// Negate marks a position inside a (?^X) negative sub-pattern.
	Negate Flag = 1 << iota
	// Ticked marks the closing position of a (?=X) lookahead, i.e. the
	// lookahead's "tail".
	Ticked
	// Greedy marks a position produced by a possessive/greedy quantifier
	// that should cull competing lazy continuations.
	Greedy
	// Anchor marks a position that only fires at a line/buffer boundary.
	Anchor
	// Accept marks a position that is an accepting state; its Loc field
	// is then repurposed to hold the accept (alternation) index.
	Accept
)

func (f Flag) String() string {
	s := ""
	for name, bit := range map[string]Flag{"negate": Negate, "ticked": Ticked, "greedy": Greedy, "anchor": Anchor, "accept": Accept} {
		if f&bit != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// Position is one occurrence of a literal or class token in the parsed
// regex, or a synthetic accept marker. Positions with different flags
// or iteration counters are distinct NFA states even if they share the
// same source location, which is exactly what allows {n,m} unrolling to
// produce distinguishable occurrences of the same sub-pattern.
type Position struct {
	// Loc is the location the parser assigns to the leaf (a counter
	// that grows by one per leaf, not a byte offset into the source),
	// or (when Flags&Accept != 0) the 1-based accept/alternation index.
	Loc int32
	// Iter is the iteration counter used to disambiguate {n,m} unrolled
	// copies of the same sub-expression; WithIter keeps only its low 16
	// bits.
	Iter uint16
	// Lazy is the enclosing lazy-group id (0 = not lazy), assigned from
	// a small monotonic counter as the parser enters each lazy
	// quantifier.
	Lazy  uint8
	Flags Flag
}

// NPOS is the sentinel "no position" value.
var NPOS = Position{Loc: -1}

// IsNil reports whether p is the NPOS sentinel.
func (p Position) IsNil() bool { return p == NPOS }

// New constructs a non-accepting Position at source location loc.
func New(loc int) Position {
	return Position{Loc: int32(loc)}
}

// WithIter returns a copy of p with the given iteration counter.
func (p Position) WithIter(iter int) Position {
	p.Iter = uint16(iter)
	return p
}

// WithLazy returns a copy of p tagged with the given lazy group id.
func (p Position) WithLazy(group int) Position {
	p.Lazy = uint8(group)
	return p
}

// With returns a copy of p with the given flags added (OR'd in).
func (p Position) With(f Flag) Position {
	p.Flags |= f
	return p
}

// Without returns a copy of p with the given flags removed.
func (p Position) Without(f Flag) Position {
	p.Flags &^= f
	return p
}

// Has reports whether every flag in f is set on p.
func (p Position) Has(f Flag) bool { return p.Flags&f == f }

// IsAccept reports whether p is an accepting position.
func (p Position) IsAccept() bool { return p.Has(Accept) }

// IsLazy reports whether p lies within some enclosing lazy group.
func (p Position) IsLazy() bool { return p.Lazy != 0 }

// NewAccept constructs an accepting position with the given 1-based
// alternation index. Accepting positions compare by index, so the
// position for the earliest-declared alternative sorts first — this is
// what makes "minimum index wins" fall out of plain integer ordering.
func NewAccept(index int) Position {
	return Position{Loc: int32(index), Flags: Accept}
}

// AcceptIndex returns the accept index of an accepting position. The
// result is meaningless if !p.IsAccept().
func (p Position) AcceptIndex() int { return int(p.Loc) }

// String renders a position for debugging.
func (p Position) String() string {
	if p.IsNil() {
		return "NPOS"
	}
	if p.IsAccept() {
		return fmt.Sprintf("accept(%d)", p.AcceptIndex())
	}
	s := fmt.Sprintf("pos(%d", p.Loc)
	if p.Iter != 0 {
		s += fmt.Sprintf(",iter=%d", p.Iter)
	}
	if p.Lazy != 0 {
		s += fmt.Sprintf(",lazy=%d", p.Lazy)
	}
	if p.Flags != 0 {
		s += fmt.Sprintf(",%s", p.Flags)
	}
	return s + ")"
}

// Less provides the total order used to keep position sets (and hence
// DFA state keys) in a canonical, deterministic sequence.
func Less(a, b Position) bool {
	if a.Loc != b.Loc {
		return a.Loc < b.Loc
	}
	if a.Iter != b.Iter {
		return a.Iter < b.Iter
	}
	if a.Lazy != b.Lazy {
		return a.Lazy < b.Lazy
	}
	return a.Flags < b.Flags
}

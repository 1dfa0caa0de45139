// Package parser implements a recursive-descent regex parser: a
// four-precedence-level grammar (atom, quantified, concatenation,
// alternation) that computes firstpos, lastpos, followpos,
// nullability, lookahead ranges and lazy-group membership bottom-up,
// in the style of followpos-based DFA construction (no explicit
// epsilon-NFA is ever built). The escape/class/anchor vocabulary
// follows the RE/flex family of pattern syntaxes (\d\s\w\h\p{},
// POSIX [:class:], (?flags), (?=)/(?!) lookahead, (?^) negative
// patterns, free-spacing mode, \Q...\E quoting).
package parser

import (
	"github.com/fsmregex/fsmregex/charset"
	"github.com/fsmregex/fsmregex/pos"
)

// LookaheadRange records the head and tail position sets of one
// (?=X) occurrence, identified by a small monotonic id.
type LookaheadRange struct {
	ID    int
	Heads *pos.Set // firstpos(X): where the lookahead assertion begins
	Tails *pos.Set // lastpos(X): where the lookahead assertion is satisfied
}

// Result is everything the DFA builder (package dfa) needs from a
// parsed pattern.
type Result struct {
	Source string

	// Follow is the followpos relation over every leaf position.
	Follow *pos.Follow

	// First is firstpos(root): the DFA start state's position set.
	First *pos.Set

	// Leaves maps each leaf position to the CharSet of bytes/meta
	// symbols on which it fires. Accepting positions have no entry.
	Leaves map[pos.Position]charset.CharSet

	// AcceptCount is the number of top-level alternatives, i.e. the
	// highest accept index assigned.
	AcceptCount int

	// Lookaheads maps a lookahead id to its head/tail ranges.
	Lookaheads map[int]*LookaheadRange

	// NegateAccepts holds the set of accept indices that belong to a
	// (?^X) negative sub-pattern and must be emitted as REDO rather
	// than TAKE.
	NegateAccepts map[int]bool
}

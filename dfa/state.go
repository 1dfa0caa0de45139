// Package dfa builds a deterministic finite automaton directly from a
// parsed pattern's firstpos/followpos position graph: there is no
// intermediate NFA, and no AST walk. Each DFA state is a set of
// positions; two states with the same position set are the same state,
// which is what gives subset construction its natural termination and
// its minimal-state dedup.
package dfa

// StateID indexes into a DFA's state slice. The start state is always 0.
type StateID int32

// Edge is one byte-range transition: every byte in [Lo, Hi] moves to
// Target. Ranges never overlap within a single state and are stored in
// ascending Lo order, which is what lets the assembler coalesce them
// into a single range GOTO.
type Edge struct {
	Lo, Hi byte
	Target StateID
}

// MetaEdge is a transition taken on a zero-width meta symbol (word
// boundary, line/buffer boundary, indentation token) rather than a
// literal byte.
type MetaEdge struct {
	Meta   int
	Target StateID
}

// State is one DFA state: its outgoing byte and meta transitions, and
// the bookkeeping the assembler needs to emit TAKE/REDO/HEAD/TAIL
// markers for it.
type State struct {
	Edges     []Edge
	MetaEdges []MetaEdge

	// Accept is the 1-based accept index of the alternative this state
	// matches, or 0 if this state is not accepting.
	Accept int
	// Redo is set when Accept belongs to a (?^X) negative sub-pattern:
	// the assembler emits REDO instead of TAKE for this state.
	Redo bool

	// Heads lists the lookahead ids that begin at this state.
	Heads []int
	// Tails lists the lookahead ids satisfied at this state.
	Tails []int
}

// DFA is the built automaton: a flat slice of states, start state always
// index 0.
type DFA struct {
	States []*State
}

// Start returns the DFA's start state id.
func (d *DFA) Start() StateID { return 0 }

// Get returns the state for id.
func (d *DFA) Get(id StateID) *State { return d.States[id] }

// Len returns the number of states.
func (d *DFA) Len() int { return len(d.States) }

package asm

import (
	"github.com/fsmregex/fsmregex/charset"
	"github.com/fsmregex/fsmregex/dfa"
	"github.com/fsmregex/fsmregex/internal/conv"
	"github.com/fsmregex/fsmregex/rxerr"
)

// Program is an assembled opcode table plus the per-state entry offsets
// the lookahead/predictor layers need to address a state directly.
type Program struct {
	Words []Word
	// Entry maps a dfa.StateID to its first word's offset in Words.
	Entry []int
}

// effEdge is one byte-range GOTO as the assembler will actually emit it:
// either a real dfa.Edge, or a gap the assembler synthesizes so a
// state's byte-range GOTOs cover all 256 byte values with no holes.
//
// Full coverage is what lets the VM scan a state's GOTO words in plain
// sequence, testing each against the current byte and stopping at the
// first match: without it, a byte that matched no edge would have no
// way to tell the interpreter "this state has nothing for you" apart
// from reading on into the next state's own words.
type effEdge struct {
	Lo, Hi byte
	Target dfa.StateID
	Real   bool
}

// fillGaps turns edges, which cover the byte alphabet sparsely, into a
// complete partition of [0, 255] by inserting dead (Real=false) ranges
// over whatever edges left uncovered. edges must already be sorted in
// ascending Lo order with no overlaps, which is how dfa.Build emits them.
func fillGaps(edges []dfa.Edge) []effEdge {
	var out []effEdge
	next := 0
	for _, e := range edges {
		if int(e.Lo) > next {
			out = append(out, effEdge{Lo: byte(next), Hi: e.Lo - 1})
		}
		out = append(out, effEdge{Lo: e.Lo, Hi: e.Hi, Target: e.Target, Real: true})
		next = int(e.Hi) + 1
	}
	if next <= 255 {
		out = append(out, effEdge{Lo: byte(next), Hi: 255})
	}
	return out
}

// Assemble lays out d as a flat opcode program.
//
// Whether an edge needs the extra LONG overflow word depends on its
// target's final word offset, and that offset depends on how many
// edges earlier in visit order already needed a LONG word — so sizing
// is a fixed point, not a straight two-pass count-then-emit: start by
// assuming no edge needs LONG, lay out offsets under that assumption,
// then promote any edge whose target landed at or past the 16-bit
// ceiling and relay out; since promotions only grow word counts, this
// converges in at most as many rounds as there are promotable edges.
func Assemble(d *dfa.DFA, src string) (*Program, error) {
	order, err := visitOrder(d, src)
	if err != nil {
		return nil, err
	}
	filled := make([][]effEdge, len(order)) // filled[i]: state i's gap-completed byte edges
	long := make([][]bool, len(order))      // long[i][j]: byte edge j of state i
	metaLong := make([][]bool, len(order))  // metaLong[i][j]: meta edge j of state i
	for i, id := range order {
		st := d.Get(id)
		filled[i] = fillGaps(st.Edges)
		long[i] = make([]bool, len(filled[i]))
		metaLong[i] = make([]bool, len(st.MetaEdges))
	}

	var entry []int
	for {
		entry = layout(d, order, filled, long, metaLong)
		changed := false
		for i, id := range order {
			st := d.Get(id)
			for j, e := range filled[i] {
				if e.Real && !long[i][j] && entry[e.Target] >= int(gotoLong) {
					long[i][j] = true
					changed = true
				}
			}
			for j, e := range st.MetaEdges {
				if !metaLong[i][j] && entry[e.Target] >= int(gotoLong) {
					metaLong[i][j] = true
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	var words []Word
	for i, id := range order {
		st := d.Get(id)
		words = append(words, emitState(st, filled[i], entry, long[i], metaLong[i])...)
	}

	return &Program{Words: words, Entry: entry}, nil
}

// layout computes, for every state in order, the word offset of its
// first opcode, given which edges are currently assumed to need LONG.
func layout(d *dfa.DFA, order []dfa.StateID, filled [][]effEdge, long, metaLong [][]bool) []int {
	entry := make([]int, d.Len())
	cursor := 0
	for i, id := range order {
		entry[id] = cursor
		cursor += stateWordCount(d.Get(id), filled[i], long[i], metaLong[i])
	}
	return entry
}

// visitOrder walks d depth-first from its start state and returns every
// reachable state id exactly once, and validates the size limits that
// would otherwise only surface as silent truncation during emission.
func visitOrder(d *dfa.DFA, src string) ([]dfa.StateID, error) {
	seen := make([]bool, d.Len())
	var order []dfa.StateID

	var walk func(id dfa.StateID) error
	walk = func(id dfa.StateID) error {
		if seen[id] {
			return nil
		}
		seen[id] = true
		order = append(order, id)

		st := d.Get(id)
		if st.Accept > MaxAccept {
			return rxerr.Newf(rxerr.ExceedsLimits, src, 0, "accept index %d exceeds %#x", st.Accept, MaxAccept)
		}
		for _, lid := range st.Heads {
			if lid > MaxLookahead {
				return rxerr.Newf(rxerr.ExceedsLimits, src, 0, "lookahead id %d exceeds %#x", lid, MaxLookahead)
			}
		}
		for _, lid := range st.Tails {
			if lid > MaxLookahead {
				return rxerr.Newf(rxerr.ExceedsLimits, src, 0, "lookahead id %d exceeds %#x", lid, MaxLookahead)
			}
		}
		for _, e := range st.Edges {
			if int(e.Target) > MaxGoto {
				return rxerr.Newf(rxerr.ExceedsLimits, src, 0, "goto index %d exceeds %#x", e.Target, MaxGoto)
			}
			if err := walk(e.Target); err != nil {
				return err
			}
		}
		for _, e := range st.MetaEdges {
			if int(e.Target) > MaxGoto {
				return rxerr.Newf(rxerr.ExceedsLimits, src, 0, "goto index %d exceeds %#x", e.Target, MaxGoto)
			}
			if err := walk(e.Target); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(d.Start()); err != nil {
		return nil, err
	}
	return order, nil
}

func stateWordCount(st *dfa.State, filled []effEdge, long, metaLong []bool) int {
	n := len(st.Heads) + len(st.Tails)
	if st.Accept > 0 {
		n++ // TAKE or REDO
	}
	for _, needsLong := range metaLong {
		n++
		if needsLong {
			n++
		}
	}
	for j := range filled {
		n++
		if long[j] {
			n++
		}
	}
	return n
}

func emitState(st *dfa.State, filled []effEdge, entry []int, long, metaLong []bool) []Word {
	var words []Word

	for _, id := range st.Heads {
		words = append(words, headWord(id))
	}
	for _, id := range st.Tails {
		words = append(words, tailWord(id))
	}
	if st.Accept > 0 {
		if st.Redo {
			words = append(words, wordRedo)
		} else {
			words = append(words, takeWord(st.Accept))
		}
	}

	for j, e := range st.MetaEdges {
		metaTag := byte(e.Meta-charset.MetaBase) + 1
		target := entry[e.Target]
		if metaLong[j] {
			words = append(words, metaWord(metaTag, gotoLong), longWord(conv.IntToUint32(target)))
		} else {
			words = append(words, metaWord(metaTag, conv.IntToUint16(target)))
		}
	}
	for j, e := range filled {
		if !e.Real {
			words = append(words, gotoWord(e.Lo, e.Hi, gotoHalt))
			continue
		}
		target := entry[e.Target]
		if long[j] {
			words = append(words, gotoWord(e.Lo, e.Hi, gotoLong), longWord(conv.IntToUint32(target)))
		} else {
			words = append(words, gotoWord(e.Lo, e.Hi, conv.IntToUint16(target)))
		}
	}
	return words
}

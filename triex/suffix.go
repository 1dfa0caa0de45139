package triex

import (
	"github.com/fsmregex/fsmregex/literal"
	"github.com/fsmregex/fsmregex/parser"
	"github.com/fsmregex/fsmregex/pos"
)

// RecoverSuffixes walks result's followpos graph backward from each
// top-level accept position, collecting the unique chain of
// single-byte leaf predecessors that must precede a match. Unlike
// RecoverPrefixes, which can merge branches into one trie, a suffix
// chain only extends while each step has exactly one predecessor: once
// an accept position is reachable from more than one leaf (alternation
// merging into the same accept) or from a leaf that isn't a single
// byte, the chain stops there, since there is no longer one definite
// trailing literal.
//
// A suffix is Complete when the backward walk runs out of predecessors
// entirely — the whole match is that literal, not just its tail.
func RecoverSuffixes(result *parser.Result) *literal.Seq {
	pred := make(map[pos.Position][]pos.Position)
	for _, p := range result.Follow.Positions() {
		result.Follow.Get(p).ForEach(func(q pos.Position) {
			pred[q] = append(pred[q], p)
		})
	}

	accepts := make(map[int]pos.Position)
	for q := range pred {
		if q.IsAccept() {
			if _, ok := accepts[q.AcceptIndex()]; !ok {
				accepts[q.AcceptIndex()] = q
			}
		}
	}

	maxIdx := 0
	for idx := range accepts {
		if idx > maxIdx {
			maxIdx = idx
		}
	}

	lits := make([]literal.Literal, 0, len(accepts))
	for idx := 1; idx <= maxIdx; idx++ {
		a, ok := accepts[idx]
		if !ok {
			continue
		}
		lit, ok := suffixChain(result, pred, a)
		if ok {
			lits = append(lits, lit)
		}
	}
	return literal.NewSeq(lits...)
}

func suffixChain(result *parser.Result, pred map[pos.Position][]pos.Position, accept pos.Position) (literal.Literal, bool) {
	var rev []byte
	complete := false
	cur := accept
	for len(rev) < maxPrefixLen {
		ps := pred[cur]
		if len(ps) == 0 {
			complete = true
			break
		}
		if len(ps) != 1 {
			break
		}
		p := ps[0]
		cs, ok := result.Leaves[p]
		if !ok {
			break
		}
		b, ok := singleByte(cs)
		if !ok {
			break
		}
		rev = append(rev, b)
		cur = p
	}
	if len(rev) == 0 {
		return literal.Literal{}, false
	}
	out := make([]byte, len(rev))
	for i, b := range rev {
		out[len(rev)-1-i] = b
	}
	return literal.New(out, complete), true
}

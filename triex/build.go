package triex

import (
	"github.com/fsmregex/fsmregex/charset"
	"github.com/fsmregex/fsmregex/literal"
	"github.com/fsmregex/fsmregex/parser"
	"github.com/fsmregex/fsmregex/pos"
)

// maxPrefixLen caps how many bytes a single trie path accumulates,
// matching the predictor's own pref[] length ceiling.
const maxPrefixLen = 255

// Build walks result's firstpos/followpos graph from the start state,
// inserting every purely-literal path it finds into a fresh Tree. A
// path is "purely literal" as long as every position in the current
// state is either an accept marker or a leaf whose CharSet denotes
// exactly one byte with no meta membership (an anchored or
// multi-byte-class leaf ends that path without extending it further,
// since such leaves are not expressible as a plain trie edge).
//
// Cycles (a position set revisited during the walk, e.g. from an
// unbounded `*`) stop the walk along that path rather than looping
// forever; an unbounded repeat has no fixed-length literal prefix to
// record.
func Build(result *parser.Result) *Tree {
	tree := NewTree()
	seen := make(map[string]bool)

	var walk func(state *pos.Set, prefix []byte)
	walk = func(state *pos.Set, prefix []byte) {
		if len(prefix) >= maxPrefixLen {
			return
		}
		key := state.Key()
		if seen[key] {
			return
		}
		seen[key] = true

		moves := make(map[byte]*pos.Set)
		minAccept := 0
		pure := true
		state.ForEach(func(p pos.Position) {
			if p.IsAccept() {
				if minAccept == 0 || p.AcceptIndex() < minAccept {
					minAccept = p.AcceptIndex()
				}
				return
			}
			cs, ok := result.Leaves[p]
			if !ok {
				pure = false
				return
			}
			b, ok := singleByte(cs)
			if !ok {
				pure = false
				return
			}
			next := moves[b]
			if next == nil {
				next = pos.NewSet()
				moves[b] = next
			}
			next.AddSet(result.Follow.Get(p))
		})

		if minAccept > 0 {
			tree.Insert(prefix, minAccept)
		}
		if !pure {
			return
		}
		for b, next := range moves {
			walk(next, append(append([]byte{}, prefix...), b))
		}
	}

	walk(result.First, nil)
	return tree
}

// singleByte reports whether cs denotes exactly one byte value and no
// meta symbol, returning that byte.
func singleByte(cs charset.CharSet) (byte, bool) {
	if cs.Count() != 1 {
		return 0, false
	}
	for m := charset.MetaBase; m < charset.MetaBase+charset.MetaCount; m++ {
		if cs.TestMeta(m) {
			return 0, false
		}
	}
	return cs.Min()
}

// RecoverPrefixes collects one Literal per distinct accept index
// reachable by a pure-literal path from the tree's root, in ascending
// accept-index order. A literal is Complete when the trie node where it
// terminates is a leaf (nothing can extend the match further), matching
// literal.Literal.Complete's contract.
func RecoverPrefixes(tree *Tree) *literal.Seq {
	type found struct {
		accept int
		lit    literal.Literal
	}
	var results []found
	var walk func(node int, prefix []byte)
	walk = func(node int, prefix []byte) {
		n := tree.Node(node)
		if n.Accept != 0 {
			out := make([]byte, len(prefix))
			copy(out, prefix)
			results = append(results, found{accept: n.Accept, lit: literal.New(out, tree.IsLeaf(node))})
		}
		for b := 0; b < 256; b++ {
			if n.Edges[b] != 0 {
				walk(int(n.Edges[b]-1), append(prefix, byte(b)))
			}
		}
	}
	walk(tree.Root(), nil)

	byAccept := make(map[int]literal.Literal)
	maxAccept := 0
	for _, f := range results {
		if cur, ok := byAccept[f.accept]; !ok || len(f.lit.Bytes) < len(cur.Bytes) {
			byAccept[f.accept] = f.lit
		}
		if f.accept > maxAccept {
			maxAccept = f.accept
		}
	}
	lits := make([]literal.Literal, 0, len(byAccept))
	for i := 1; i <= maxAccept; i++ {
		if l, ok := byAccept[i]; ok {
			lits = append(lits, l)
		}
	}
	return literal.NewSeq(lits...)
}

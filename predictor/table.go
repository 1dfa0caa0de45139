package predictor

import (
	"bytes"

	"github.com/fsmregex/fsmregex/dfa"
)

// hashSize is the rolling-hash table width: 12 bits of hash, matching
// the mask used by rollingHash.
const hashSize = 4096

// maxDepth is how many bytes past the prefix the bitap/hash filters
// look at. Pred values are 8 bits wide, one per depth.
const maxDepth = 8

// Table holds the bitap-plus-rolling-hash match-prediction filters
// derived from a compiled pattern's DFA fringe: given the bytes just
// past a candidate start position, it answers "can this possibly be a
// match" far cheaper than stepping the VM, at the cost of occasional
// false positives (never false negatives).
type Table struct {
	// Prefix is the longest byte sequence every match begins with.
	Prefix []byte
	// Min is the minimum number of bytes a match needs after Prefix,
	// clamped to maxDepth.
	Min int
	// One is true when the pattern matches exactly one fixed literal
	// string with no metas or anchors: Prefix alone is the whole match.
	One bool

	// Bit is the bitap mask: bit i of Bit[b] is set when byte b can
	// appear at depth i (i < maxDepth) right after Prefix. Only built
	// when Prefix is empty and Min >= 2 — with a prefix, the first
	// byte is already pinned, and bitap has nothing to add.
	Bit [256]uint8

	// PMH and PMA are rolling-hash impossibility bitmaps: bit k of
	// table[h] is set when no live match reaches depth k at hash h.
	// PMH covers depths 0..7 and is used when Min >= 4; PMA covers
	// depths 0..3 and is used for shorter tails (1 <= Min < 4). Bits
	// are written only once a depth has been exhaustively searched,
	// so an unset bit never claims more than was actually proven.
	PMH [hashSize]uint8
	PMA [hashSize]uint8
}

// rollingHash folds byte b into hash h the same way at build and
// lookup time: h_k = ((h_{k-1} << 3) XOR b) & (hashSize-1).
func rollingHash(h uint16, b byte) uint16 {
	return ((h << 3) ^ uint16(b)) & (hashSize - 1)
}

// Build derives a Table from d's reachable states.
func Build(d *dfa.DFA) *Table {
	t := &Table{}
	t.Prefix, fringe := walkPrefix(d)
	t.Min = minTailLength(d, fringe)
	if t.Min > maxDepth {
		t.Min = maxDepth
	}
	t.One = isOneLiteral(d)

	if len(t.Prefix) == 0 && t.Min >= 2 {
		buildBitap(d, fringe, &t.Bit)
	}
	if t.Min >= 4 {
		buildHashFilter(d, fringe, t.PMH[:], maxDepth)
	} else if t.Min >= 1 {
		buildHashFilter(d, fringe, t.PMA[:], 4)
	}
	return t
}

// walkPrefix follows the unique single-byte edge out of each state,
// for as long as that state has exactly one byte edge, no meta edges,
// and isn't already accepting — past that point a shorter match could
// already have ended, so nothing further can be a mandatory prefix. It
// returns the bytes collected and the state reached (the "fringe").
func walkPrefix(d *dfa.DFA) ([]byte, dfa.StateID) {
	var prefix []byte
	cur := d.Start()
	visited := map[dfa.StateID]bool{cur: true}
	for len(prefix) < 255 {
		st := d.Get(cur)
		if st.Accept != 0 || len(st.MetaEdges) != 0 || len(st.Edges) != 1 {
			break
		}
		e := st.Edges[0]
		if e.Lo != e.Hi || visited[e.Target] {
			break
		}
		prefix = append(prefix, e.Lo)
		cur = e.Target
		visited[cur] = true
	}
	return prefix, cur
}

// isOneLiteral reports whether d's entire language is one fixed byte
// string: a straight-line chain of single-byte edges with no meta
// edges, ending in a state with no outgoing edges that accepts.
func isOneLiteral(d *dfa.DFA) bool {
	cur := d.Start()
	visited := map[dfa.StateID]bool{cur: true}
	for {
		st := d.Get(cur)
		if len(st.MetaEdges) != 0 {
			return false
		}
		if len(st.Edges) == 0 {
			return st.Accept != 0
		}
		if st.Accept != 0 || len(st.Edges) != 1 {
			return false
		}
		e := st.Edges[0]
		if e.Lo != e.Hi || visited[e.Target] {
			return false
		}
		cur = e.Target
		visited[cur] = true
	}
}

// minTailLength finds the shortest byte-distance from start to any
// accepting state, treating meta edges as zero-cost (a meta predicate
// might hold), which underestimates rather than overestimates — the
// safe direction, since callers use Min as a lower bound on how many
// bytes a match still needs. A 0-1 BFS (meta edges jump the queue)
// keeps distances exact despite the mixed edge weights. Search is
// capped at maxDepth since nothing past it is ever consulted.
func minTailLength(d *dfa.DFA, start dfa.StateID) int {
	dist := map[dfa.StateID]int{start: 0}
	queue := []dfa.StateID{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		d0 := dist[id]
		st := d.Get(id)
		if st.Accept != 0 {
			return d0
		}
		if d0 >= maxDepth {
			continue
		}
		for _, me := range st.MetaEdges {
			if _, ok := dist[me.Target]; !ok {
				dist[me.Target] = d0
				queue = append([]dfa.StateID{me.Target}, queue...)
			}
		}
		for _, e := range st.Edges {
			if _, ok := dist[e.Target]; !ok {
				dist[e.Target] = d0 + 1
				queue = append(queue, e.Target)
			}
		}
	}
	return maxDepth
}

// buildBitap records, for each depth 0..7 reachable from fringe, which
// bytes can occur there, OR-ing bit(depth) into Bit[b] for every byte
// b an edge at that depth carries.
func buildBitap(d *dfa.DFA, fringe dfa.StateID, bit *[256]uint8) {
	frontier := map[dfa.StateID]bool{fringe: true}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		next := map[dfa.StateID]bool{}
		for id := range frontier {
			for _, e := range d.Get(id).Edges {
				for b := int(e.Lo); b <= int(e.Hi); b++ {
					bit[b] |= 1 << uint(depth)
				}
				next[e.Target] = true
			}
		}
		frontier = next
	}
}

// buildHashFilter marks table[h] impossible at depth k whenever depth
// k's complete, exhaustively-searched reachable-hash set excludes h.
// It only writes bits for a depth once that depth's frontier was built
// in full: if the frontier would have exceeded frontierCap, the search
// stops before marking that depth (or any deeper one) at all, leaving
// their bits at the permissive default of 0 rather than risk marking a
// reachable hash impossible.
func buildHashFilter(d *dfa.DFA, fringe dfa.StateID, table []uint8, depths int) {
	const frontierCap = 4096

	type item struct {
		hash  uint16
		state dfa.StateID
	}
	frontier := []item{{0, fringe}}

	for depth := 0; depth < depths; depth++ {
		reachable := make(map[uint16]bool)
		seen := make(map[item]bool)
		var next []item
		truncated := false

		for _, it := range frontier {
			for _, e := range d.Get(it.state).Edges {
				for b := int(e.Lo); b <= int(e.Hi); b++ {
					var h uint16
					if depth == 0 {
						h = uint16(b)
					} else {
						h = rollingHash(it.hash, byte(b))
					}
					reachable[h] = true
					ni := item{h, e.Target}
					if seen[ni] {
						continue
					}
					seen[ni] = true
					if len(next) < frontierCap {
						next = append(next, ni)
					} else {
						truncated = true
					}
				}
			}
		}

		for h := 0; h < len(table); h++ {
			if !reachable[uint16(h)] {
				table[h] |= 1 << uint(depth)
			}
		}

		if truncated || len(next) == 0 {
			break
		}
		frontier = next
	}
}

// Predict reports whether haystack[pos:] could possibly start a match.
// ok is false only when the prediction tables have proven it cannot;
// skip is then a safe number of bytes to advance without invoking the
// VM. Predict never reports false when a match is genuinely possible
// (the one-sided soundness the tables are built to guarantee) — it can
// only ever save work, never change which positions actually match.
func (t *Table) Predict(haystack []byte, pos int) (ok bool, skip int) {
	if len(t.Prefix) > 0 {
		end := pos + len(t.Prefix)
		if end > len(haystack) || !bytes.Equal(haystack[pos:end], t.Prefix) {
			return false, 1
		}
		pos = end
	}

	tail := haystack[pos:]
	if t.Min < 1 || len(tail) == 0 {
		return true, 0
	}

	if len(t.Prefix) == 0 && t.Min >= 2 && t.Bit[tail[0]]&1 == 0 {
		return false, 1
	}

	table, depths := t.PMA[:], 4
	if t.Min >= 4 {
		table, depths = t.PMH[:], maxDepth
	}
	if len(tail) < depths {
		depths = len(tail)
	}

	var h uint16
	for k := 0; k < depths; k++ {
		if k == 0 {
			h = uint16(tail[0])
		} else {
			h = rollingHash(h, tail[k])
		}
		if table[h]&(1<<uint(k)) != 0 {
			return false, k + 1
		}
	}
	return true, 0
}

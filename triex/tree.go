// Package triex implements the string-tree pre-DFA: a prefix trie over
// pure literal alternatives, built directly from a parsed pattern's
// firstpos/followpos graph rather than from an AST. When a top-level
// alternative is a straight-line run of single-byte positions with no
// branching, anchors, or meta symbols, its bytes are inserted into the
// trie; the DFA builder merges the trie in eagerly (a state all of
// whose positions correspond to a single trie branch lets the trie's
// accept win without further subset construction), and the predictor
// builder recovers prefix/suffix literal sequences from the same tree.
package triex

// Node is one trie node: 256 byte edges plus an accept index (0 means
// "not an accepting node"). Nodes are allocated from Tree's arena in
// fixed-size blocks and referenced by index, never by pointer, so the
// whole arena can be discarded in one step when compilation ends.
type Node struct {
	Edges  [256]int32 // child node index + 1, or 0 for "no edge"
	Accept int        // 1-based accept index, 0 if non-accepting
}

// blockSize is the number of Nodes allocated per arena block, matching
// the 64-node block size the DFA/trie builders use elsewhere in this
// compiler for bump-arena allocation.
const blockSize = 64

// Tree is a prefix trie over byte strings, arena-allocated in 64-node
// blocks and freed en masse with the rest of a single compilation.
type Tree struct {
	nodes []Node
}

// NewTree returns an empty Tree with just the root node (index 0)
// allocated.
func NewTree() *Tree {
	t := &Tree{nodes: make([]Node, 0, blockSize)}
	t.alloc()
	return t
}

// Root returns the root node's index, always 0.
func (t *Tree) Root() int { return 0 }

// Node returns the node at index i.
func (t *Tree) Node(i int) *Node { return &t.nodes[i] }

// Len returns the number of nodes allocated so far.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) alloc() int {
	if len(t.nodes) == cap(t.nodes) {
		grown := make([]Node, len(t.nodes), cap(t.nodes)+blockSize)
		copy(grown, t.nodes)
		t.nodes = grown
	}
	t.nodes = append(t.nodes, Node{})
	return len(t.nodes) - 1
}

// Insert adds literal s to the trie, marking its terminal node with the
// given 1-based accept index. If a shorter or identical literal already
// owns that terminal node, the earliest-inserted (lowest) accept index
// is kept, matching subset construction's "minimum index wins" rule for
// identical accepting position sets.
func (t *Tree) Insert(s []byte, accept int) {
	cur := t.Root()
	for _, b := range s {
		next := t.nodes[cur].Edges[b]
		if next == 0 {
			idx := t.alloc()
			t.nodes[cur].Edges[b] = int32(idx + 1)
			cur = idx
		} else {
			cur = int(next - 1)
		}
	}
	if t.nodes[cur].Accept == 0 || accept < t.nodes[cur].Accept {
		t.nodes[cur].Accept = accept
	}
}

// Walk follows s from the root and reports the node index reached and
// whether every byte of s had an edge (a full walk). A partial walk
// (ok=false) means s is not a prefix of anything in the trie.
func (t *Tree) Walk(s []byte) (node int, ok bool) {
	cur := t.Root()
	for _, b := range s {
		next := t.nodes[cur].Edges[b]
		if next == 0 {
			return cur, false
		}
		cur = int(next - 1)
	}
	return cur, true
}

// IsLeaf reports whether node i has no outgoing edges.
func (t *Tree) IsLeaf(i int) bool {
	for _, e := range t.nodes[i].Edges {
		if e != 0 {
			return false
		}
	}
	return true
}

// Single reports whether node i has exactly one outgoing edge, and
// returns that edge's byte and target node index.
func (t *Tree) Single(i int) (b byte, target int, ok bool) {
	count := 0
	var foundByte byte
	var foundTarget int32
	for c := 0; c < 256; c++ {
		if t.nodes[i].Edges[c] != 0 {
			count++
			if count > 1 {
				return 0, 0, false
			}
			foundByte = byte(c)
			foundTarget = t.nodes[i].Edges[c]
		}
	}
	if count != 1 {
		return 0, 0, false
	}
	return foundByte, int(foundTarget - 1), true
}

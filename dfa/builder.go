package dfa

import (
	"sort"

	"github.com/fsmregex/fsmregex/charset"
	"github.com/fsmregex/fsmregex/parser"
	"github.com/fsmregex/fsmregex/pos"
)

// Build runs subset construction over result's followpos graph and
// returns the resulting DFA.
//
// The start state is firstpos(root). For every unprocessed state, moves
// are computed byte by byte (and meta-symbol by meta-symbol): bytes
// that make exactly the same subset of the state's positions fire are
// grouped into one transition, then lazy culling, greedy conversion and
// anchor trimming are applied to the transition's target before it is
// deduplicated against every previously built state with the same
// position set.
func Build(result *parser.Result) *DFA {
	b := &builder{
		result:  result,
		cache:   make(map[string]StateID),
		headOf:  make(map[pos.Position][]int),
		tailOf:  make(map[pos.Position][]int),
		dfa:     &DFA{},
	}
	for id, lr := range result.Lookaheads {
		lr.Heads.ForEach(func(p pos.Position) { b.headOf[p] = append(b.headOf[p], id) })
		lr.Tails.ForEach(func(p pos.Position) { b.tailOf[p] = append(b.tailOf[p], id) })
	}

	start := b.intern(result.First)
	if start != 0 {
		panic("dfa: start state did not intern to id 0")
	}
	for len(b.worklist) > 0 {
		id := b.worklist[0]
		b.worklist = b.worklist[1:]
		b.process(id)
	}
	return b.dfa
}

type builder struct {
	result *parser.Result
	cache  map[string]StateID
	states []*pos.Set
	dfa    *DFA

	headOf map[pos.Position][]int
	tailOf map[pos.Position][]int

	worklist []StateID
}

// intern returns the id of the existing state equal to set, allocating
// a new one (and queuing it for processing) if none exists yet.
func (b *builder) intern(set *pos.Set) StateID {
	key := set.Key()
	if id, ok := b.cache[key]; ok {
		return id
	}
	id := StateID(len(b.states))
	b.states = append(b.states, set)
	b.dfa.States = append(b.dfa.States, &State{})
	b.cache[key] = id
	b.worklist = append(b.worklist, id)
	return id
}

func (b *builder) process(id StateID) {
	set := b.states[id]
	st := b.dfa.States[id]

	minAccept := 0
	var accepts, leaves []pos.Position
	set.ForEach(func(p pos.Position) {
		if p.IsAccept() {
			accepts = append(accepts, p)
			if minAccept == 0 || p.AcceptIndex() < minAccept {
				minAccept = p.AcceptIndex()
			}
			return
		}
		leaves = append(leaves, p)
	})
	if minAccept > 0 {
		st.Accept = minAccept
		st.Redo = b.result.NegateAccepts[minAccept]
	}

	for _, p := range set.Slice() {
		for _, lid := range b.headOf[p] {
			st.Heads = appendUnique(st.Heads, lid)
		}
		for _, lid := range b.tailOf[p] {
			st.Tails = appendUnique(st.Tails, lid)
		}
	}

	b.buildByteEdges(st, leaves, accepts)
	b.buildMetaEdges(st, leaves, accepts)
}

func appendUnique(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// firing returns the leaf positions in leaves whose charset contains c
// (a byte value 0..255, or a meta code when meta is true).
func (b *builder) firing(leaves []pos.Position, c int, meta bool) []pos.Position {
	var out []pos.Position
	for _, p := range leaves {
		cs := b.result.Leaves[p]
		if meta {
			if cs.TestMeta(c) {
				out = append(out, p)
			}
		} else if cs.Test(byte(c)) {
			out = append(out, p)
		}
	}
	return out
}

func (b *builder) target(contributing []pos.Position, accepts []pos.Position, trimAnchor bool) *pos.Set {
	target := pos.NewSet()
	for _, p := range contributing {
		target.AddSet(b.result.Follow.Get(p))
	}
	target = applyLazyCulling(target, accepts)
	target = applyGreedyConversion(target, contributing)
	if trimAnchor {
		target = target.Filter(func(p pos.Position) bool { return !p.Has(pos.Anchor) })
	}
	return target
}

// applyLazyCulling removes, for every lazy group ℓ with an accepting
// position in accepts, any non-accepting position of that same group ℓ
// from target: a lazy quantifier commits to the earliest match rather
// than extending past one it could already have taken.
func applyLazyCulling(target *pos.Set, accepts []pos.Position) *pos.Set {
	var lazyAccepts []uint8
	for _, a := range accepts {
		if a.IsLazy() {
			lazyAccepts = append(lazyAccepts, a.Lazy)
		}
	}
	if len(lazyAccepts) == 0 {
		return target
	}
	return target.Filter(func(p pos.Position) bool {
		if p.IsAccept() || !p.IsLazy() {
			return true
		}
		for _, l := range lazyAccepts {
			if p.Lazy == l {
				return false
			}
		}
		return true
	})
}

// applyGreedyConversion removes lazy continuations competing with a
// possessive/greedy position firing on the same move.
func applyGreedyConversion(target *pos.Set, contributing []pos.Position) *pos.Set {
	greedy := false
	for _, p := range contributing {
		if p.Has(pos.Greedy) {
			greedy = true
			break
		}
	}
	if !greedy {
		return target
	}
	return target.Filter(func(p pos.Position) bool {
		return p.IsAccept() || !p.IsLazy()
	})
}

func (b *builder) buildByteEdges(st *State, leaves, accepts []pos.Position) {
	groups := make(map[string]*pos.Set)
	byteOf := make(map[string][]byte)
	for c := 0; c < 256; c++ {
		contributing := b.firing(leaves, c, false)
		if len(contributing) == 0 {
			continue
		}
		target := b.target(contributing, accepts, true)
		if target.IsEmpty() {
			continue
		}
		key := target.Key()
		if _, ok := groups[key]; !ok {
			groups[key] = target
		}
		byteOf[key] = append(byteOf[key], byte(c))
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var edges []Edge
	for _, k := range keys {
		target := b.intern(groups[k])
		for _, r := range ranges(byteOf[k]) {
			edges = append(edges, Edge{Lo: r[0], Hi: r[1], Target: target})
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Lo < edges[j].Lo })
	st.Edges = edges
}

func (b *builder) buildMetaEdges(st *State, leaves, accepts []pos.Position) {
	var metaEdges []MetaEdge
	for m := charset.MetaBase; m < charset.MetaBase+charset.MetaCount; m++ {
		contributing := b.firing(leaves, m, true)
		if len(contributing) == 0 {
			continue
		}
		target := b.target(contributing, accepts, false)
		if target.IsEmpty() {
			continue
		}
		metaEdges = append(metaEdges, MetaEdge{Meta: m, Target: b.intern(target)})
	}
	st.MetaEdges = metaEdges
}

// ranges groups a byte slice into maximal contiguous [lo, hi] runs.
func ranges(bs []byte) [][2]byte {
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	var out [][2]byte
	i := 0
	for i < len(bs) {
		lo := bs[i]
		hi := lo
		j := i + 1
		for j < len(bs) && bs[j] == hi+1 {
			hi = bs[j]
			j++
		}
		out = append(out, [2]byte{lo, hi})
		i = j
	}
	return out
}

package parser

import (
	"github.com/fsmregex/fsmregex/charset"
	"github.com/fsmregex/fsmregex/pos"
	"github.com/fsmregex/fsmregex/rxerr"
)

const maxSourceLen = 1 << 16 // 64K pattern length ceiling; beyond this, report exceeds_length

// frag is a parsed sub-expression's contribution to the followpos
// construction: its firstpos/lastpos position sets and whether it can
// match the empty string.
type frag struct {
	first    *pos.Set
	last     *pos.Set
	nullable bool
}

func emptyFrag() frag {
	return frag{first: &pos.Set{}, last: &pos.Set{}, nullable: true}
}

func leafFrag(p pos.Position) frag {
	return frag{first: pos.NewSet(p), last: pos.NewSet(p), nullable: false}
}

// Parser holds all mutable state threaded through the recursive
// descent. A single Parser parses exactly one pattern.
type Parser struct {
	src  string
	i    int // current byte offset (cursor)
	opt  Options
	flagStack []ModFlag // current effective flags, one entry per open group scope

	lazyStack   []uint8 // innermost-enclosing lazy group id, 0 = none
	nextLazyID  uint8
	greedyStack []bool // innermost-enclosing possessive/greedy override

	negDepth int // > 0 while inside a (?^X) negative sub-pattern
	negSeen  bool // latched true once any (?^X) is entered since the
	             // enclosing top-level branch started; negDepth itself
	             // is always back to 0 by the time that branch's
	             // parseConcat returns, so this is what parseAlt reads
	             // to tag the branch's accept index for REDO

	iterOverride *int // non-nil while re-parsing an unrolled repeat copy

	follow        *pos.Follow
	leaves        map[pos.Position]charset.CharSet
	lookaheads    map[int]*LookaheadRange
	nextLookahead int
	negateAccepts map[int]bool

	loc    int // monotonically increasing synthetic location, used to
	           // guarantee every leaf gets a distinct Loc even when the
	           // same byte offset is revisited during repeat unrolling
	errs   []*rxerr.Error

	topLevelAccepts int // highest accept index assigned so far
}

// New constructs a Parser for src with the given options.
func New(src string, opt Options) *Parser {
	return &Parser{
		src:           src,
		opt:           opt,
		flagStack:     []ModFlag{opt.Flags},
		follow:        pos.NewFollow(),
		leaves:        make(map[pos.Position]charset.CharSet),
		lookaheads:    make(map[int]*LookaheadRange),
		negateAccepts: make(map[int]bool),
	}
}

// Parse runs the parser to completion and returns the Result, plus the
// first recorded error (or nil). When opt.ThrowOnError is set, or the
// first error is fatal, Parse returns a nil Result and that error.
func Parse(src string, opt Options) (*Result, error) {
	if len(src) > maxSourceLen {
		return nil, rxerr.New(rxerr.ExceedsLength, src, len(src))
	}
	p := New(src, opt)
	root := p.parseAlt(true)

	if p.i < len(p.src) {
		// Leftover input means an unbalanced ')' was hit at depth 0.
		p.fail(rxerr.MismatchedParens, p.i, "unmatched ')'")
	}

	if len(p.errs) > 0 && (opt.ThrowOnError || true) {
		// ExceedsLimits-style fatals are raised directly via panic-free
		// early return at the call site; ordinary errors are fatal iff
		// ThrowOnError.
		first := p.errs[0]
		if opt.ThrowOnError || first.Kind.Fatal() {
			return nil, first
		}
	}

	res := &Result{
		Source:        src,
		Follow:        p.follow,
		First:         root.first,
		Leaves:        p.leaves,
		AcceptCount:   p.acceptCount(),
		Lookaheads:    p.lookaheads,
		NegateAccepts: p.negateAccepts,
	}
	var err error
	if len(p.errs) > 0 {
		err = p.errs[0]
	}
	return res, err
}

func (p *Parser) acceptCount() int {
	return p.topLevelAccepts
}

func (p *Parser) fail(kind rxerr.Kind, offset int, detail string) {
	e := rxerr.Newf(kind, p.src, offset, "%s", detail)
	p.errs = append(p.errs, e)
}

func (p *Parser) currentFlags() ModFlag {
	return p.flagStack[len(p.flagStack)-1]
}

func (p *Parser) pushFlags(f ModFlag) {
	p.flagStack = append(p.flagStack, f)
}

func (p *Parser) popFlags() {
	if len(p.flagStack) > 1 {
		p.flagStack = p.flagStack[:len(p.flagStack)-1]
	}
}

func (p *Parser) has(f ModFlag) bool { return p.currentFlags()&f != 0 }

// nextLoc returns a fresh synthetic location for a new leaf position,
// distinguishing it from every other leaf parsed so far even if
// several leaves share the same byte offset (as happens when {n,m}
// unrolling re-parses the same source bytes).
func (p *Parser) nextLoc() int {
	l := p.loc
	p.loc++
	return l
}

func (p *Parser) curIter() int {
	if p.iterOverride != nil {
		return *p.iterOverride
	}
	return 0
}

func (p *Parser) curLazy() uint8 {
	if len(p.lazyStack) == 0 {
		return 0
	}
	return p.lazyStack[len(p.lazyStack)-1]
}

func (p *Parser) curGreedy() bool {
	if len(p.greedyStack) == 0 {
		return false
	}
	return p.greedyStack[len(p.greedyStack)-1]
}

// newLeaf registers a leaf position with the given CharSet (byte
// and/or meta membership) and returns the frag for it.
func (p *Parser) newLeaf(cs charset.CharSet) frag {
	leaf := pos.New(p.nextLoc()).WithIter(p.curIter()).WithLazy(int(p.curLazy()))
	if p.curGreedy() {
		leaf = leaf.With(pos.Greedy)
	}
	if p.negDepth > 0 {
		leaf = leaf.With(pos.Negate)
	}
	p.leaves[leaf] = cs
	return leafFrag(leaf)
}

// newAnchorLeaf registers a zero-width anchor/meta leaf. nullable is
// false here even though the leaf consumes no byte: nullable controls
// whether concat() threads a neighboring atom's firstpos/lastpos past
// this position, and an anchor's predicate must be satisfied before
// anything past it becomes reachable. The anchor still reaches what
// follows it through the unconditional followpos link concat() adds
// (so e.g. "\bfoo" transitions from the \b leaf into "f" once \b's
// test passes); marking it nullable would instead make "f" reachable
// directly from the surrounding state regardless of whether \b held.
func (p *Parser) newAnchorLeaf(meta int) frag {
	leaf := pos.New(p.nextLoc()).WithIter(p.curIter()).WithLazy(int(p.curLazy())).With(pos.Anchor)
	if p.negDepth > 0 {
		leaf = leaf.With(pos.Negate)
	}
	p.leaves[leaf] = charset.FromMeta(meta)
	return frag{first: pos.NewSet(leaf), last: pos.NewSet(leaf), nullable: false}
}

func (p *Parser) topLevelAcceptLeaf(index int) frag {
	leaf := pos.NewAccept(index)
	return leafFrag(leaf)
}

// ---- grammar ----

// parseAlt parses a '|'-separated list of concatenations. When top is
// true, each alternative is a distinct rule: its concatenation gets an
// accept leaf appended, and the accept index becomes the token this
// alternative produces ("ab|xy" on "abxy" gives accept codes [1, 2]
// because each top-level alternative is its own rule).
func (p *Parser) parseAlt(top bool) frag {
	var branches []frag
	index := 0
	for {
		index++
		if top {
			p.negSeen = false
		}
		c := p.parseConcat()
		if top {
			acceptIdx := index
			if p.negSeen {
				p.negateAccepts[acceptIdx] = true
			}
			if acceptIdx > p.topLevelAccepts {
				p.topLevelAccepts = acceptIdx
			}
			c = p.concat(c, p.topLevelAcceptLeaf(acceptIdx))
		}
		branches = append(branches, c)
		p.skipFreeSpace()
		if p.i < len(p.src) && p.src[p.i] == '|' {
			p.i++
			continue
		}
		break
	}
	if len(branches) == 1 {
		return branches[0]
	}
	return p.alternate(branches)
}

func (p *Parser) alternate(branches []frag) frag {
	first := &pos.Set{}
	last := &pos.Set{}
	nullable := false
	for _, b := range branches {
		first.AddSet(b.first)
		last.AddSet(b.last)
		nullable = nullable || b.nullable
	}
	return frag{first: first, last: last, nullable: nullable}
}

func (p *Parser) parseConcat() frag {
	out := emptyFrag()
	first := true
	for {
		p.skipFreeSpace()
		if p.i >= len(p.src) {
			break
		}
		c := p.src[p.i]
		if c == '|' || c == ')' {
			break
		}
		next := p.parseQuantified()
		if first {
			out = next
			first = false
		} else {
			out = p.concat(out, next)
		}
	}
	return out
}

// concat builds the concatenation a·b, linking followpos(last(a)) to
// first(b) unconditionally: followpos edges are added whenever a
// concatenation links two sub-expressions.
func (p *Parser) concat(a, b frag) frag {
	p.follow.Link(a.last, b.first)

	first := a.first
	if a.nullable {
		first = pos.NewSet(a.first.Slice()...)
		first.AddSet(b.first)
	}
	last := b.last
	if b.nullable {
		last = pos.NewSet(b.last.Slice()...)
		last.AddSet(a.last)
	}
	return frag{first: first, last: last, nullable: a.nullable && b.nullable}
}

func (p *Parser) skipFreeSpace() {
	if !p.has(FlagFreeSpace) {
		return
	}
	for p.i < len(p.src) {
		c := p.src[p.i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.i++
		case c == '#':
			for p.i < len(p.src) && p.src[p.i] != '\n' {
				p.i++
			}
		default:
			return
		}
	}
}

package parser

import (
	"github.com/fsmregex/fsmregex/charset"
	"github.com/fsmregex/fsmregex/pos"
	"github.com/fsmregex/fsmregex/rxerr"
)

// parseAtom parses the smallest self-contained unit of the grammar: a
// literal byte, an escape, a bracket class, '.', an anchor, or a
// parenthesized group.
func (p *Parser) parseAtom() frag {
	p.skipFreeSpace()
	if p.i >= len(p.src) {
		return emptyFrag()
	}
	c := p.src[p.i]
	switch c {
	case '(':
		return p.parseGroup()
	case '[':
		cs, ok := p.parseClass()
		if !ok {
			return emptyFrag()
		}
		return p.newLeaf(cs)
	case '.':
		p.i++
		return p.newLeaf(p.dotCharset())
	case '^':
		p.i++
		if p.has(FlagMultiline) {
			return p.newAnchorLeaf(charset.BOL)
		}
		return p.newAnchorLeaf(charset.BOB)
	case '$':
		p.i++
		if p.has(FlagMultiline) {
			return p.newAnchorLeaf(charset.EOL)
		}
		return p.newAnchorLeaf(charset.EOB)
	default:
		if p.opt.EscapeChar != 0 && c == p.opt.EscapeChar {
			return p.parseEscape()
		}
		p.i++
		return p.literalLeaf(c)
	}
}

func (p *Parser) dotCharset() charset.CharSet {
	cs := charset.Full()
	if !p.has(FlagDotAll) {
		cs.Clear('\n')
	}
	return cs
}

func (p *Parser) literalLeaf(c byte) frag {
	if p.has(FlagCaseInsensitive) {
		return p.newLeaf(caseInsensitiveSet(c))
	}
	return p.newLeaf(charset.FromByte(c))
}

func caseInsensitiveSet(c byte) charset.CharSet {
	cs := charset.FromByte(c)
	switch {
	case c >= 'a' && c <= 'z':
		cs.Set(c - 'a' + 'A')
	case c >= 'A' && c <= 'Z':
		cs.Set(c - 'A' + 'a')
	}
	return cs
}

func (p *Parser) expect(c byte, groupStart int) {
	if p.i < len(p.src) && p.src[p.i] == c {
		p.i++
		return
	}
	p.fail(rxerr.MismatchedParens, groupStart, "missing ')'")
}

// parseGroup parses a parenthesized sub-expression, dispatching to the
// extended '(?...)' forms when present.
func (p *Parser) parseGroup() frag {
	start := p.i
	p.i++ // consume '('
	if p.i < len(p.src) && p.src[p.i] == '?' {
		p.i++
		return p.parseGroupExt(start)
	}
	inner := p.parseAlt(false)
	p.expect(')', start)
	return inner
}

func (p *Parser) parseGroupExt(start int) frag {
	if p.i >= len(p.src) {
		p.fail(rxerr.MismatchedParens, start, "unterminated group")
		return emptyFrag()
	}
	switch p.src[p.i] {
	case ':':
		p.i++
		inner := p.parseAlt(false)
		p.expect(')', start)
		return inner
	case '=':
		p.i++
		inner := p.parseAlt(false)
		p.expect(')', start)
		return p.wrapLookahead(inner, false)
	case '!':
		p.i++
		inner := p.parseAlt(false)
		p.expect(')', start)
		return p.wrapLookahead(inner, true)
	case '^':
		p.i++
		p.negDepth++
		p.negSeen = true
		inner := p.parseAlt(false)
		p.negDepth--
		p.expect(')', start)
		return inner
	case '>':
		// Atomic group: the VM's longest-match construction has no
		// backtracking to suppress, so this is a plain non-capturing
		// group at the followpos level.
		p.i++
		inner := p.parseAlt(false)
		p.expect(')', start)
		return inner
	default:
		return p.parseModifierGroup(start)
	}
}

// parseModifierGroup parses "(?flags)" and "(?flags:...)". The
// bare "(?flags)" form rebinds the enclosing scope's flags for the
// remainder of that scope rather than opening a new one.
func (p *Parser) parseModifierGroup(start int) frag {
	begin := p.i
	for p.i < len(p.src) && p.src[p.i] != ')' && p.src[p.i] != ':' {
		p.i++
	}
	add, del := parseInlineFlags(p.src[begin:p.i])
	newFlags := (p.currentFlags() | add) &^ del

	if p.i < len(p.src) && p.src[p.i] == ':' {
		p.i++
		p.pushFlags(newFlags)
		inner := p.parseAlt(false)
		p.popFlags()
		p.expect(')', start)
		return inner
	}
	if p.i < len(p.src) && p.src[p.i] == ')' {
		p.i++
		p.flagStack[len(p.flagStack)-1] = newFlags
		return emptyFrag()
	}
	p.fail(rxerr.InvalidModifier, start, "malformed modifier group")
	return emptyFrag()
}

func parseInlineFlags(s string) (add, del ModFlag) {
	neg := false
	set := func(f ModFlag) {
		if neg {
			del |= f
		} else {
			add |= f
		}
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '-':
			neg = true
		case 'i':
			set(FlagCaseInsensitive)
		case 'm':
			set(FlagMultiline)
		case 's':
			set(FlagDotAll)
		case 'x':
			set(FlagFreeSpace)
		case 'q':
			set(FlagVerbatim)
		}
	}
	return add, del
}

// wrapLookahead records inner's firstpos/lastpos as the lookahead's
// head/tail ranges and represents the whole assertion in the
// surrounding concatenation as a nullable pass-through: firstpos =
// {self} ∪ inner.first, lastpos = {self} ∪ inner.last. Unioning
// inner's own positions into the marker's reported first/last (rather
// than leaving them isolated) is what actually threads them into the
// followpos graph: a marker leaf never fires on its own (its charset
// is empty), so it is the bubbling concat() already does for every
// nullable frag — not a standalone follow.Link call — that carries
// inner.first/inner.last into whatever live DFA state reaches this
// point, exactly as star/opt thread their own frag's first/last
// through with no special-casing. The marker leaf carries the
// lookahead id in its Iter field; the DFA builder does not read it, but
// because inner's positions are now live members of reachable states,
// its headOf/tailOf maps (built from Result.Lookaheads, i.e. from
// inner.first/inner.last directly) emit real HEAD/TAIL opcode pairs
// for them.
func (p *Parser) wrapLookahead(inner frag, negated bool) frag {
	p.nextLookahead++
	id := p.nextLookahead
	p.lookaheads[id] = &LookaheadRange{ID: id, Heads: inner.first, Tails: inner.last}

	leaf := pos.New(p.nextLoc()).WithIter(id).With(pos.Anchor).With(pos.Ticked)
	if negated {
		leaf = leaf.With(pos.Negate)
	}
	if p.negDepth > 0 {
		leaf = leaf.With(pos.Negate)
	}
	p.leaves[leaf] = charset.CharSet{}

	first := pos.NewSet(leaf)
	first.AddSet(inner.first)
	last := pos.NewSet(leaf)
	last.AddSet(inner.last)
	return frag{first: first, last: last, nullable: true}
}

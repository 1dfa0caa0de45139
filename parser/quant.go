package parser

import "github.com/fsmregex/fsmregex/rxerr"

// parseQuantified parses one atom followed by an optional quantifier
// (*, +, ?, {n,m}) and an optional trailing lazy '?' or possessive '+'
// marker. Because the parser keeps no persistent AST, a lazy or
// possessive suffix is detected by peeking past the already-parsed
// atom and, if found, re-parsing the same source span with the
// relevant stack (lazyStack/greedyStack) pushed first — the leaves from
// the first, throwaway parse become unreachable orphans once the real
// frag replaces them, which is harmless since unreachable positions
// never appear in any firstpos/followpos set the DFA builder visits.
func (p *Parser) parseQuantified() frag {
	start := p.i
	a := p.parseAtom()
	end := p.i

	lazy, possessive := p.peekSuffix(end)
	switch {
	case lazy:
		id := p.nextLazyID + 1
		p.nextLazyID = id
		p.lazyStack = append(p.lazyStack, id)
	case possessive:
		p.greedyStack = append(p.greedyStack, true)
	}
	if lazy || possessive {
		p.i = start
		a = p.parseAtom()
		end = p.i
	}

	out := p.applyQuantifier(a, start, end)

	switch {
	case lazy:
		p.lazyStack = p.lazyStack[:len(p.lazyStack)-1]
	case possessive:
		p.greedyStack = p.greedyStack[:len(p.greedyStack)-1]
	}
	return out
}

// peekSuffix reports whether the quantifier (if any) immediately
// following offset end is itself followed by a lazy '?' or possessive
// '+' marker, without consuming anything.
func (p *Parser) peekSuffix(end int) (lazy, possessive bool) {
	i := end
	if i >= len(p.src) {
		return false, false
	}
	switch p.src[i] {
	case '*', '+', '?':
		i++
	case '{':
		j := i + 1
		for j < len(p.src) && p.src[j] != '}' {
			j++
		}
		if j >= len(p.src) {
			return false, false
		}
		i = j + 1
	default:
		return false, false
	}
	if i >= len(p.src) {
		return false, false
	}
	switch p.src[i] {
	case '?':
		return true, false
	case '+':
		return false, true
	}
	return false, false
}

func (p *Parser) applyQuantifier(a frag, start, end int) frag {
	if p.i >= len(p.src) {
		return a
	}
	switch p.src[p.i] {
	case '*':
		p.i++
		a = p.star(a)
	case '+':
		p.i++
		a = p.plus(a)
	case '?':
		p.i++
		a = p.optional(a)
	case '{':
		n, m, ok := p.tryParseBounds()
		if !ok {
			return a
		}
		a = p.repeat(a, start, end, n, m)
	default:
		return a
	}
	if p.i < len(p.src) {
		switch p.src[p.i] {
		case '?', '+':
			p.i++
		}
	}
	return a
}

// star implements Kleene star: the loop-back edge links lastpos(a) to
// firstpos(a) in addition to whatever concatenation already linked
// into firstpos(a).
func (p *Parser) star(a frag) frag {
	p.follow.Link(a.last, a.first)
	return frag{first: a.first, last: a.last, nullable: true}
}

func (p *Parser) plus(a frag) frag {
	p.follow.Link(a.last, a.first)
	return frag{first: a.first, last: a.last, nullable: a.nullable}
}

func (p *Parser) optional(a frag) frag {
	return frag{first: a.first, last: a.last, nullable: true}
}

// tryParseBounds parses "{n}", "{n,}" or "{n,m}" starting at the
// current '{'. On failure it restores the cursor and returns ok=false
// so the caller treats '{' as a literal.
func (p *Parser) tryParseBounds() (n, m int, ok bool) {
	save := p.i
	i := p.i + 1
	lo, i2, got := scanInt(p.src, i)
	if !got {
		p.i = save
		return 0, 0, false
	}
	i = i2
	hi := lo
	if i < len(p.src) && p.src[i] == ',' {
		i++
		if i < len(p.src) && p.src[i] == '}' {
			hi = -1
		} else {
			mm, i3, got2 := scanInt(p.src, i)
			if !got2 {
				p.i = save
				return 0, 0, false
			}
			hi = mm
			i = i3
		}
	}
	if i >= len(p.src) || p.src[i] != '}' {
		p.i = save
		return 0, 0, false
	}
	p.i = i + 1
	return lo, hi, true
}

func scanInt(s string, i int) (n, end int, ok bool) {
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i == start {
		return 0, i, false
	}
	return n, i, true
}

// repeat unrolls {n,m} by re-parsing the atom's source span once per
// extra occurrence, tagging each copy with a distinct Iter value via
// reparseIter. An unbounded upper bound (m == -1) folds its final
// mandatory copy into a star; a bounded upper bound nests the optional
// tail copies right-associatively so each is independently skippable.
func (p *Parser) repeat(first frag, start, end, n, m int) frag {
	if m != -1 && m < n {
		p.fail(rxerr.InvalidRepeat, start, "repeat upper bound below lower bound")
		return first
	}

	// copyAt returns the i-th unrolled occurrence, reusing the already-
	// parsed `first` frag for index 0 and re-parsing every other index.
	copyAt := func(i int) frag {
		if i == 0 {
			return first
		}
		return p.reparseIter(start, end, i)
	}

	if m == -1 {
		// n copies total: indices 0..n-2 are plain mandatory copies,
		// index n-1 is starred to absorb all further repetitions.
		if n == 0 {
			return p.star(first)
		}
		var mandatory []frag
		for i := 0; i < n-1; i++ {
			mandatory = append(mandatory, copyAt(i))
		}
		tail := p.star(copyAt(n - 1))
		return p.joinAll(mandatory, tail, true)
	}

	var mandatory []frag
	for i := 0; i < n; i++ {
		mandatory = append(mandatory, copyAt(i))
	}

	optCount := m - n
	haveTail := optCount > 0
	var optTail frag
	if haveTail {
		optTail = p.optional(copyAt(n + optCount - 1))
		for i := n + optCount - 2; i >= n; i-- {
			optTail = p.optional(p.concat(copyAt(i), optTail))
		}
	}
	return p.joinAll(mandatory, optTail, haveTail)
}

func (p *Parser) joinAll(mandatory []frag, tail frag, haveTail bool) frag {
	if len(mandatory) == 0 {
		if haveTail {
			return tail
		}
		return emptyFrag()
	}
	out := mandatory[0]
	for _, c := range mandatory[1:] {
		out = p.concat(out, c)
	}
	if haveTail {
		out = p.concat(out, tail)
	}
	return out
}

// reparseIter re-parses the atom spanning src[start:end) with a fresh
// iteration tag, then restores the cursor to wherever it was before
// the call (typically just past the already-consumed quantifier).
func (p *Parser) reparseIter(start, end, iter int) frag {
	saved := p.i
	savedOverride := p.iterOverride
	it := iter
	p.iterOverride = &it
	p.i = start
	a := p.parseAtom()
	p.i = saved
	p.iterOverride = savedOverride
	return a
}

package parser

import (
	"github.com/fsmregex/fsmregex/charset"
	"github.com/fsmregex/fsmregex/rxerr"
)

// parseEscape parses one escape sequence starting at the escape
// character (Options.EscapeChar) and returns the frag it denotes: a
// character-class leaf for \d \s \w and friends, an anchor leaf for
// \A \Z \b \B \< \>, or a literal byte leaf for everything else.
// \Q...\E is handled as a run of literal-byte leaves concatenated
// together. The 'q' modifier does not give '"' any quoting role: a
// double quote is parsed as an ordinary literal byte.
func (p *Parser) parseEscape() frag {
	start := p.i
	p.i++ // consume escape char
	if p.i >= len(p.src) {
		p.fail(rxerr.InvalidEscape, start, "trailing escape character")
		return emptyFrag()
	}
	c := p.src[p.i]

	if cs, ok := classSetFor(c); ok {
		p.i++
		return p.newLeaf(cs)
	}
	if meta, ok := anchorMetaFor(c); ok {
		p.i++
		return p.newAnchorLeaf(meta)
	}

	switch c {
	case 'Q':
		p.i++
		return p.parseQuotedRun(start)
	case 'p', 'P':
		return p.parseUnicodeProperty(start, c == 'P')
	case 'i', 'j', 'k':
		p.i++
		return p.newAnchorLeaf(indentMetaFor(c))
	default:
		b, ok := p.decodeEscapeByte(start)
		if !ok {
			return emptyFrag()
		}
		return p.literalLeaf(b)
	}
}

// classSetFor maps a single escape letter to the byte class it denotes
// when that class spans more than one byte value. Returns ok=false for
// escapes that are not themselves a class (single literal byte,
// anchor, or multi-char construct).
func classSetFor(c byte) (charset.CharSet, bool) {
	switch c {
	case 'd':
		return classFromPredicate(func(b byte) bool { return b >= '0' && b <= '9' }), true
	case 'D':
		return complementOf(func(b byte) bool { return b >= '0' && b <= '9' }), true
	case 's':
		return classFromPredicate(isSpace), true
	case 'S':
		return complementOf(isSpace), true
	case 'w':
		return classFromPredicate(isWordByte), true
	case 'W':
		return complementOf(isWordByte), true
	case 'h':
		return classFromPredicate(func(b byte) bool { return b == ' ' || b == '\t' }), true
	case 'H':
		return complementOf(func(b byte) bool { return b == ' ' || b == '\t' }), true
	case 'l':
		return classFromPredicate(func(b byte) bool { return b >= 'a' && b <= 'z' }), true
	case 'u':
		return classFromPredicate(func(b byte) bool { return b >= 'A' && b <= 'Z' }), true
	}
	return charset.CharSet{}, false
}

func complementOf(pred func(byte) bool) charset.CharSet {
	cs := classFromPredicate(pred)
	cs.Flip256()
	return cs
}

// anchorMetaFor maps an escape letter to its zero-width meta symbol.
func anchorMetaFor(c byte) (int, bool) {
	switch c {
	case 'A':
		return charset.BOB, true
	case 'Z':
		return charset.EOB, true
	case 'b':
		return charset.BWB, true
	case 'B':
		return charset.NWB, true
	case '<':
		return charset.BWB, true
	case '>':
		return charset.EWB, true
	}
	return 0, false
}

func indentMetaFor(c byte) int {
	switch c {
	case 'i':
		return charset.IND
	case 'j':
		return charset.UND
	default: // 'k'
		return charset.DED
	}
}

// decodeEscapeByte decodes a single byte-valued escape (\0nnn, \xHH,
// \cX control-char, or a literal escaped punctuation character) and
// advances the cursor past it. \u is not decoded here: it is the
// uppercase class handled by classSetFor.
func (p *Parser) decodeEscapeByte(escStart int) (byte, bool) {
	c := p.src[p.i]
	switch c {
	case 'n':
		p.i++
		return '\n', true
	case 't':
		p.i++
		return '\t', true
	case 'r':
		p.i++
		return '\r', true
	case 'f':
		p.i++
		return '\f', true
	case 'v':
		p.i++
		return '\v', true
	case 'a':
		p.i++
		return '\a', true
	case 'e':
		p.i++
		return 0x1b, true
	case '0':
		p.i++
		v := 0
		for n := 0; n < 3 && p.i < len(p.src) && p.src[p.i] >= '0' && p.src[p.i] <= '7'; n++ {
			v = v*8 + int(p.src[p.i]-'0')
			p.i++
		}
		return byte(v), true
	case 'x':
		p.i++
		return p.decodeHexByte(escStart, 2)
	case 'c':
		p.i++
		if p.i >= len(p.src) {
			p.fail(rxerr.InvalidEscape, escStart, "truncated \\c control escape")
			return 0, false
		}
		ctrl := p.src[p.i]
		p.i++
		return ctrl & 0x1f, true
	default:
		p.i++
		return c, true
	}
}

// decodeHexByte reads up to width hex digits and returns the low byte
// of the resulting value. Its only caller is \xHH, with width 2.
func (p *Parser) decodeHexByte(escStart, width int) (byte, bool) {
	v := 0
	n := 0
	for n < width && p.i < len(p.src) && isHexDigit(p.src[p.i]) {
		v = v*16 + hexVal(p.src[p.i])
		p.i++
		n++
	}
	if n == 0 {
		p.fail(rxerr.InvalidEscape, escStart, "malformed hex escape")
		return 0, false
	}
	return byte(v), true
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	default:
		return int(b-'A') + 10
	}
}

// parseQuotedRun parses the literal run between \Q and \E (or to end
// of source if \E is missing), returning the concatenation of one
// literal leaf per byte.
func (p *Parser) parseQuotedRun(escStart int) frag {
	out := emptyFrag()
	first := true
	for p.i < len(p.src) {
		if p.opt.EscapeChar != 0 && p.i+1 < len(p.src) && p.src[p.i] == p.opt.EscapeChar && p.src[p.i+1] == 'E' {
			p.i += 2
			return out
		}
		leaf := p.literalLeaf(p.src[p.i])
		p.i++
		if first {
			out = leaf
			first = false
		} else {
			out = p.concat(out, leaf)
		}
	}
	_ = escStart
	return out
}

// parseUnicodeProperty parses \p{Name} / \P{Name}, expanding a small
// fixed table of ASCII-range Unicode property names to byte ranges
// (this engine is byte-oriented; properties that only make sense over
// full code points collapse to their ASCII subset).
func (p *Parser) parseUnicodeProperty(escStart int, negate bool) frag {
	p.i++ // consume 'p' or 'P'
	if p.i >= len(p.src) || p.src[p.i] != '{' {
		p.fail(rxerr.InvalidEscape, escStart, "expected '{' after \\p")
		return emptyFrag()
	}
	p.i++
	nameStart := p.i
	for p.i < len(p.src) && p.src[p.i] != '}' {
		p.i++
	}
	if p.i >= len(p.src) {
		p.fail(rxerr.InvalidEscape, escStart, "unterminated \\p{...}")
		return emptyFrag()
	}
	name := p.src[nameStart:p.i]
	p.i++ // consume '}'

	pred, ok := unicodeProps[name]
	if !ok {
		p.fail(rxerr.InvalidEscape, escStart, "unknown Unicode property "+name)
		return emptyFrag()
	}
	cs := classFromPredicate(pred)
	if negate {
		cs.Flip256()
	}
	return p.newLeaf(cs)
}

var unicodeProps = map[string]func(byte) bool{
	"L":     isAlpha,
	"Lu":    func(b byte) bool { return b >= 'A' && b <= 'Z' },
	"Ll":    func(b byte) bool { return b >= 'a' && b <= 'z' },
	"N":     func(b byte) bool { return b >= '0' && b <= '9' },
	"Nd":    func(b byte) bool { return b >= '0' && b <= '9' },
	"P":     isPunct,
	"Z":     isSpace,
	"Zs":    func(b byte) bool { return b == ' ' },
	"C":     func(b byte) bool { return b < 0x20 || b == 0x7f },
	"ASCII": func(b byte) bool { return b < 0x80 },
	"Alpha": posixClasses["alpha"],
	"Digit": posixClasses["digit"],
	"Alnum": posixClasses["alnum"],
	"Upper": posixClasses["upper"],
	"Lower": posixClasses["lower"],
	"Space": posixClasses["space"],
	"Punct": posixClasses["punct"],
	"Cntrl": posixClasses["cntrl"],
}

// scanClassEscape decodes a single-byte escape inside a bracket
// expression, sharing the byte-valued decode table with top-level
// escapes but never producing a multi-byte class (callers check
// classSetFor first for \d \s \w and friends).
func (p *Parser) scanClassEscape(groupStart int) (byte, bool) {
	p.i++ // consume escape char
	if p.i >= len(p.src) {
		p.fail(rxerr.InvalidEscape, groupStart, "trailing escape in bracket expression")
		return 0, false
	}
	return p.decodeEscapeByte(groupStart)
}

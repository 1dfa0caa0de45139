package parser

import (
	"github.com/fsmregex/fsmregex/charset"
	"github.com/fsmregex/fsmregex/rxerr"
)

// posixClasses maps POSIX bracket class names to byte predicates, per
// the standard POSIX.1 character class table RE/flex-family engines
// expose via [:name:] inside brackets.
var posixClasses = map[string]func(byte) bool{
	"alpha":  func(b byte) bool { return isAlpha(b) },
	"digit":  func(b byte) bool { return b >= '0' && b <= '9' },
	"alnum":  func(b byte) bool { return isAlpha(b) || (b >= '0' && b <= '9') },
	"upper":  func(b byte) bool { return b >= 'A' && b <= 'Z' },
	"lower":  func(b byte) bool { return b >= 'a' && b <= 'z' },
	"space":  func(b byte) bool { return isSpace(b) },
	"blank":  func(b byte) bool { return b == ' ' || b == '\t' },
	"punct":  func(b byte) bool { return isPunct(b) },
	"cntrl":  func(b byte) bool { return b < 0x20 || b == 0x7f },
	"print":  func(b byte) bool { return b >= 0x20 && b < 0x7f },
	"graph":  func(b byte) bool { return b > 0x20 && b < 0x7f },
	"xdigit": func(b byte) bool { return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') },
	"ascii":  func(b byte) bool { return b < 0x80 },
	"word":   func(b byte) bool { return isWordByte(b) },
}

func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
func isWordByte(b byte) bool { return isAlpha(b) || (b >= '0' && b <= '9') || b == '_' }
func isPunct(b byte) bool {
	return b >= 0x20 && b < 0x7f && !isAlpha(b) && !(b >= '0' && b <= '9') && b != ' '
}

func classFromPredicate(pred func(byte) bool) charset.CharSet {
	var cs charset.CharSet
	for b := 0; b < 256; b++ {
		if pred(byte(b)) {
			cs.Set(byte(b))
		}
	}
	return cs
}

// parseClass parses a bracket expression "[...]" starting at the
// current '['. It supports negation ('^'), ranges ("a-z"), embedded
// POSIX classes ("[:alpha:]"), and (unless Options.NoBracketEscapes)
// the same escape vocabulary as escape.go. A "&&" separator between
// class terms (as seen in RE/flex's bracket expressions) is accepted.
func (p *Parser) parseClass() (charset.CharSet, bool) {
	start := p.i
	p.i++ // consume '['
	negate := false
	if p.i < len(p.src) && p.src[p.i] == '^' {
		negate = true
		p.i++
	}

	var result charset.CharSet
	first := true
	haveResult := false

	for {
		if p.i >= len(p.src) {
			p.failClass(start, "unterminated bracket expression")
			return charset.CharSet{}, false
		}
		if p.src[p.i] == ']' && !first {
			p.i++
			break
		}
		first = false

		if p.src[p.i] == '[' && p.i+1 < len(p.src) && p.src[p.i+1] == ':' {
			cs, ok := p.parsePosixClass(start)
			if !ok {
				return charset.CharSet{}, false
			}
			result, haveResult = p.mergeClassTerm(result, haveResult, cs)
			continue
		}

		if p.i+1 < len(p.src) && p.src[p.i] == '&' && p.src[p.i+1] == '&' {
			p.i += 2
			continue
		}

		if !p.opt.NoBracketEscapes && p.opt.EscapeChar != 0 && p.src[p.i] == p.opt.EscapeChar && p.i+1 < len(p.src) {
			if cs, ok := classSetFor(p.src[p.i+1]); ok {
				p.i += 2
				result, haveResult = p.mergeClassTerm(result, haveResult, cs)
				continue
			}
		}

		lo, ok := p.classAtomByte(start)
		if !ok {
			return charset.CharSet{}, false
		}
		if p.i+1 < len(p.src) && p.src[p.i] == '-' && p.src[p.i+1] != ']' {
			p.i++
			hi, ok2 := p.classAtomByte(start)
			if !ok2 {
				return charset.CharSet{}, false
			}
			result, haveResult = p.mergeClassTerm(result, haveResult, charset.FromRange(lo, hi))
		} else {
			result, haveResult = p.mergeClassTerm(result, haveResult, charset.FromByte(lo))
		}
	}

	if !haveResult {
		p.failClass(start, "empty character class")
		return charset.CharSet{}, false
	}
	if negate {
		result.Flip256()
	}
	if p.has(FlagCaseInsensitive) {
		result = expandCaseInsensitive(result)
	}
	return result, true
}

// mergeClassTerm ORs successive class terms together. The "&&"
// separator between terms is accepted and skipped but not yet given
// intersection semantics distinct from plain concatenation of terms.
func (p *Parser) mergeClassTerm(acc charset.CharSet, have bool, term charset.CharSet) (charset.CharSet, bool) {
	if !have {
		return term, true
	}
	return charset.Union(acc, term), true
}

func (p *Parser) parsePosixClass(groupStart int) (charset.CharSet, bool) {
	begin := p.i
	p.i += 2 // consume "[:"
	nameStart := p.i
	for p.i < len(p.src) && p.src[p.i] != ':' {
		p.i++
	}
	name := p.src[nameStart:p.i]
	if p.i+1 >= len(p.src) || p.src[p.i] != ':' || p.src[p.i+1] != ']' {
		p.i = begin
		p.failClass(groupStart, "malformed POSIX class")
		return charset.CharSet{}, false
	}
	p.i += 2 // consume ":]"
	pred, ok := posixClasses[name]
	if !ok {
		p.failClass(groupStart, "unknown POSIX class :"+name+":")
		return charset.CharSet{}, false
	}
	return classFromPredicate(pred), true
}

// classAtomByte reads one literal byte or escape inside a bracket
// expression, advancing the cursor past it.
func (p *Parser) classAtomByte(groupStart int) (byte, bool) {
	c := p.src[p.i]
	if !p.opt.NoBracketEscapes && p.opt.EscapeChar != 0 && c == p.opt.EscapeChar {
		return p.scanClassEscape(groupStart)
	}
	p.i++
	return c, true
}

func (p *Parser) failClass(start int, detail string) {
	p.fail(rxerr.InvalidClass, start, detail)
}

func expandCaseInsensitive(cs charset.CharSet) charset.CharSet {
	out := cs
	for b := byte('a'); b <= 'z'; b++ {
		if cs.Test(b) {
			out.Set(b - 'a' + 'A')
		}
	}
	for b := byte('A'); b <= 'Z'; b++ {
		if cs.Test(b) {
			out.Set(b - 'A' + 'a')
		}
	}
	return out
}

package vm

import "github.com/fsmregex/fsmregex/input"

// isWordByte matches the parser's own \w definition, so a \b anchor
// compiled by the parser and the boundary this package computes at
// match time agree on where a word starts and ends.
func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// wordContext reports whether the byte immediately before and at the
// cursor are word bytes, treating past either end of the buffer as
// non-word.
func wordContext(in *input.Input) (prevWord, nextWord bool) {
	if b, ok := in.PeekPrev(); ok {
		prevWord = isWordByte(b)
	}
	if b, ok := in.Peek(); ok {
		nextWord = isWordByte(b)
	}
	return prevWord, nextWord
}

// Hooks supplies the truth value of the three meta predicates this
// package cannot compute on its own: indentation tracking needs a
// column counter and an indent-stops stack, which live with the driver
// above the VM. A nil hook is treated as always-false.
type Hooks struct {
	Indent func() bool
	Undent func() bool
	Dedent func() bool
}

func (h *Hooks) indent() bool { return h != nil && h.Indent != nil && h.Indent() }
func (h *Hooks) undent() bool { return h != nil && h.Undent != nil && h.Undent() }
func (h *Hooks) dedent() bool { return h != nil && h.Dedent != nil && h.Dedent() }

// metaTag values, matching the 1-based offset from charset.MetaBase
// that asm's assembler encodes into a meta GOTO's lo byte.
const (
	metaNWB = 1
	metaNWE = 2
	metaBWB = 3
	metaEWB = 4
	metaBWE = 5
	metaEWE = 6
	metaBOL = 7
	metaEOL = 8
	metaBOB = 9
	metaEOB = 10
	metaUND = 11
	metaIND = 12
	metaDED = 13
)

// testMeta reports whether the zero-width predicate tag identifies is
// true at the cursor's current position.
//
// Only \b (-> BWB), \B (-> NWB) and \< \> (-> BWB, EWB) are ever
// produced by the parser's escape layer today, so BWB is tested as
// "a word starts here" (covers \b and \<) and EWB as "a word ends
// here" (covers \>); NWB is BWB's complement. BWE/EWE/NWE are not
// reachable from any escape yet, so they are given the natural
// two-directional reading of the same boundary test, kept as distinct
// ABI slots for whatever future construct wants a direction-agnostic
// \b.
func testMeta(tag byte, in *input.Input, hooks *Hooks) bool {
	switch tag {
	case metaBOL:
		return in.AtBOL()
	case metaEOL:
		return in.AtEOL()
	case metaBOB:
		return in.AtBOB()
	case metaEOB:
		return in.AtEOB()
	case metaIND:
		return hooks.indent()
	case metaUND:
		return hooks.undent()
	case metaDED:
		return hooks.dedent()
	case metaBWB, metaEWB, metaBWE, metaEWE, metaNWB, metaNWE:
		prevWord, nextWord := wordContext(in)
		switch tag {
		case metaBWB:
			return !prevWord && nextWord
		case metaEWB:
			return prevWord && !nextWord
		case metaBWE, metaEWE:
			return prevWord != nextWord
		case metaNWB:
			return prevWord || !nextWord
		case metaNWE:
			return prevWord == nextWord
		}
	}
	return false
}

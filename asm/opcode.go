// Package asm assembles a built DFA (package dfa) into a flat program of
// 32-bit opcode words, the encoding the matcher VM (package vm)
// interprets one word at a time.
//
// Every word is tag-discriminated by its top byte. A byte-range GOTO
// uses its own [lo, hi] pair as the tag: lo <= hi always holds for a
// genuine compacted byte range, so the handful of reserved top-byte
// values below are never produced by one and are always unambiguous.
package asm

import "github.com/fsmregex/fsmregex/internal/conv"

// Word is one 32-bit opcode.
type Word uint32

const (
	// tagLong marks a LONG word: the real 24-bit goto target overflowed
	// the 16-bit field of the preceding GOTO.
	tagLong byte = 0xFF
	// tagTake marks a TAKE(k) word: k is a 24-bit accept index.
	tagTake byte = 0xFE
	// tagTail marks a TAIL(k) word: k is a 24-bit lookahead id.
	tagTail byte = 0xFC
	// tagHead marks a HEAD(k) word: k is a 24-bit lookahead id.
	tagHead byte = 0xFB

	// wordRedo is the exact REDO sentinel word.
	wordRedo Word = 0xFD000000
	// wordHalt is the exact HALT sentinel word: a full-range GOTO to the
	// dead target, used verbatim as a dead state's only opcode.
	wordHalt Word = 0x00FFFFFF

	// gotoHalt is the GOTO target field meaning "no next state".
	gotoHalt uint16 = 0xFFFF
	// gotoLong is the GOTO target field meaning "see the LONG word that
	// immediately follows this one for the real target".
	gotoLong uint16 = 0xFFFE

	// metaHi is the hi byte of a meta-class GOTO: always zero, which is
	// what lets a meta GOTO (lo in 1..14, hi=0) be told apart from any
	// real byte range (which always has lo <= hi).
	metaHi byte = 0x00

	// MaxAccept, MaxGoto and MaxLookahead are the 24-bit-field ceilings
	// this encoding enforces; exceeding any of them is exceeds_limits.
	MaxAccept    = 0xFDFFFF
	MaxGoto      = 0xFEFFFF
	MaxLookahead = 0xFAFFFF
)

func gotoWord(lo, hi byte, target uint16) Word {
	return Word(uint32(lo)<<24 | uint32(hi)<<16 | uint32(target))
}

func metaWord(metaTag byte, target uint16) Word {
	return gotoWord(metaTag, metaHi, target)
}

func longWord(target uint32) Word {
	return Word(uint32(tagLong)<<24 | (target & 0x00FFFFFF))
}

func takeWord(accept int) Word {
	return Word(uint32(tagTake)<<24 | (conv.IntToUint32(accept) & 0x00FFFFFF))
}

func tailWord(id int) Word {
	return Word(uint32(tagTail)<<24 | (conv.IntToUint32(id) & 0x00FFFFFF))
}

func headWord(id int) Word {
	return Word(uint32(tagHead)<<24 | (conv.IntToUint32(id) & 0x00FFFFFF))
}

// IsLong reports whether w is a LONG word and returns its 24-bit payload.
func (w Word) IsLong() (target uint32, ok bool) {
	if byte(w>>24) == tagLong {
		return uint32(w) & 0x00FFFFFF, true
	}
	return 0, false
}

// IsTake reports whether w is a TAKE word and returns its accept index.
func (w Word) IsTake() (accept int, ok bool) {
	if w == wordRedo {
		return 0, false
	}
	if byte(w>>24) == tagTake {
		return int(uint32(w) & 0x00FFFFFF), true
	}
	return 0, false
}

// IsRedo reports whether w is the REDO sentinel.
func (w Word) IsRedo() bool { return w == wordRedo }

// IsHalt reports whether w is the HALT sentinel.
func (w Word) IsHalt() bool { return w == wordHalt }

// IsTail reports whether w is a TAIL word and returns its lookahead id.
func (w Word) IsTail() (id int, ok bool) {
	if byte(w>>24) == tagTail {
		return int(uint32(w) & 0x00FFFFFF), true
	}
	return 0, false
}

// IsHead reports whether w is a HEAD word and returns its lookahead id.
func (w Word) IsHead() (id int, ok bool) {
	if byte(w>>24) == tagHead {
		return int(uint32(w) & 0x00FFFFFF), true
	}
	return 0, false
}

// IsGoto reports whether w is a byte-range or meta GOTO and decodes its
// fields. A meta GOTO has hi == 0 and lo in [1, 14]; IsMeta distinguishes
// the two for the caller.
func (w Word) IsGoto() (lo, hi byte, target uint16, ok bool) {
	lo = byte(w >> 24)
	hi = byte(w >> 16)
	target = uint16(w)
	switch lo {
	case tagLong, tagTake, tagTail, tagHead:
		return 0, 0, 0, false
	}
	if w == wordRedo {
		return 0, 0, 0, false
	}
	if hi == 0 && lo >= 1 && lo <= 14 {
		return lo, hi, target, true // meta GOTO
	}
	if lo > hi {
		return 0, 0, 0, false
	}
	return lo, hi, target, true
}

// IsMeta reports whether a decoded GOTO (lo, hi) from IsGoto is a meta
// transition rather than a byte range.
func IsMeta(lo, hi byte) bool { return hi == 0 && lo >= 1 && lo <= 14 }

// ResolveGoto decodes w as a GOTO word, consulting long (the word
// immediately following it in the program) only when w's target field
// is the LONG placeholder. It reports how many words this edge
// occupies (1, or 2 when long was consumed) so the caller can skip
// over it without knowing the LONG encoding itself, and target = -1
// for a GOTO whose target is the dead sentinel rather than a real
// state, which is what every gap a state's byte range left uncovered
// resolves to.
func (w Word) ResolveGoto(long Word) (lo, hi byte, target, words int, ok bool) {
	l, h, t, isGoto := w.IsGoto()
	if !isGoto {
		return 0, 0, 0, 0, false
	}
	switch t {
	case gotoLong:
		real, _ := long.IsLong()
		return l, h, int(real), 2, true
	case gotoHalt:
		return l, h, -1, 1, true
	default:
		return l, h, int(t), 1, true
	}
}

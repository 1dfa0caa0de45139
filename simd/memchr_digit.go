package simd

import (
	"encoding/binary"
	"math/bits"
)

// MemchrDigit returns the index of the first ASCII digit [0-9] in
// haystack, or -1 if none is present. predictor.DigitPrefilter's Find
// uses this for a pattern whose start state tests an ASCII-digit
// subset class but carries no literal byte — an IP-address alternation
// or a bare `[0-9]+`, for example — since rex.Compile can still narrow
// the search to digit positions even without a literal to drive
// Memchr/Teddy.
//
// Uses the same SWAR technique as Memchr, but a range check rather
// than an equality check: eight bytes are tested against ['0'-'9'] in
// one pass instead of one byte at a time. No AVX2 path exists, for the
// same reason as IsASCII and Memchr — no assembly backs the candidate
// vector routine anywhere in this codebase's lineage.
func MemchrDigit(haystack []byte) int {
	return memchrDigitGeneric(haystack)
}

// MemchrDigitAt returns the index of the first ASCII digit at or after
// position at in haystack, or -1 if at is out of bounds or no digit
// follows it.
func MemchrDigitAt(haystack []byte, at int) int {
	if at < 0 || at >= len(haystack) {
		return -1
	}
	pos := memchrDigitGeneric(haystack[at:])
	if pos < 0 {
		return -1
	}
	return pos + at
}

func memchrDigitGeneric(haystack []byte) int {
	n := len(haystack)
	if n < 8 {
		for i := 0; i < n; i++ {
			if isDigitByte(haystack[i]) {
				return i
			}
		}
		return -1
	}

	i := 0
	for ; i+8 <= n; i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		if mask := digitMask(chunk); mask != 0 {
			return i + bits.TrailingZeros64(mask)/8
		}
	}
	for ; i < n; i++ {
		if isDigitByte(haystack[i]) {
			return i
		}
	}
	return -1
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

// digitMask returns, for each byte of chunk in ['0'-'9'], that byte's
// high bit set and every other bit clear; otherwise that byte is zero.
//
// The range checks add a per-byte bias to the low seven bits of each
// byte only, so no carry crosses into the next byte; a byte whose own
// high bit is set is never a digit and is cleared at the end.
func digitMask(chunk uint64) uint64 {
	const lo8 = 0x0101010101010101
	const hi8 = 0x8080808080808080

	low7 := chunk &^ hi8
	ge0 := (low7 + lo8*(0x80-'0')) & hi8   // low7 >= '0'
	gt9 := (low7 + lo8*(0x80-'9'-1)) & hi8 // low7 > '9'
	return ge0 &^ gt9 &^ chunk
}

package simd

import (
	"encoding/binary"
	"math/bits"
)

// Memchr returns the index of the first instance of needle in haystack,
// or -1 if needle is not present. predictor's memchrPrefilter uses this
// for a pattern whose literal.Seq recovered exactly one single-byte
// literal.
//
// Uses the SWAR (SIMD Within A Register) technique: eight bytes are
// compared against needle in one uint64 operation rather than one byte
// at a time. There is no AVX2 path — the candidate vector routine for
// this search never had assembly behind it in this codebase's lineage,
// so this stays pure Go on every platform, same as IsASCII.
func Memchr(haystack []byte, needle byte) int {
	n := len(haystack)
	if n == 0 {
		return -1
	}
	if n < 8 {
		for i := 0; i < n; i++ {
			if haystack[i] == needle {
				return i
			}
		}
		return -1
	}

	needleMask := uint64(needle) * 0x0101010101010101
	i := 0
	for ; i+8 <= n; i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		if pos, ok := firstZeroByte(chunk ^ needleMask); ok {
			return i + pos
		}
	}
	for ; i < n; i++ {
		if haystack[i] == needle {
			return i
		}
	}
	return -1
}

// Memchr2 returns the index of the first instance of either needle1 or
// needle2 in haystack, or -1 if neither is present. predictor's
// selectPrefilter uses this for a 2-alternative literal.Seq where every
// branch is a single byte (e.g. `a|b`), which Memchr alone cannot
// cover and which is too small a haystack pattern to justify building
// a Teddy fingerprint for.
func Memchr2(haystack []byte, needle1, needle2 byte) int {
	n := len(haystack)
	if n == 0 {
		return -1
	}
	if n < 8 {
		for i := 0; i < n; i++ {
			if haystack[i] == needle1 || haystack[i] == needle2 {
				return i
			}
		}
		return -1
	}

	mask1 := uint64(needle1) * 0x0101010101010101
	mask2 := uint64(needle2) * 0x0101010101010101
	i := 0
	for ; i+8 <= n; i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		z1, _ := firstZeroByteMask(chunk ^ mask1)
		z2, _ := firstZeroByteMask(chunk ^ mask2)
		if hasZero := z1 | z2; hasZero != 0 {
			return i + bits.TrailingZeros64(hasZero)/8
		}
	}
	for ; i < n; i++ {
		if haystack[i] == needle1 || haystack[i] == needle2 {
			return i
		}
	}
	return -1
}

// Memchr3 returns the index of the first instance of needle1, needle2,
// or needle3 in haystack, or -1 if none are present. Covers the
// 3-alternative sibling of Memchr2's case (e.g. `a|b|c`).
func Memchr3(haystack []byte, needle1, needle2, needle3 byte) int {
	n := len(haystack)
	if n == 0 {
		return -1
	}
	if n < 8 {
		for i := 0; i < n; i++ {
			b := haystack[i]
			if b == needle1 || b == needle2 || b == needle3 {
				return i
			}
		}
		return -1
	}

	mask1 := uint64(needle1) * 0x0101010101010101
	mask2 := uint64(needle2) * 0x0101010101010101
	mask3 := uint64(needle3) * 0x0101010101010101
	i := 0
	for ; i+8 <= n; i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		z1, _ := firstZeroByteMask(chunk ^ mask1)
		z2, _ := firstZeroByteMask(chunk ^ mask2)
		z3, _ := firstZeroByteMask(chunk ^ mask3)
		if hasZero := z1 | z2 | z3; hasZero != 0 {
			return i + bits.TrailingZeros64(hasZero)/8
		}
	}
	for ; i < n; i++ {
		b := haystack[i]
		if b == needle1 || b == needle2 || b == needle3 {
			return i
		}
	}
	return -1
}

// MemchrPair finds the first position i where haystack[i] == byte1 and
// haystack[i+offset] == byte2, or -1 if no such position exists.
// predictor's memchrPairPrefilter uses this for a literal exactly two bytes
// long: checking both ends at their fixed distance apart is far more
// selective than a single-byte Memchr and needs no Teddy fingerprint
// machinery for a literal this short.
func MemchrPair(haystack []byte, byte1, byte2 byte, offset int) int {
	n := len(haystack)
	if offset < 0 || n <= offset {
		return -1
	}
	if offset == 0 {
		if byte1 != byte2 {
			return -1
		}
		return Memchr(haystack, byte1)
	}
	if n < 8+offset {
		for i := 0; i+offset < n; i++ {
			if haystack[i] == byte1 && haystack[i+offset] == byte2 {
				return i
			}
		}
		return -1
	}

	mask1 := uint64(byte1) * 0x0101010101010101
	mask2 := uint64(byte2) * 0x0101010101010101
	i := 0
	for ; i+8+offset <= n; i += 8 {
		chunk1 := binary.LittleEndian.Uint64(haystack[i:])
		chunk2 := binary.LittleEndian.Uint64(haystack[i+offset:])
		z1, _ := firstZeroByteMask(chunk1 ^ mask1)
		z2, _ := firstZeroByteMask(chunk2 ^ mask2)
		if hasZero := z1 & z2; hasZero != 0 {
			return i + bits.TrailingZeros64(hasZero)/8
		}
	}
	for ; i+offset < n; i++ {
		if haystack[i] == byte1 && haystack[i+offset] == byte2 {
			return i
		}
	}
	return -1
}

// firstZeroByte reports the position of the first zero byte in v and
// whether one exists, using the Hacker's Delight zero-byte-detection
// trick: subtracting 1 from each byte borrows out of a zero byte, and
// ANDing with the complement and the high-bit mask isolates it.
func firstZeroByte(v uint64) (int, bool) {
	mask, ok := firstZeroByteMask(v)
	if !ok {
		return 0, false
	}
	return bits.TrailingZeros64(mask) / 8, true
}

func firstZeroByteMask(v uint64) (uint64, bool) {
	const lo8 = 0x0101010101010101
	const hi8 = 0x8080808080808080
	mask := (v - lo8) & ^v & hi8
	return mask, mask != 0
}

package simd

import "encoding/binary"

// IsASCII reports whether every byte in data has its high bit clear
// (values 0x00-0x7F). input.Decode uses this to skip an x/text
// transform entirely on an all-ASCII buffer in any ASCII-superset
// source encoding, since the decode would be the identity transform
// anyway.
//
// Uses the SWAR (SIMD Within A Register) technique: eight bytes are
// packed into a uint64 and checked against the high-bit mask in one
// instruction, rather than branching on one byte at a time. There is
// no AVX2 path here, as in the rest of this package (Memchr and Memmem
// are SWAR Go too): this stays pure Go on every platform.
func IsASCII(data []byte) bool {
	return isASCIIGeneric(data)
}

// isASCIIGeneric is IsASCII's SWAR implementation, shared by every
// platform.
func isASCIIGeneric(data []byte) bool {
	n := len(data)
	if n < 8 {
		for i := 0; i < n; i++ {
			if data[i] >= 0x80 {
				return false
			}
		}
		return true
	}

	const hiBits = uint64(0x8080808080808080)
	i := 0
	for ; i+8 <= n; i += 8 {
		if binary.LittleEndian.Uint64(data[i:])&hiBits != 0 {
			return false
		}
	}
	for ; i < n; i++ {
		if data[i] >= 0x80 {
			return false
		}
	}
	return true
}

// CountNonASCII returns the number of bytes in data with the high bit
// set. input.Decode uses this to size the output buffer for the
// byte-by-byte x/text transform of the non-ASCII tail of an otherwise
// ASCII buffer.
func CountNonASCII(data []byte) int {
	count := 0
	for _, b := range data {
		if b >= 0x80 {
			count++
		}
	}
	return count
}

// FirstNonASCII returns the index of the first byte in data with the
// high bit set, or -1 if data is entirely ASCII. input.Decode uses
// this to find where the identity-copyable ASCII prefix of a buffer
// ends and the x/text transform needs to take over.
func FirstNonASCII(data []byte) int {
	for i, b := range data {
		if b >= 0x80 {
			return i
		}
	}
	return -1
}

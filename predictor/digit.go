// Package predictor builds pre-DFA candidate filters.
//
// This file implements DigitPrefilter, the fallback for patterns whose
// start state tests an ASCII-digit subset class rather than a concrete
// literal byte — triex's RecoverPrefixes only recovers literals, so an
// alternation like an IP-address pattern (every branch starts with a
// different but still-digit-only class) yields an empty literal.Seq and
// none of selectPrefilter's literal-driven tiers apply. rex.Compile
// falls back to DigitPrefilter in exactly that case.

package predictor

import "github.com/fsmregex/fsmregex/simd"

// DigitPrefilter scans ahead for the next ASCII digit instead of a
// literal byte string. rex.Compile constructs one when the start
// state's leaves are all digit-subset classes and triex recovered no
// usable literal prefix/suffix — an IP-address alternation or a bare
// `[0-9]+` are both this shape.
//
// This prefilter is NOT complete - finding a digit is only a candidate
// position. The full regex must be verified at that position.
type DigitPrefilter struct{}

// NewDigitPrefilter creates a prefilter for patterns whose start state
// tests only ASCII digits [0-9] but carries no literal byte to search
// for — see rex.Compile's fallback path.
func NewDigitPrefilter() *DigitPrefilter {
	return &DigitPrefilter{}
}

// Find returns the index of the first digit at or after 'start'.
// Returns -1 if no digit is found in the remaining haystack.
//
// The scan is simd.MemchrDigitAt, a portable SWAR loop that tests
// eight bytes per step.
//
// Parameters:
//   - haystack: the byte slice to search
//   - start: the starting position (inclusive)
//
// Returns:
//   - index >= start if a digit candidate is found
//   - -1 if no digit exists at or after start
func (p *DigitPrefilter) Find(haystack []byte, start int) int {
	return simd.MemchrDigitAt(haystack, start)
}

// IsComplete returns false because finding a digit is only a candidate position.
// The full regex must be verified at that position to confirm a match.
//
// Unlike literal prefilters (Memchr, Memmem) which can sometimes guarantee
// a match, digit prefiltering only narrows the search space - the actual
// pattern may still fail to match at the digit position.
func (p *DigitPrefilter) IsComplete() bool {
	return false
}

// LiteralLen returns 0 because DigitPrefilter doesn't match fixed-length literals.
//
// The prefilter finds digit characters, but the actual match length depends
// on the full regex pattern being verified.
func (p *DigitPrefilter) LiteralLen() int {
	return 0
}

// HeapBytes returns 0 because DigitPrefilter uses no heap allocation.
//
// The prefilter is stateless and relies on simd.MemchrDigitAt which
// operates directly on the input slice without additional allocations.
func (p *DigitPrefilter) HeapBytes() int {
	return 0
}

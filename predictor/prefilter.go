// Package predictor builds pre-DFA candidate filters: given the literal
// prefixes/suffixes the triex package recovers from a pattern's
// leading/trailing positions, it picks the cheapest accelerator that
// can skip-scan the input before the DFA ever runs.
//
// Selection order, per literal count and shape:
//   - Single byte → memchr prefilter (SIMD byte search)
//   - Single substring → memmem prefilter (SIMD substring search)
//   - 2-32 literals, min length ≥ 3 → Teddy prefilter (multi-literal)
//   - 33-64 literals, min length ≥ 3 → Fat Teddy prefilter
//   - Any other set of more than 8 literals → an Aho-Corasick automaton
//
// Example usage:
//
//	seq := literal.NewSeq(literal.New([]byte("hello"), true), literal.New([]byte("world"), true))
//	builder := predictor.NewBuilder(seq, nil)
//	pf := builder.Build()
//
//	haystack := []byte("foo hello bar world baz")
//	pos := pf.Find(haystack, 0)
//	// pos == 4 (position of "hello")
package predictor

import (
	"github.com/fsmregex/fsmregex/literal"
	"github.com/fsmregex/fsmregex/simd"
)

// Prefilter is used to quickly find candidate match positions before running
// the full regex engine.
//
// The prefilter scans the haystack for literals extracted from the regex pattern.
// When a literal is found, that position is returned as a candidate. The regex
// engine then verifies if a full match exists at that position.
//
// Key methods:
//   - Find: returns the next candidate position
//   - IsComplete: indicates if prefilter match is sufficient (no verification needed)
//   - HeapBytes: returns memory usage for profiling
type Prefilter interface {
	// Find returns the index of the first candidate match starting at or after
	// 'start', or -1 if no candidate is found.
	//
	// A candidate match means a position where one of the prefilter literals
	// was found. This does NOT guarantee a full regex match - the caller must
	// verify the match using the full regex engine (unless IsComplete() is true).
	//
	// Parameters:
	//   haystack - the byte buffer to search
	//   start - the starting position (must be >= 0 and <= len(haystack))
	//
	// Returns:
	//   index >= start if a candidate is found
	//   -1 if no candidate exists at or after start
	//
	// Example:
	//
	//	pf := /* some prefilter */
	//	pos := pf.Find(haystack, 0)
	//	for pos != -1 {
	//	    // Verify match at pos using full regex engine
	//	    if fullRegexMatches(haystack, pos) {
	//	        return pos
	//	    }
	//	    // Continue searching
	//	    pos = pf.Find(haystack, pos+1)
	//	}
	Find(haystack []byte, start int) int

	// IsComplete returns true if a prefilter match guarantees a full regex match.
	//
	// When true, the regex engine can skip verification and directly return the
	// prefilter result. This is the case when:
	//   - The regex is an exact literal (e.g., /hello/)
	//   - The literal sequence is complete and non-overlapping
	//
	// Most prefilters return false, meaning verification is required.
	//
	// Example:
	//
	//	if pf.IsComplete() {
	//	    // Direct return, no verification needed
	//	    return pf.Find(haystack, start)
	//	} else {
	//	    // Must verify with full regex engine
	//	    pos := pf.Find(haystack, start)
	//	    if pos != -1 && fullRegexMatches(haystack, pos) {
	//	        return pos
	//	    }
	//	}
	IsComplete() bool

	// LiteralLen returns the length of the matched literal when IsComplete() is true.
	//
	// This allows the regex engine to calculate exact match bounds without
	// running the full automata: end = start + LiteralLen().
	//
	// Returns:
	//   > 0 if IsComplete() is true (the length of the complete literal)
	//   0 if IsComplete() is false or if the prefilter matches variable lengths
	//
	// Example:
	//
	//	if pf.IsComplete() {
	//	    pos := pf.Find(haystack, start)
	//	    if pos != -1 {
	//	        matchEnd := pos + pf.LiteralLen()
	//	        return haystack[pos:matchEnd]
	//	    }
	//	}
	LiteralLen() int

	// HeapBytes returns the number of bytes of heap memory used by this prefilter.
	//
	// This is useful for profiling and memory budgeting in the regex engine.
	// Simple prefilters (Memchr, Memmem) typically return 0 as they don't
	// allocate heap memory. Complex prefilters (Teddy, AhoCorasick) may use
	// significant memory for lookup tables.
	//
	// Returns:
	//   0 if no heap allocation
	//   positive value indicating heap bytes used
	HeapBytes() int
}

// MatchFinder is an optional interface for prefilters that can return
// the matched range directly, avoiding the need for NFA verification.
//
// This is particularly useful for multi-pattern prefilters like Teddy
// where the matched pattern length varies.
type MatchFinder interface {
	// FindMatch returns the start and end positions of the first match.
	// Returns (start, end) if found, (-1, -1) if not found.
	// The matched bytes are haystack[start:end].
	FindMatch(haystack []byte, start int) (start2, end int)
}

// Builder constructs the optimal prefilter from extracted literals.
//
// The builder analyzes the literal sequences (prefixes and suffixes) and
// selects the most efficient prefilter strategy. The selection is based on:
//   - Number of literals
//   - Length of literals
//   - Completeness flag
//
// Selection strategy (in order of preference):
//  1. Single byte literal → MemchrPrefilter (fastest)
//  2. Single substring literal → MemmemPrefilter (very fast)
//  3. 2-32 literals, len≥3 → TeddyPrefilter (multi-pattern)
//  4. 33-64 literals, len≥3 → Fat Teddy
//  5. Any other set of more than 8 literals → an Aho-Corasick automaton
//  6. No suitable literals → nil (no prefilter)
//
// Example:
//
//	// Build from extracted prefixes
//	builder := predictor.NewBuilder(prefixes, nil)
//	pf := builder.Build()
//	if pf != nil {
//	    pos := pf.Find(haystack, 0)
//	}
type Builder struct {
	prefixes *literal.Seq
	suffixes *literal.Seq
}

// NewBuilder creates a new prefilter builder from extracted literal sequences.
//
// Parameters:
//
//	prefixes - literals that must appear at the start of matches (from triex.RecoverPrefixes)
//	suffixes - literals that must appear at the end of matches (from triex.RecoverSuffixes)
//
// The builder prefers prefixes over suffixes because forward search is more
// natural and cache-friendly. Suffixes are only used if prefixes are empty.
//
// Either or both can be nil, indicating no literals of that type were extracted.
//
// Example:
//
//	prefixes := triex.RecoverPrefixes(result)
//	suffixes := triex.RecoverSuffixes(result)
//	builder := predictor.NewBuilder(prefixes, suffixes)
func NewBuilder(prefixes, suffixes *literal.Seq) *Builder {
	return &Builder{
		prefixes: prefixes,
		suffixes: suffixes,
	}
}

// Build constructs the best prefilter for the given literals.
//
// Returns nil if no effective prefilter can be built (e.g., no literals,
// or literals are too complex for available strategies).
//
// The selection logic:
//  1. Prefer prefixes over suffixes (forward search)
//  2. Single byte → Memchr (10-15x speedup)
//  3. Single substring → Memmem (5-10x speedup)
//  4. Multiple literals (2-32, len≥3) → Teddy (20-50x speedup)
//  5. 33-64 literals, len≥3 → Fat Teddy
//  6. Any other set of more than 8 literals → Aho-Corasick automaton
//  7. Otherwise → nil
//
// Example:
//
//	builder := predictor.NewBuilder(prefixes, nil)
//	pf := builder.Build()
//	if pf == nil {
//	    // No prefilter available, use full regex engine
//	    return fullRegexSearch(haystack, pattern)
//	}
//	// Use prefilter for fast candidate finding
//	pos := pf.Find(haystack, 0)
func (b *Builder) Build() Prefilter {
	return selectPrefilter(b.prefixes, b.suffixes)
}

// selectPrefilter chooses the best prefilter strategy based on literal sequences.
//
// Selection algorithm:
//  1. Choose sequence: prefer prefixes, fallback to suffixes
//  2. If no literals → return nil
//  3. If 1 literal:
//     - len==1 → MemchrPrefilter (single byte search)
//     - len>1 → MemmemPrefilter (substring search)
//  4. If 2-32 literals and minLen≥3 → TeddyPrefilter (multi-pattern)
//  5. If 33-64 literals and minLen≥3 → Fat Teddy
//  6. If more than 8 literals otherwise → an Aho-Corasick automaton
//  7. If short literals that fit none of the above → nil
//
// Returns nil if no effective prefilter can be constructed.
func selectPrefilter(prefixes, suffixes *literal.Seq) Prefilter {
	// Prefer prefixes over suffixes (forward search is natural)
	seq := prefixes
	if seq.IsEmpty() {
		seq = suffixes
	}
	if seq.IsEmpty() {
		return nil // No literals → no prefilter
	}

	// Single literal optimizations
	if seq.Len() == 1 {
		lit := seq.Get(0)

		// Single byte → Memchr (fastest possible prefilter)
		if len(lit.Bytes) == 1 {
			return newMemchrPrefilter(lit.Bytes[0], lit.Complete)
		}

		// Exactly two bytes → MemchrPair: checking both bytes at their
		// fixed offset is more selective than Memmem's rare-byte-plus-
		// verify approach and skips building a needle copy for a literal
		// this short.
		if len(lit.Bytes) == 2 {
			return newMemchrPairPrefilter(lit.Bytes[0], lit.Bytes[1], lit.Complete)
		}

		// Longer substring → Memmem (very fast)
		return newMemmemPrefilter(lit.Bytes, lit.Complete)
	}

	// 2-3 single-byte alternatives (e.g. `a|b`, `x|y|z`) are too short
	// for Teddy's fingerprint buckets to pay for themselves but still
	// narrower than falling through to a full automaton: Memchr2/Memchr3
	// check every branch's anchor byte in one SWAR pass.
	if pf := newMemchrSetPrefilter(seq); pf != nil {
		return pf
	}

	// 2-32 literals of length >= 3 (MaxTeddyPatterns): Slim Teddy's
	// fingerprint buckets.
	if seq.Len() >= MinTeddyPatterns && seq.Len() <= MaxTeddyPatterns && minLen(seq) >= MinTeddyPatternLen {
		return newTeddy(seq)
	}

	// 33-64 literals: Slim Teddy's 8 buckets get too crowded (too many
	// patterns sharing a bucket inflates the false-positive rate), so
	// switch to Fat Teddy's 16 buckets before falling back to an
	// automaton.
	if seq.Len() > MaxTeddyPatterns && seq.Len() <= MaxFatTeddyPatterns && minLen(seq) >= MinTeddyPatternLen {
		if pf := newFatTeddy(seq); pf != nil {
			return pf
		}
	}

	// More than 8 literal alternatives that didn't qualify for Teddy or
	// Fat Teddy: an automaton amortizes the per-pattern cost those pay
	// per SIMD lane.
	if seq.Len() > 8 {
		if pf := newAhoCorasick(seq); pf != nil {
			return pf
		}
	}

	return nil
}

// WouldBeFast reports whether seq, given to Build as its prefixes,
// gets a single-literal (memchr, MemchrPair or memmem) or Teddy/Fat
// Teddy prefilter. It returns false for a nil or empty seq, and for
// several literals when any is shorter than MinTeddyPatternLen or
// there are more than MaxFatTeddyPatterns of them.
func WouldBeFast(seq *literal.Seq) bool {
	if seq.IsEmpty() {
		return false
	}
	if seq.Len() == 1 {
		return true
	}
	return seq.Len() <= MaxFatTeddyPatterns && minLen(seq) >= MinTeddyPatternLen
}

// minLen returns the minimum literal length in the sequence.
// Returns max int if sequence is empty.
func minLen(seq *literal.Seq) int {
	if seq.IsEmpty() {
		return int(^uint(0) >> 1) // Max int
	}

	minLength := int(^uint(0) >> 1) // Max int
	for i := 0; i < seq.Len(); i++ {
		if l := len(seq.Get(i).Bytes); l < minLength {
			minLength = l
		}
	}
	return minLength
}

// memchrPrefilter wraps simd.Memchr as a Prefilter.
//
// This is the fastest prefilter for patterns with a single byte literal.
// simd.Memchr is a portable SWAR scan that tests eight bytes per step.
//
// Performance: 10-15x faster than full regex on large inputs.
//
// Example patterns:
//
//	/a.*/         → search for 'a'
//	/foo|bar/     → extract 'f' or 'b', search for first
//	/[abc]/       → if expanded to single byte
type memchrPrefilter struct {
	needle   byte
	complete bool
}

// newMemchrPrefilter creates a new Memchr-based prefilter.
//
// Parameters:
//
//	needle - the byte to search for
//	complete - true if finding this byte is sufficient for a match
func newMemchrPrefilter(needle byte, complete bool) Prefilter {
	return &memchrPrefilter{
		needle:   needle,
		complete: complete,
	}
}

// Find implements Prefilter.Find using simd.Memchr.
func (p *memchrPrefilter) Find(haystack []byte, start int) int {
	// Bounds check
	if start < 0 || start >= len(haystack) {
		return -1
	}

	// Search for needle starting at 'start'
	idx := simd.Memchr(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}

	// Return absolute position in haystack
	return start + idx
}

// IsComplete implements Prefilter.IsComplete.
func (p *memchrPrefilter) IsComplete() bool {
	return p.complete
}

// LiteralLen implements Prefilter.LiteralLen.
func (p *memchrPrefilter) LiteralLen() int {
	if p.complete {
		return 1 // single byte literal
	}
	return 0
}

// HeapBytes implements Prefilter.HeapBytes.
// Returns 0 as no heap allocation is needed.
func (p *memchrPrefilter) HeapBytes() int {
	return 0 // No heap allocation
}

// memchrPairPrefilter wraps simd.MemchrPair as a Prefilter for a
// two-byte literal.
type memchrPairPrefilter struct {
	b1, b2   byte
	complete bool
}

func newMemchrPairPrefilter(b1, b2 byte, complete bool) Prefilter {
	return &memchrPairPrefilter{b1: b1, b2: b2, complete: complete}
}

// Find implements Prefilter.Find using simd.MemchrPair with offset 1.
func (p *memchrPairPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	idx := simd.MemchrPair(haystack[start:], p.b1, p.b2, 1)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// IsComplete implements Prefilter.IsComplete.
func (p *memchrPairPrefilter) IsComplete() bool { return p.complete }

// LiteralLen implements Prefilter.LiteralLen.
func (p *memchrPairPrefilter) LiteralLen() int {
	if p.complete {
		return 2
	}
	return 0
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *memchrPairPrefilter) HeapBytes() int { return 0 }

// memchrSetPrefilter wraps simd.Memchr2/simd.Memchr3 as a Prefilter for
// an alternation of 2 or 3 single-byte literals.
type memchrSetPrefilter struct {
	needles  [3]byte
	count    int
	complete bool
}

// newMemchrSetPrefilter builds a memchrSetPrefilter if seq holds
// exactly 2 or 3 literals that are each a single byte. It returns nil
// for any other shape, leaving the caller to fall through to Teddy,
// Aho-Corasick, or nil.
func newMemchrSetPrefilter(seq *literal.Seq) Prefilter {
	n := seq.Len()
	if n != 2 && n != 3 {
		return nil
	}
	var needles [3]byte
	for i := 0; i < n; i++ {
		lit := seq.Get(i)
		if len(lit.Bytes) != 1 {
			return nil
		}
		needles[i] = lit.Bytes[0]
	}
	return &memchrSetPrefilter{needles: needles, count: n, complete: seqAllComplete(seq)}
}

// Find implements Prefilter.Find using simd.Memchr2 or simd.Memchr3.
func (p *memchrSetPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	var idx int
	if p.count == 2 {
		idx = simd.Memchr2(haystack[start:], p.needles[0], p.needles[1])
	} else {
		idx = simd.Memchr3(haystack[start:], p.needles[0], p.needles[1], p.needles[2])
	}
	if idx == -1 {
		return -1
	}
	return start + idx
}

// IsComplete implements Prefilter.IsComplete.
func (p *memchrSetPrefilter) IsComplete() bool { return p.complete }

// LiteralLen implements Prefilter.LiteralLen.
func (p *memchrSetPrefilter) LiteralLen() int {
	if p.complete {
		return 1
	}
	return 0
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *memchrSetPrefilter) HeapBytes() int { return 0 }

// memmemPrefilter wraps simd.Memmem as a Prefilter.
//
// This prefilter searches for a single substring literal using SIMD-accelerated
// substring search. Uses rare byte heuristic + memchr for fast candidate finding.
//
// Performance: 5-10x faster than full regex on large inputs.
//
// Example patterns:
//
//	/hello/       → search for "hello"
//	/foo|foobar/  → after minimization → search for "foo"
//	/prefix.*/    → search for "prefix"
type memmemPrefilter struct {
	needle   []byte
	complete bool
}

// newMemmemPrefilter creates a new Memmem-based prefilter.
//
// Parameters:
//
//	needle - the byte sequence to search for (must be len > 1)
//	complete - true if finding this substring is sufficient for a match
//
// The needle slice is copied to prevent aliasing issues.
func newMemmemPrefilter(needle []byte, complete bool) Prefilter {
	// Copy needle to prevent aliasing
	needleCopy := make([]byte, len(needle))
	copy(needleCopy, needle)

	return &memmemPrefilter{
		needle:   needleCopy,
		complete: complete,
	}
}

// Find implements Prefilter.Find using simd.Memmem.
func (p *memmemPrefilter) Find(haystack []byte, start int) int {
	// Bounds check
	if start < 0 || start >= len(haystack) {
		return -1
	}

	// Search for needle starting at 'start'
	idx := simd.Memmem(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}

	// Return absolute position in haystack
	return start + idx
}

// IsComplete implements Prefilter.IsComplete.
func (p *memmemPrefilter) IsComplete() bool {
	return p.complete
}

// LiteralLen implements Prefilter.LiteralLen.
func (p *memmemPrefilter) LiteralLen() int {
	if p.complete {
		return len(p.needle)
	}
	return 0
}

// HeapBytes implements Prefilter.HeapBytes.
// Returns the size of the needle buffer (stored on heap).
func (p *memmemPrefilter) HeapBytes() int {
	return len(p.needle)
}

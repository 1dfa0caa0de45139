// Package literal represents sequences of alternative literal byte
// strings recovered from a pattern's string-tree pre-DFA (package
// triex) and consumed by the predictor builder (package predictor) to
// pick an acceleration strategy.
//
// A Literal is a concrete byte string that may start (or, for a
// suffix sequence, end) a match. A Seq is the set of alternative
// literals found at the top of a pure-literal alternation, e.g.
// /foo|bar|baz/ yields a Seq of three complete literals.
package literal

import (
	"bytes"
	"sort"
)

// Literal is one alternative literal byte string.
//
// Complete reports whether matching this literal, on its own, is
// sufficient evidence of a full pattern match (true for a pattern that
// is itself a pure alternation of literals) or whether it is merely a
// necessary prefix of a longer, non-literal match (false).
type Literal struct {
	Bytes    []byte
	Complete bool
}

// New constructs a Literal.
func New(b []byte, complete bool) Literal {
	return Literal{Bytes: b, Complete: complete}
}

// Len returns the literal's length in bytes.
func (l Literal) Len() int { return len(l.Bytes) }

// Seq is an ordered set of alternative literals, such as the
// prefixes firstpos identifies at the start of a pattern.
type Seq struct {
	lits []Literal
}

// NewSeq builds a Seq from the given literals.
func NewSeq(lits ...Literal) *Seq {
	return &Seq{lits: lits}
}

// Len returns the number of literals (0 for a nil Seq).
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.lits)
}

// Get returns the literal at index i.
func (s *Seq) Get(i int) Literal { return s.lits[i] }

// IsEmpty reports whether the sequence has no literals.
func (s *Seq) IsEmpty() bool { return s == nil || len(s.lits) == 0 }

// MinLen returns the length of the shortest literal, or 0 if empty.
func (s *Seq) MinLen() int {
	if s.IsEmpty() {
		return 0
	}
	m := s.lits[0].Len()
	for _, l := range s.lits[1:] {
		if l.Len() < m {
			m = l.Len()
		}
	}
	return m
}

// Minimize drops literals that are redundant because a shorter literal
// in the sequence is already a prefix of them (e.g. ["foo", "foobar"]
// minimizes to ["foo"] for prefix-based filtering).
func (s *Seq) Minimize() {
	if s.IsEmpty() {
		return
	}
	sort.Slice(s.lits, func(i, j int) bool { return len(s.lits[i].Bytes) < len(s.lits[j].Bytes) })

	kept := make([]Literal, 0, len(s.lits))
	for _, cur := range s.lits {
		redundant := false
		for _, k := range kept {
			if isPrefix(k.Bytes, cur.Bytes) {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, cur)
		}
	}
	s.lits = kept
}

// LongestCommonPrefix returns the longest byte prefix shared by every
// literal in the sequence; this feeds the predictor's pref[] array
// when the string-tree identifies more than one literal alternative
// sharing a common head.
func (s *Seq) LongestCommonPrefix() []byte {
	if s.IsEmpty() {
		return nil
	}
	prefix := s.lits[0].Bytes
	for _, l := range s.lits[1:] {
		prefix = commonPrefix(prefix, l.Bytes)
		if len(prefix) == 0 {
			return nil
		}
	}
	out := make([]byte, len(prefix))
	copy(out, prefix)
	return out
}

func isPrefix(prefix, s []byte) bool {
	return len(prefix) <= len(s) && bytes.Equal(prefix, s[:len(prefix)])
}

func commonPrefix(a, b []byte) []byte {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

package predictor

import (
	"github.com/coregx/ahocorasick"
	"github.com/fsmregex/fsmregex/literal"
)

// acPrefilter wraps an Aho-Corasick automaton as a Prefilter for
// literal alternations too large for Teddy (more than 8 patterns).
//
// github.com/coregx/ahocorasick's match-scanning method is inferred to
// share the Find(haystack, start) convention every other Prefilter in
// this package already uses.
type acPrefilter struct {
	auto     *ahocorasick.Automaton
	complete bool
}

// newAhoCorasick builds an automaton over seq's literals. It returns
// nil if the automaton fails to build, in which case the caller falls
// back to running the DFA with no prefilter.
func newAhoCorasick(seq *literal.Seq) Prefilter {
	builder := ahocorasick.NewBuilder()
	for i := 0; i < seq.Len(); i++ {
		builder.AddPattern(seq.Get(i).Bytes)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &acPrefilter{auto: auto, complete: seqAllComplete(seq)}
}

func seqAllComplete(seq *literal.Seq) bool {
	for i := 0; i < seq.Len(); i++ {
		if !seq.Get(i).Complete {
			return false
		}
	}
	return seq.Len() > 0
}

func (p *acPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start > len(haystack) {
		return -1
	}
	idx := p.auto.Find(haystack[start:], 0)
	if idx < 0 {
		return -1
	}
	return start + idx
}

func (p *acPrefilter) IsComplete() bool { return p.complete }

func (p *acPrefilter) HeapBytes() int {
	// The automaton's own table size isn't exposed; approximate with a
	// small constant so tracker.go's effectiveness accounting has a
	// non-zero cost to weigh against hit rate.
	return 256
}

// Package rex is the public entry point: Compile turns a pattern
// string into a *Pattern, and Find/Match run it against a haystack.
// It wires together, in order, the parser (followpos construction),
// the dfa builder, the asm assembler, the triex literal recovery, and
// the predictor package's prefilter/table builders, then drives the
// assembled program through vm.Scanner.
package rex

import (
	"fmt"

	"github.com/fsmregex/fsmregex/asm"
	"github.com/fsmregex/fsmregex/charset"
	"github.com/fsmregex/fsmregex/dfa"
	"github.com/fsmregex/fsmregex/input"
	"github.com/fsmregex/fsmregex/parser"
	"github.com/fsmregex/fsmregex/pos"
	"github.com/fsmregex/fsmregex/predictor"
	"github.com/fsmregex/fsmregex/triex"
	"github.com/fsmregex/fsmregex/vm"
)

// Pattern is a compiled regular expression: an assembled opcode
// program plus whatever acceleration structures Compile managed to
// build for it. A *Pattern is immutable once returned by Compile and
// safe for concurrent use by multiple goroutines, each driving its own
// vm.Scanner over its own input.
type Pattern struct {
	src   string
	opt   Options
	prog  *asm.Program
	entry int

	filter predictor.Prefilter
	table  *predictor.Table

	acceptCount   int
	lookaheads    map[int]*parser.LookaheadRange
	negateAccepts map[int]bool
}

// Match is one successful Find: the byte offsets it spans and which
// top-level alternative (1-based) produced it.
type Match struct {
	Start, End int
	Accept     int
}

// String returns the matched substring of haystack.
func (m Match) String(haystack []byte) string {
	return string(haystack[m.Start:m.End])
}

// Compile parses src, builds its DFA, assembles an opcode program, and
// derives the literal prefilter (always) and the bitap/hash predictor
// table (when opt.EmitPredictor is set). When parser.Parse returns no
// Result (opt.ThrowOnError is set, or the first error is fatal), Compile
// returns that error exactly as parser.Parse reports it. Otherwise a
// recorded parse error is not returned: the Pattern is built from the
// Result the parser recovered, is not made non-matching, and does not
// carry the error.
func Compile(src string, opt Options) (*Pattern, error) {
	result, err := parser.Parse(src, opt.Options)
	if result == nil {
		return nil, err
	}

	d := dfa.Build(result)
	prog, err := asm.Assemble(d, src)
	if err != nil {
		return nil, err
	}

	tree := triex.Build(result)
	prefixes := triex.RecoverPrefixes(tree)
	suffixes := triex.RecoverSuffixes(result)

	var filter predictor.Prefilter
	if !prefixes.IsEmpty() || !suffixes.IsEmpty() {
		if built := predictor.NewBuilder(prefixes, suffixes).Build(); built != nil {
			filter = predictor.WrapWithTracking(built)
		}
	} else if startsWithDigitOnly(result) {
		// triex found no literal prefix because every alternative at the
		// start is a character class rather than a concrete byte (e.g.
		// `[0-9]+` or an IP-address alternation); if that class is a
		// subset of ASCII digits, a digit scan still narrows the search
		// space even though there's no literal to feed the Teddy/memchr
		// cascade.
		filter = predictor.WrapWithTracking(predictor.NewDigitPrefilter())
	}

	var table *predictor.Table
	if opt.EmitPredictor {
		table = predictor.Build(d)
	}

	return &Pattern{
		src:           src,
		opt:           opt,
		prog:          prog,
		entry:         prog.Entry[int(d.Start())],
		filter:        filter,
		table:         table,
		acceptCount:   result.AcceptCount,
		lookaheads:    result.Lookaheads,
		negateAccepts: result.NegateAccepts,
	}, nil
}

// startsWithDigitOnly reports whether every non-accept leaf reachable
// from the start state (firstpos(root)) tests only ASCII digits. A
// pattern like `[1-9]?[0-9]|1[0-9][0-9]` never yields a usable
// literal.Seq — each alternative starts with a different class — but
// every one of those classes is still a subset of [0-9], so scanning
// ahead for the next digit is a valid prefilter even without a literal.
func startsWithDigitOnly(result *parser.Result) bool {
	digits := charset.FromRange('0', '9')
	found := false
	allDigits := true
	result.First.ForEach(func(p pos.Position) {
		if p.IsAccept() {
			return
		}
		cs, ok := result.Leaves[p]
		if !ok || !charset.Subset(cs, digits) {
			allDigits = false
			return
		}
		found = true
	})
	return found && allDigits
}

// MustCompile is Compile, panicking on error — for patterns fixed at
// compile time rather than read from untrusted input.
func MustCompile(src string, opt Options) *Pattern {
	p, err := Compile(src, opt)
	if err != nil {
		panic(fmt.Sprintf("rex: Compile(%q): %v", src, err))
	}
	return p
}

// scanner builds a vm.Scanner in the given mode, wired to this
// pattern's filter and table, with no hooks: indent/undent/dedent
// predicates always read false here. Indentation tracking belongs to
// the lexer package's driver, which supplies its own vm.Hooks; a bare
// Pattern only ever matches against word-boundary and line/buffer
// anchors, none of which need a hook.
func (p *Pattern) scanner(mode vm.Mode) *vm.Scanner {
	return vm.NewScanner(p.prog, p.entry, mode, nil, p.filter, p.table)
}

// ScannerWithHooks builds a vm.Scanner over p wired to the given
// hooks, for a driver (such as package lexer) that needs to answer
// the indent/undent/dedent meta predicates itself. Bare Pattern
// methods never need this; it exists so a driver built on top of p
// does not have to reassemble p's opcode program to get at vm.Scanner.
func (p *Pattern) ScannerWithHooks(mode vm.Mode, hooks *vm.Hooks) *vm.Scanner {
	return vm.NewScanner(p.prog, p.entry, mode, hooks, p.filter, p.table)
}

// Step runs a single matching attempt at in's current cursor position,
// wired to hooks. It is the primitive package lexer builds its own
// jam-detecting scan loop on top of, in place of vm.Scanner's silent
// retry-at-next-byte policy (spec.md §4.5's "jammed" lexer error only
// makes sense for a driver that insists on matching starting exactly
// where the cursor is, not one free to hunt for the next position that
// works).
func (p *Pattern) Step(in *input.Input, hooks *vm.Hooks) vm.Result {
	return vm.Step(p.prog, p.entry, in, hooks)
}

// NumAccepts, lookaheads and negateAccepts aside, Lookaheads exposes
// the per-lookahead-id head/tail position ranges Compile recorded, for
// introspection by tooling that wants to report which ids a Match's
// Heads/Tails slices refer to.
func (p *Pattern) Lookaheads() map[int]*parser.LookaheadRange {
	return p.lookaheads
}

// FindAt returns the leftmost match in haystack starting at or after at,
// or nil if there is none. Find mode uses whatever prefilter and
// predictor table Compile built to skip positions that cannot match.
func (p *Pattern) FindAt(haystack []byte, at int) *Match {
	in := input.New(haystack)
	in.Seek(at)
	res, ok := p.scanner(vm.Find).Next(in)
	if !ok {
		return nil
	}
	return &Match{Start: res.Start, End: res.Start + res.Length, Accept: res.Accept}
}

// Find returns the leftmost match anywhere in haystack, or nil.
func (p *Pattern) Find(haystack []byte) *Match {
	return p.FindAt(haystack, 0)
}

// FindAll returns every non-overlapping match in haystack, in order.
func (p *Pattern) FindAll(haystack []byte) []Match {
	var out []Match
	at := 0
	for at <= len(haystack) {
		m := p.FindAt(haystack, at)
		if m == nil {
			break
		}
		out = append(out, *m)
		if m.End > at {
			at = m.End
		} else {
			at++
		}
	}
	return out
}

// MatchString reports whether haystack contains a match anywhere.
func (p *Pattern) MatchString(haystack []byte) bool {
	return p.Find(haystack) != nil
}

// MatchAt reports whether haystack matches starting exactly at the
// given position, with no retry at a later one.
func (p *Pattern) MatchAt(haystack []byte, at int) bool {
	in := input.New(haystack)
	in.Seek(at)
	_, ok := p.scanner(vm.Match).Next(in)
	return ok
}

// NumAccepts returns the number of top-level alternatives (accept
// indices) the pattern was compiled with.
func (p *Pattern) NumAccepts() int {
	return p.acceptCount
}

// Source returns the original pattern text Compile was given.
func (p *Pattern) Source() string {
	return p.src
}

// Stats summarizes the acceleration structures Compile built for a
// pattern, useful for debugging strategy selection without needing to
// inspect the opcode table directly.
type Stats struct {
	NumWords            int
	NumAccepts          int
	HasPrefilter        bool
	PrefilterComplete   bool
	PrefilterActive     bool
	PrefilterEfficiency float64
	HasTable            bool
	TablePrefixLen      int
	TableMin            int
	TableIsOneLiteral   bool
}

// Stats reports the acceleration structures built for p.
func (p *Pattern) Stats() Stats {
	st := Stats{
		NumWords:   len(p.prog.Words),
		NumAccepts: p.acceptCount,
	}
	if p.filter != nil {
		st.HasPrefilter = true
		st.PrefilterComplete = p.filter.IsComplete()
		if tp, ok := p.filter.(*predictor.TrackedPrefilter); ok {
			_, _, st.PrefilterEfficiency, st.PrefilterActive = tp.Stats()
		}
	}
	if p.table != nil {
		st.HasTable = true
		st.TablePrefixLen = len(p.table.Prefix)
		st.TableMin = p.table.Min
		st.TableIsOneLiteral = p.table.One
	}
	return st
}

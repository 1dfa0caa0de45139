// Package lexer is the thin driver spec.md §1 and §4.5 describe as
// sitting above the opcode-dispatch contract: line/column tracking,
// indentation-stop bookkeeping for the \i \j \k meta tokens, and the
// scan/find/split control loops a tokenizer actually runs, none of
// which package vm itself knows about. Grounded on
// original_source/abslexer.hpp's AbstractLexer (scan()'s
// discard-and-retry loop on a REDO accept, split()'s "keep scanning
// until something real comes back") and lexer.h's update_col/indent/
// dedent/nodent column bookkeeping, adapted from a mutable C++ object
// with member fields mutated in place to a Go struct of the same
// shape, and restyled in rex/coregx-coregex's own driver-over-engine
// layering (meta/engine.go) for the public API surface.
package lexer

import (
	"fmt"

	"github.com/fsmregex/fsmregex/input"
	"github.com/fsmregex/fsmregex/rex"
	"github.com/fsmregex/fsmregex/vm"
)

// Token is one accepted match a Lexer's Scan or Find produced.
type Token struct {
	Accept     int
	Start, End int
	// Line and Col locate Start: Line is 1-based, Col is the 1-based
	// byte offset into that line. Both describe diagnostic position,
	// independent of the tab-expanded column Indent/Dedent track.
	Line, Col int
}

// Text returns the token's matched bytes out of haystack.
func (t Token) Text(haystack []byte) []byte { return haystack[t.Start:t.End] }

// Span is an unmatched byte range between two successive Find results,
// or before the first / after the last.
type Span struct{ Start, End int }

// JammedError reports that no rule matched at the cursor and the
// cursor was not at end of buffer — spec.md §7's "jammed lexer" case,
// the one runtime error condition the VM contract itself does not
// produce (vm.Step always returns a possibly-zero accept; Lexer.Scan
// is what turns a persistent zero into an exception). Mirrors
// abslexer.hpp's Lexer_Error.
type JammedError struct {
	Line, Col int
	Next      byte
	AtEOB     bool
}

func (e *JammedError) Error() string {
	if e.AtEOB {
		return fmt.Sprintf("lexer: jammed at %d:%d: next is EOF", e.Line, e.Col)
	}
	return fmt.Sprintf("lexer: jammed at %d:%d: next is %q", e.Line, e.Col, e.Next)
}

// Config are the knobs Lexer's indentation tracking needs beyond what
// a bare *rex.Pattern carries.
type Config struct {
	// TabWidth is the column stride a '\t' byte advances to the next
	// multiple of, for \i \j \k indentation matching. Defaults to 8.
	TabWidth int
}

// Lexer drives repeated matching attempts over one haystack with a
// single compiled pattern, adding line/column tracking and
// indentation-stop bookkeeping that package vm has no concept of.
type Lexer struct {
	pat *rex.Pattern
	in  *input.Input
	cfg Config

	line, lineStart int // diagnostic line number and the byte offset it started at

	indent indentState
	hooks  *vm.Hooks
}

// New builds a Lexer over haystack driven by pat. cfg.TabWidth
// defaults to 8 when zero.
func New(pat *rex.Pattern, haystack []byte, cfg Config) *Lexer {
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = 8
	}
	l := &Lexer{pat: pat, in: input.New(haystack), cfg: cfg, line: 1}
	l.hooks = &vm.Hooks{Indent: l.indent.onIndent, Undent: l.indent.onUndent, Dedent: l.indent.onDedent}
	l.indent.lex = l
	return l
}

// Pos returns the cursor's current byte offset.
func (l *Lexer) Pos() int { return l.in.Pos() }

// Seek moves the cursor to an absolute byte offset, for a driver that
// wants to re-lex from a known position (e.g. after an error recovery
// skip). It does not reset line/column or indentation state — callers
// doing non-linear seeks own that bookkeeping themselves.
func (l *Lexer) Seek(pos int) { l.in.Seek(pos) }

// Scan runs exactly one matching attempt at the cursor's current
// position: on success it returns the token and advances the cursor
// past it; on a discarded (?^X) negative match it silently retries
// past the discarded span; on end of buffer it returns io.EOF-shaped
// done=true; on a genuine non-match before end of buffer it returns a
// *JammedError, mirroring AbstractLexer::scan()'s "goto begin" REDO
// loop and its jammed-lexer exception path.
func (l *Lexer) Scan() (tok Token, done bool, err error) {
	for {
		if l.in.AtEOB() {
			return Token{}, true, nil
		}
		start := l.in.Pos()
		res := l.pat.Step(l.in, l.hooks)

		switch {
		case res.Accept == vm.RedoAccept:
			if l.in.Pos() == start {
				l.in.Seek(start + 1)
			}
			l.advanceLine(start, l.in.Pos())
			continue
		case res.Accept == 0:
			line, col := l.position(start)
			b, ok := l.in.Peek()
			return Token{}, false, &JammedError{Line: line, Col: col, Next: b, AtEOB: !ok}
		default:
			line, col := l.position(start)
			end := start + res.Length
			l.in.Seek(end)
			l.advanceLine(start, end)
			return Token{Accept: res.Accept, Start: start, End: end, Line: line, Col: col}, false, nil
		}
	}
}

// Find skips forward, using pat's literal prefilter and predictor
// table when available, to the next position a real match starts at,
// discarding everything in between (and any REDO matches it crosses)
// rather than treating a non-match as a jam. ok is false once no
// further match exists.
func (l *Lexer) Find() (tok Token, skipped Span, ok bool) {
	scanner := l.pat.ScannerWithHooks(vm.Find, l.hooks)
	start := l.in.Pos()
	res, matched := scanner.Next(l.in)
	if !matched {
		return Token{}, Span{}, false
	}
	line, col := l.position(res.Start)
	end := res.Start + res.Length
	l.advanceLine(start, end)
	return Token{Accept: res.Accept, Start: res.Start, End: end, Line: line, Col: col}, Span{Start: start, End: res.Start}, true
}

// FindAll runs Find to exhaustion, returning every match plus, when
// any gap is non-empty, the unmatched spans between them and after
// the last one (spec.md §6's "split" convenience built on repeated
// find()).
func (l *Lexer) FindAll() (tokens []Token, gaps []Span) {
	for {
		tok, gap, ok := l.Find()
		if !ok {
			break
		}
		if gap.End > gap.Start {
			gaps = append(gaps, gap)
		}
		tokens = append(tokens, tok)
	}
	if l.in.Pos() < l.in.Len() {
		gaps = append(gaps, Span{Start: l.in.Pos(), End: l.in.Len()})
	}
	return tokens, gaps
}

// position reports the 1-based line and column of an absolute byte
// offset already known to be at or after the lexer's current
// line-tracking high-water mark.
func (l *Lexer) position(pos int) (line, col int) {
	return l.line, pos - l.lineStart + 1
}

// advanceLine updates the diagnostic line counter for every '\n' in
// haystack[from:to], the same byte range just consumed by a token or a
// discarded REDO span.
func (l *Lexer) advanceLine(from, to int) {
	buf := l.in.Bytes()
	for i := from; i < to && i < len(buf); i++ {
		if buf[i] == '\n' {
			l.line++
			l.lineStart = i + 1
		}
	}
}

// Package vm interprets an assembled opcode program (package asm) one
// byte at a time against an input cursor (package input), following
// the matcher contract: read markers, test meta predicates, dispatch
// on the next byte, and track the longest accept seen.
package vm

import (
	"github.com/fsmregex/fsmregex/asm"
	"github.com/fsmregex/fsmregex/input"
	"github.com/fsmregex/fsmregex/predictor"
)

// RedoAccept is the accept code Step reports when the longest match
// recorded belongs to a (?^X) negative sub-pattern: the caller should
// discard it rather than treat it as a real match.
const RedoAccept = -1

// Mode selects how a Scanner drives repeated Step calls over an input.
type Mode int

const (
	// Scan attempts a match starting at every position in turn,
	// advancing one byte when a position yields no match at all.
	Scan Mode = iota
	// Find uses a predictor, when one is configured, to skip over
	// positions that cannot possibly start a match.
	Find
	// Split reports the unmatched spans between successive matches.
	Split
	// Match requires the very first attempt, at the cursor's current
	// position, to succeed; it never retries at a later position.
	Match
)

// Result is one matching attempt's outcome: the accept index of the
// longest match recorded (0 for no match, RedoAccept for a discarded
// negative-pattern match), the byte offset the attempt started at,
// its length in bytes from that start position, and the lookahead ids
// whose HEAD/TAIL markers fired along the way.
type Result struct {
	Accept int
	Start  int
	Length int
	Heads  []int
	Tails  []int
}

// Step runs one matching attempt: starting at prog's word offset
// start, it consumes bytes from in until the state machine has no
// transition left to take or the buffer ends, and returns the longest
// accept recorded. The cursor is left just past the longest accepted
// prefix, not necessarily at the point the scan actually stopped,
// since the VM keeps scanning past a TAKE looking for a longer match
// before giving up (POSIX longest-match).
func Step(prog *asm.Program, start int, in *input.Input, hooks *Hooks) Result {
	startPos := in.Pos()
	pc := start
	var res Result
	res.Start = startPos
	bestPos := startPos

	for {
		for {
			w := prog.Words[pc]
			if a, ok := w.IsTake(); ok {
				res.Accept, res.Length = a, in.Pos()-startPos
				bestPos = in.Pos()
				pc++
				continue
			}
			if w.IsRedo() {
				res.Accept, res.Length = RedoAccept, in.Pos()-startPos
				bestPos = in.Pos()
				pc++
				continue
			}
			if id, ok := w.IsHead(); ok {
				res.Heads = append(res.Heads, id)
				pc++
				continue
			}
			if id, ok := w.IsTail(); ok {
				res.Tails = append(res.Tails, id)
				pc++
				continue
			}
			break
		}

		if prog.Words[pc].IsHalt() {
			break
		}

		if next, matched := tryMeta(prog, pc, in, hooks); matched {
			pc = next
			continue
		}

		c, ok := in.Peek()
		if !ok {
			break
		}
		next, ok := tryByte(prog, pc, c)
		if !ok {
			break
		}
		in.Advance()
		pc = next
	}

	in.Seek(bestPos)
	return res
}

// tryMeta scans forward from pc through the state's meta GOTOs, firing
// the first whose predicate holds. It returns (pc, false) once it
// reaches the first non-meta word, leaving pc positioned there for the
// byte-dispatch phase that follows.
func tryMeta(prog *asm.Program, pc int, in *input.Input, hooks *Hooks) (next int, matched bool) {
	for {
		w := prog.Words[pc]
		lo, hi, target, words, ok := w.ResolveGoto(peekLong(prog, pc))
		if !ok || !asm.IsMeta(lo, hi) {
			return pc, false
		}
		if testMeta(lo, in, hooks) {
			if target < 0 {
				return pc, false
			}
			return target, true
		}
		pc += words
	}
}

// tryByte scans forward from pc through the state's byte-range GOTOs,
// which dfa/asm guarantee cover every value in [0, 255], so this
// always terminates at either a real match or a gap-filled dead range.
func tryByte(prog *asm.Program, pc int, c byte) (next int, ok bool) {
	for {
		w := prog.Words[pc]
		lo, hi, target, words, isGoto := w.ResolveGoto(peekLong(prog, pc))
		if !isGoto || asm.IsMeta(lo, hi) {
			return 0, false
		}
		if c >= lo && c <= hi {
			if target < 0 {
				return 0, false
			}
			return target, true
		}
		pc += words
	}
}

func peekLong(prog *asm.Program, pc int) asm.Word {
	if pc+1 < len(prog.Words) {
		return prog.Words[pc+1]
	}
	return 0
}

// Scanner drives repeated Step calls over an input according to a
// Mode, handling REDO discard-and-restart and, in Find mode,
// prefilter-gated skip-scanning.
type Scanner struct {
	prog   *asm.Program
	entry  int
	mode   Mode
	hooks  *Hooks
	filter predictor.Prefilter
	table  *predictor.Table
}

// NewScanner builds a Scanner over prog, entering at word offset
// entry. filter and table may both be nil; they are only consulted in
// Find mode, and cooperate rather than compete: filter jumps ahead to
// the next position a literal could start at, then table's bitap/hash
// check rejects that position outright when the bytes right after it
// rule out every live path, without ever invoking Step.
func NewScanner(prog *asm.Program, entry int, mode Mode, hooks *Hooks, filter predictor.Prefilter, table *predictor.Table) *Scanner {
	return &Scanner{prog: prog, entry: entry, mode: mode, hooks: hooks, filter: filter, table: table}
}

// trackedFilter is implemented by predictor.TrackedPrefilter; Scanner
// probes for it rather than importing the concrete type twice, so a
// plain untracked Prefilter costs nothing extra here.
type trackedFilter interface {
	IsActive() bool
	ConfirmMatch()
}

// Next attempts one match starting at or after in's current cursor
// position, discarding REDO results and retrying past them, and
// reports ok=false once no further match can be found (Scan/Find
// modes exhaust the buffer; Match only ever tries the starting
// position once).
func (s *Scanner) Next(in *input.Input) (res Result, ok bool) {
	for {
		if in.AtEOB() && s.mode != Match {
			return Result{}, false
		}

		start := in.Pos()
		filterConsulted := false
		if s.mode == Find && s.filter != nil {
			tf, tracked := s.filter.(trackedFilter)
			if !tracked || tf.IsActive() {
				filterConsulted = true
				cand := s.filter.Find(in.Bytes(), start)
				if cand < 0 {
					return Result{}, false
				}
				in.Seek(cand)
				start = cand
			}
		}

		if s.mode == Find && s.table != nil {
			haystack := in.Bytes()
			for {
				predicted, skip := s.table.Predict(haystack, start)
				if predicted {
					break
				}
				start += skip
				if start >= len(haystack) {
					return Result{}, false
				}
			}
			in.Seek(start)
		}

		res = Step(s.prog, s.entry, in, s.hooks)
		if res.Accept == RedoAccept {
			if in.Pos() == start {
				in.Seek(start + 1)
			}
			if s.mode == Match {
				return Result{}, false
			}
			continue
		}
		if res.Accept == 0 {
			if s.mode == Match {
				return Result{}, false
			}
			in.Seek(start + 1)
			continue
		}
		if filterConsulted {
			if tf, ok := s.filter.(trackedFilter); ok {
				tf.ConfirmMatch()
			}
		}
		return res, true
	}
}

// Package input is the byte source the matcher VM pulls from: a
// peek/advance/unget cursor over an already-UTF-8 buffer, plus the
// four zero-width boundary queries VM meta opcodes test against
// (beginning/end of buffer, beginning/end of line).
//
// Source text in any of the encodings Decode knows about is
// transcoded to UTF-8 up front via golang.org/x/text, so the cursor
// itself only ever deals in UTF-8 bytes.
package input

// Input is a forward-and-back cursor over a byte buffer.
type Input struct {
	buf []byte
	pos int
}

// New wraps buf, which must already be UTF-8, for a fresh cursor
// starting at position 0.
func New(buf []byte) *Input {
	return &Input{buf: buf}
}

// Peek returns the byte at the cursor without advancing it.
func (in *Input) Peek() (byte, bool) {
	if in.pos >= len(in.buf) {
		return 0, false
	}
	return in.buf[in.pos], true
}

// PeekPrev returns the byte immediately before the cursor, the other
// half of the pair word-boundary meta predicates test.
func (in *Input) PeekPrev() (byte, bool) {
	if in.pos <= 0 {
		return 0, false
	}
	return in.buf[in.pos-1], true
}

// Advance returns the byte at the cursor and moves past it.
func (in *Input) Advance() (byte, bool) {
	b, ok := in.Peek()
	if !ok {
		return 0, false
	}
	in.pos++
	return b, true
}

// Unget moves the cursor back one byte, undoing the last Advance. It is
// a no-op at the beginning of the buffer.
func (in *Input) Unget() {
	if in.pos > 0 {
		in.pos--
	}
}

// Pos returns the cursor's current byte offset.
func (in *Input) Pos() int { return in.pos }

// Len returns the total number of bytes in the buffer.
func (in *Input) Len() int { return len(in.buf) }

// Bytes returns the underlying buffer. Callers must not mutate it; it
// exists so a prefilter can skip-scan the same bytes this cursor walks
// without a copy.
func (in *Input) Bytes() []byte { return in.buf }

// Seek moves the cursor to an absolute byte offset.
func (in *Input) Seek(pos int) { in.pos = pos }

// AtBOB reports whether the cursor is at the very start of the buffer.
func (in *Input) AtBOB() bool { return in.pos == 0 }

// AtEOB reports whether the cursor has reached the end of the buffer.
func (in *Input) AtEOB() bool { return in.pos >= len(in.buf) }

// AtBOL reports whether the cursor is at the start of a line: either
// the start of the buffer, or the byte immediately before it is '\n'.
func (in *Input) AtBOL() bool {
	return in.pos == 0 || in.buf[in.pos-1] == '\n'
}

// AtEOL reports whether the cursor is at the end of a line: either the
// end of the buffer, or the byte at the cursor is '\n'.
func (in *Input) AtEOL() bool {
	return in.pos >= len(in.buf) || in.buf[in.pos] == '\n'
}

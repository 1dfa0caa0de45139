// Package rxerr defines the error kinds shared by every stage of the
// pattern compiler, from parsing through opcode assembly.
//
// Every error produced by this module carries the regex source text and
// the byte offset at which the problem was detected, so that callers can
// render a caret under the offending position without re-parsing.
package rxerr

import "fmt"

// Kind classifies a compilation error.
type Kind uint8

const (
	// MismatchedParens indicates an unbalanced '(' or ')'.
	MismatchedParens Kind = iota
	// MismatchedBraces indicates an unbalanced '{' or '}' in a repeat.
	MismatchedBraces
	// MismatchedBrackets indicates an unbalanced '[' or ']' in a class.
	MismatchedBrackets
	// MismatchedQuotation indicates an unterminated \Q...\E or "..." literal.
	MismatchedQuotation
	// EmptyExpression indicates an empty sub-expression, e.g. "()" or "|".
	EmptyExpression
	// EmptyClass indicates an empty bracket class, e.g. "[]".
	EmptyClass
	// InvalidClass indicates a malformed or unknown character class.
	InvalidClass
	// InvalidClassRange indicates a bracket range where lo > hi.
	InvalidClassRange
	// InvalidEscape indicates an unrecognized escape sequence.
	InvalidEscape
	// InvalidAnchor indicates a malformed anchor token.
	InvalidAnchor
	// InvalidRepeat indicates a malformed or inverted {n,m} repeat.
	InvalidRepeat
	// InvalidQuantifier indicates a quantifier on a non-quantifiable atom,
	// or a doubled lazy/greedy suffix.
	InvalidQuantifier
	// InvalidModifier indicates an unknown (?flags) letter.
	InvalidModifier
	// InvalidCollating indicates an unknown POSIX [:class:] name.
	InvalidCollating
	// InvalidBackreference indicates backreference syntax, which this
	// engine does not support.
	InvalidBackreference
	// InvalidSyntax is a catch-all for malformed input not covered above.
	InvalidSyntax
	// ExceedsLength indicates the regex source exceeds 64K bytes.
	ExceedsLength
	// ExceedsLimits indicates an internal table (states, gotos, accepts,
	// lookahead ids) exceeded its encoding limit. Always fatal.
	ExceedsLimits
	// UndefinedName indicates a reference to an undefined named group or
	// Unicode property.
	UndefinedName
)

var kindNames = [...]string{
	MismatchedParens:     "mismatched_parens",
	MismatchedBraces:     "mismatched_braces",
	MismatchedBrackets:   "mismatched_brackets",
	MismatchedQuotation:  "mismatched_quotation",
	EmptyExpression:      "empty_expression",
	EmptyClass:           "empty_class",
	InvalidClass:         "invalid_class",
	InvalidClassRange:    "invalid_class_range",
	InvalidEscape:        "invalid_escape",
	InvalidAnchor:        "invalid_anchor",
	InvalidRepeat:        "invalid_repeat",
	InvalidQuantifier:    "invalid_quantifier",
	InvalidModifier:      "invalid_modifier",
	InvalidCollating:     "invalid_collating",
	InvalidBackreference: "invalid_backreference",
	InvalidSyntax:        "invalid_syntax",
	ExceedsLength:        "exceeds_length",
	ExceedsLimits:        "exceeds_limits",
	UndefinedName:        "undefined_name",
}

// String returns the wire name of the error kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("unknown_error_kind(%d)", uint8(k))
}

// Fatal reports whether an error of this kind always aborts compilation
// regardless of the 'r' option. Only ExceedsLimits is unconditionally
// fatal; every other kind is fatal only when the caller requested it.
func (k Kind) Fatal() bool {
	return k == ExceedsLimits
}

// Error is the error type returned by every compilation stage.
type Error struct {
	Kind   Kind
	Source string // the full regex source text
	Offset int    // byte offset into Source where the error was detected
	Detail string // optional human-readable detail
	Cause  error  // optional wrapped error
}

// New constructs an *Error with no detail or cause.
func New(kind Kind, source string, offset int) *Error {
	return &Error{Kind: kind, Source: source, Offset: offset}
}

// Newf constructs an *Error with a formatted detail message.
func Newf(kind Kind, source string, offset int, format string, args ...any) *Error {
	return &Error{Kind: kind, Source: source, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error that carries an underlying cause.
func Wrap(kind Kind, source string, offset int, cause error) *Error {
	return &Error{Kind: kind, Source: source, Offset: offset, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	at := e.Offset
	if at < 0 {
		at = 0
	}
	if at > len(e.Source) {
		at = len(e.Source)
	}
	msg := fmt.Sprintf("%s: at byte %d in %q", e.Kind, at, e.Source)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison for errors.Is, matching by Kind only so
// that callers can write errors.Is(err, rxerr.New(rxerr.InvalidEscape, "", 0)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

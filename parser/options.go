package parser

// ModFlag is the set of inline modifier letters a pattern can toggle
// via (?flags) or (?flags:...).
type ModFlag uint16

const (
	FlagCaseInsensitive ModFlag = 1 << iota // i
	FlagMultiline                           // m
	FlagDotAll                              // s
	FlagVerbatim                            // q
	FlagFreeSpace                           // x
)

// Options are the compile-time knobs from a single-letter flag
// string, resolved into a struct before parsing begins.
type Options struct {
	// Initial modifier state, equivalent to wrapping the whole pattern
	// in (?im sx...).
	Flags ModFlag

	// NoBracketEscapes disables escape processing inside [...] ('b').
	NoBracketEscapes bool

	// EscapeChar is the escape character; 0 disables escapes ('e=\0').
	EscapeChar byte

	// ThrowOnError makes the first error fatal ('r'); otherwise errors
	// are recorded and parsing continues best-effort.
	ThrowOnError bool
}

// DefaultOptions returns the RE/flex-compatible defaults: backslash
// escapes, no modifiers active, first error recorded rather than
// thrown.
func DefaultOptions() Options {
	return Options{EscapeChar: '\\'}
}

// ParseOptionString decodes a compact flag-letter string into Options.
// Recognized letters: b, e=X, i, m, s, x, q, r (o, p, w, f=, n=, z=
// are accepted but ignored here — they govern code generation and
// diagnostics handled by higher layers, not parsing).
func ParseOptionString(s string) (Options, error) {
	opt := DefaultOptions()
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case 'b':
			opt.NoBracketEscapes = true
		case 'i':
			opt.Flags |= FlagCaseInsensitive
		case 'm':
			opt.Flags |= FlagMultiline
		case 's':
			opt.Flags |= FlagDotAll
		case 'x':
			opt.Flags |= FlagFreeSpace
		case 'q':
			opt.Flags |= FlagVerbatim
		case 'r':
			opt.ThrowOnError = true
		case 'o', 'p', 'w':
			// handled by higher layers (code emission, predictor
			// emission, stderr reporting); no parser-level effect.
		case 'e':
			if i+1 < len(s) && s[i+1] == '=' {
				i += 2
				if i < len(s) {
					opt.EscapeChar = s[i]
					if s[i] == '\\' && i+1 < len(s) && s[i+1] == '0' {
						i++
						opt.EscapeChar = '0'
					}
					if opt.EscapeChar == '0' {
						// e=\0 (or e=0) disables escapes entirely;
						// represented as EscapeChar == 0.
						opt.EscapeChar = 0
					}
				}
			}
		case 'f':
			// f=a,b,...: the file list runs to the end of the string,
			// so none of its sub-values is read as flag letters.
			if i+1 < len(s) && s[i+1] == '=' {
				i = len(s)
			}
		case 'n', 'z':
			// n=NAME / z=NS1.NS2: skip the value up to the next ','.
			for i+1 < len(s) && s[i+1] != ',' {
				i++
			}
		case ',':
			// separator after an n= or z= value
		default:
			// Unknown flags are ignored rather than rejected: this
			// mirrors RE/flex's own tolerant option parsing.
		}
	}
	return opt, nil
}

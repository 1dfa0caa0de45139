package rex

import (
	"strings"

	"github.com/fsmregex/fsmregex/parser"
)

// Options are the compile-time knobs for Compile, parsed from the same
// single-letter flag string the parser package understands plus the
// handful of letters that govern code generation and diagnostics
// rather than parsing itself.
type Options struct {
	parser.Options

	// Name is the pattern name used when emitting generated source or
	// a predictor blob file ('n=NAME'). Defaults to "pattern".
	Name string

	// Namespace is the dotted namespace emitted generated source sits
	// under ('z=NS1.NS2'). Empty means no namespace wrapper.
	Namespace string

	// EmitSource requests optimized FSM source code instead of an
	// opcode table ('o'). Compile itself never emits anything; this
	// flag is read by the codegen package's own entry point.
	EmitSource bool

	// EmitPredictor requests the bitap/rolling-hash predictor table be
	// built alongside the opcode program ('p'). Without it, Compile
	// still builds the cheaper literal prefilter but skips the table.
	EmitPredictor bool

	// WarnStderr requests errors be reported to stderr as well as
	// returned ('w'). Compile itself never writes to stderr; callers
	// that want this behavior check the flag themselves.
	WarnStderr bool

	// OutputFiles names the files generated output should be written
	// to, in the order spec'd by 'f=a,b,...'. Compile never writes
	// files; this is metadata for a driver built on top of it.
	OutputFiles []string
}

// DefaultOptions returns the parser's own defaults plus "pattern" as
// the default Name.
func DefaultOptions() Options {
	return Options{Options: parser.DefaultOptions(), Name: "pattern"}
}

// ParseOptionString decodes a compact flag-letter string into Options,
// deferring the parser-level letters (b, e=X, i, m, s, x, q, r) to
// parser.ParseOptionString and handling o, p, w, f=, n=, z= itself —
// the letters parser.ParseOptionString explicitly accepts but ignores
// as belonging to "higher layers".
func ParseOptionString(s string) (Options, error) {
	popt, err := parser.ParseOptionString(s)
	if err != nil {
		return Options{}, err
	}
	opt := Options{Options: popt, Name: "pattern"}

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case 'o':
			opt.EmitSource = true
		case 'p':
			opt.EmitPredictor = true
		case 'w':
			opt.WarnStderr = true
		case 'n':
			if i+1 < len(s) && s[i+1] == '=' {
				i += 2
				start := i
				for i < len(s) && s[i] != ',' {
					i++
				}
				opt.Name = s[start:i]
				i--
			}
		case 'z':
			if i+1 < len(s) && s[i+1] == '=' {
				i += 2
				start := i
				for i < len(s) && s[i] != ',' {
					i++
				}
				opt.Namespace = s[start:i]
				i--
			}
		case 'f':
			if i+1 < len(s) && s[i+1] == '=' {
				i += 2
				start := i
				for i < len(s) && s[i] != ',' {
					i++
				}
				// f= consumes one comma-separated list extending to the
				// end of the string, matching spec.md's "f=a,b,..."
				// grammar: there is no flag letter that can follow it.
				opt.OutputFiles = strings.Split(s[start:], ",")
				i = len(s)
			}
		}
	}
	return opt, nil
}

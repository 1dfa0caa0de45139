package input

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"github.com/fsmregex/fsmregex/simd"
)

// byName maps a source encoding name to its golang.org/x/text codec.
// UTF-8 is handled separately (it is the identity transform, and
// encoding.Nop round-trips invalid sequences rather than rejecting
// them, which is fine here since the VM treats raw bytes opaquely).
var byName = map[string]encoding.Encoding{
	"utf-16le": unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be": unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"utf-32le": utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM),
	"utf-32be": utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM),

	"latin-1":   charmap.ISO8859_1,
	"iso8859-1": charmap.ISO8859_1,
	"iso8859-2": charmap.ISO8859_2,
	"iso8859-3": charmap.ISO8859_3,
	"iso8859-4": charmap.ISO8859_4,
	"iso8859-5": charmap.ISO8859_5,
	"iso8859-6": charmap.ISO8859_6,
	"iso8859-7": charmap.ISO8859_7,
	"iso8859-8": charmap.ISO8859_8,
	"iso8859-9": charmap.ISO8859_9,
	"iso8859-10": charmap.ISO8859_10,
	"iso8859-13": charmap.ISO8859_13,
	"iso8859-14": charmap.ISO8859_14,
	"iso8859-15": charmap.ISO8859_15,
	"iso8859-16": charmap.ISO8859_16,

	"cp437": charmap.CodePage437,
	"cp850": charmap.CodePage850,
	"cp858": charmap.CodePage858,

	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"windows-1253": charmap.Windows1253,
	"windows-1254": charmap.Windows1254,
	"windows-1255": charmap.Windows1255,
	"windows-1256": charmap.Windows1256,
	"windows-1257": charmap.Windows1257,
	"windows-1258": charmap.Windows1258,

	"ebcdic":    charmap.CodePage037,
	"macroman":  charmap.Macintosh,
	"koi8-r":    charmap.KOI8R,
	"koi8-u":    charmap.KOI8U,
}

// asciiSuperset holds the single-byte encodings whose 0x00-0x7F range is
// byte-identical to ASCII (and therefore to UTF-8 for that range): every
// byName entry except the wide UTF-16/UTF-32 codecs and EBCDIC, whose code
// points diverge from ASCII even below 0x80. Decode uses this to skip the
// x/text transform entirely on an all-ASCII buffer in one of these
// encodings, since the decode would be the identity transform anyway.
var asciiSuperset = map[string]bool{
	"latin-1":      true,
	"iso8859-1":    true,
	"iso8859-2":    true,
	"iso8859-3":    true,
	"iso8859-4":    true,
	"iso8859-5":    true,
	"iso8859-6":    true,
	"iso8859-7":    true,
	"iso8859-8":    true,
	"iso8859-9":    true,
	"iso8859-10":   true,
	"iso8859-13":   true,
	"iso8859-14":   true,
	"iso8859-15":   true,
	"iso8859-16":   true,
	"cp437":        true,
	"cp850":        true,
	"cp858":        true,
	"windows-1250": true,
	"windows-1251": true,
	"windows-1252": true,
	"windows-1253": true,
	"windows-1254": true,
	"windows-1255": true,
	"windows-1256": true,
	"windows-1257": true,
	"windows-1258": true,
	"macroman":     true,
	"koi8-r":       true,
	"koi8-u":       true,
}

// Decode transcodes raw from the named source encoding into UTF-8. The
// empty string and "utf-8" are both treated as already-UTF-8 (a no-op
// copy). For an asciiSuperset encoding, Decode first checks simd.IsASCII:
// an all-ASCII buffer decodes to itself under any of these charmaps, so
// the byte-by-byte x/text transform is skipped in favor of the same
// copy the UTF-8 path takes.
func Decode(name string, raw []byte) ([]byte, error) {
	if name == "" || name == "utf-8" {
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil
	}
	enc, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("input: unknown source encoding %q", name)
	}
	if asciiSuperset[name] {
		if simd.IsASCII(raw) {
			out := make([]byte, len(raw))
			copy(out, raw)
			return out, nil
		}
		// The leading ASCII run (if any) decodes to itself under this
		// charmap; only the byte at and after the first non-ASCII byte
		// needs the x/text transform. CountNonASCII sizes the output
		// buffer's capacity for the worst case where every remaining
		// byte expands to a 2-byte UTF-8 sequence (true of every
		// asciiSuperset single-byte charmap: codepoints 0x80-0xFF never
		// need a 3- or 4-byte encoding).
		if first := simd.FirstNonASCII(raw); first > 0 {
			rest, _, err := transform.Bytes(enc.NewDecoder(), raw[first:])
			if err != nil {
				return nil, fmt.Errorf("input: decoding %q: %w", name, err)
			}
			out := make([]byte, 0, first+2*simd.CountNonASCII(raw[first:]))
			out = append(out, raw[:first]...)
			out = append(out, rest...)
			return out, nil
		}
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("input: decoding %q: %w", name, err)
	}
	return out, nil
}

// DetectBOM inspects the leading bytes of raw for a byte-order mark and
// returns the encoding name it implies and the remaining bytes with the
// mark stripped. If no BOM is present, it returns ("", raw) unchanged,
// leaving the caller to assume UTF-8.
func DetectBOM(raw []byte) (name string, rest []byte) {
	switch {
	case len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF:
		return "utf-8", raw[3:]
	case len(raw) >= 4 && raw[0] == 0xFF && raw[1] == 0xFE && raw[2] == 0x00 && raw[3] == 0x00:
		return "utf-32le", raw[4:]
	case len(raw) >= 4 && raw[0] == 0x00 && raw[1] == 0x00 && raw[2] == 0xFE && raw[3] == 0xFF:
		return "utf-32be", raw[4:]
	case len(raw) >= 2 && raw[0] == 0xFF && raw[1] == 0xFE:
		return "utf-16le", raw[2:]
	case len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF:
		return "utf-16be", raw[2:]
	default:
		return "", raw
	}
}

// FromEncoded builds an Input from raw bytes in the named source
// encoding, auto-detecting a byte-order mark when name is empty.
func FromEncoded(name string, raw []byte) (*Input, error) {
	if name == "" {
		name, raw = DetectBOM(raw)
	}
	decoded, err := Decode(name, raw)
	if err != nil {
		return nil, err
	}
	return New(decoded), nil
}

package lexer

import (
	"testing"

	"github.com/fsmregex/fsmregex/rex"
)

func mustCompile(t *testing.T, src string) *rex.Pattern {
	t.Helper()
	p, err := rex.Compile(src, rex.DefaultOptions())
	if err != nil {
		t.Fatalf("rex.Compile(%q): %v", src, err)
	}
	return p
}

func TestScan_AlternationTokenSequence(t *testing.T) {
	pat := mustCompile(t, "ab|xy")
	l := New(pat, []byte("abxy"), Config{})

	want := []int{1, 2}
	for i, w := range want {
		tok, done, err := l.Scan()
		if err != nil || done {
			t.Fatalf("Scan[%d]: err=%v done=%v", i, err, done)
		}
		if tok.Accept != w {
			t.Errorf("Scan[%d].Accept = %d, want %d", i, tok.Accept, w)
		}
	}
	if _, done, err := l.Scan(); err != nil || !done {
		t.Fatalf("final Scan: err=%v done=%v, want done=true", err, done)
	}
}

func TestScan_NegativePatternDiscardsAndContinues(t *testing.T) {
	pat := mustCompile(t, `(?^bad)|good`)
	l := New(pat, []byte("badgood"), Config{})

	tok, done, err := l.Scan()
	if err != nil || done {
		t.Fatalf("Scan: err=%v done=%v", err, done)
	}
	if tok.Accept != 2 || string(tok.Text([]byte("badgood"))) != "good" {
		t.Errorf("Scan() = %+v, want accept 2 matching \"good\"", tok)
	}
}

func TestScan_JammedReportsPosition(t *testing.T) {
	pat := mustCompile(t, "a+")
	l := New(pat, []byte("aab"), Config{})

	if _, done, err := l.Scan(); err != nil || done {
		t.Fatalf("first Scan: err=%v done=%v", err, done)
	}
	_, done, err := l.Scan()
	if done || err == nil {
		t.Fatalf("second Scan: done=%v err=%v, want a JammedError", done, err)
	}
	jerr, ok := err.(*JammedError)
	if !ok {
		t.Fatalf("err = %T, want *JammedError", err)
	}
	if jerr.Next != 'b' || jerr.AtEOB {
		t.Errorf("JammedError = %+v, want Next='b' AtEOB=false", jerr)
	}
}

func TestScan_LineColumnTracksNewlines(t *testing.T) {
	pat := mustCompile(t, "[a-z]+|\n")
	l := New(pat, []byte("foo\nbar"), Config{})

	tok, _, err := l.Scan()
	if err != nil || tok.Line != 1 || tok.Col != 1 {
		t.Fatalf("first token = %+v err=%v, want line 1 col 1", tok, err)
	}
	nl, _, err := l.Scan()
	if err != nil || nl.Line != 1 {
		t.Fatalf("newline token = %+v err=%v, want line 1", nl, err)
	}
	tok2, _, err := l.Scan()
	if err != nil || tok2.Line != 2 || tok2.Col != 1 {
		t.Fatalf("second token = %+v err=%v, want line 2 col 1", tok2, err)
	}
}

func TestFind_SkipsUnmatchedSpans(t *testing.T) {
	pat := mustCompile(t, "cat")
	l := New(pat, []byte("xx cat yy cat zz"), Config{})

	tokens, gaps := l.FindAll()
	if len(tokens) != 2 {
		t.Fatalf("FindAll: got %d tokens, want 2", len(tokens))
	}
	if len(gaps) == 0 {
		t.Fatalf("FindAll: expected at least one unmatched gap")
	}
	for _, tok := range tokens {
		if tok.Accept != 1 {
			t.Errorf("token accept = %d, want 1", tok.Accept)
		}
	}
}

func TestIndent_PushesStopOnColumnIncrease(t *testing.T) {
	pat := mustCompile(t, `[ \t]*\i|[ \t]*\k|[a-z]+|\n`)
	l := New(pat, []byte("a\n  b\n"), Config{})

	// "a"
	if tok, _, err := l.Scan(); err != nil || tok.Accept != 3 {
		t.Fatalf("token 1 = %+v err=%v, want accept 3 (letters)", tok, err)
	}
	// "\n"
	if tok, _, err := l.Scan(); err != nil || tok.Accept != 4 {
		t.Fatalf("token 2 = %+v err=%v, want accept 4 (newline)", tok, err)
	}
	// "  " should fire \i and push a stop at column 2
	if tok, _, err := l.Scan(); err != nil || tok.Accept != 1 {
		t.Fatalf("token 3 = %+v err=%v, want accept 1 (indent)", tok, err)
	}
	if got := l.Stops(); len(got) != 1 || got[0] != 2 {
		t.Errorf("Stops() = %v, want [2]", got)
	}
}

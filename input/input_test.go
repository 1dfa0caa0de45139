package input

import "testing"

func TestInput_PeekAdvanceUnget(t *testing.T) {
	in := New([]byte("ab"))

	b, ok := in.Peek()
	if !ok || b != 'a' {
		t.Fatalf("Peek() = %q, %v, want 'a', true", b, ok)
	}
	b, ok = in.Advance()
	if !ok || b != 'a' {
		t.Fatalf("Advance() = %q, %v, want 'a', true", b, ok)
	}
	in.Unget()
	if in.Pos() != 0 {
		t.Fatalf("Pos() = %d after Unget, want 0", in.Pos())
	}

	in.Advance()
	in.Advance()
	if _, ok := in.Advance(); ok {
		t.Fatalf("Advance() past end of buffer returned ok=true")
	}
}

func TestInput_Boundaries(t *testing.T) {
	in := New([]byte("a\nb"))

	if !in.AtBOB() || in.AtEOB() {
		t.Fatalf("at start: AtBOB=%v AtEOB=%v, want true,false", in.AtBOB(), in.AtEOB())
	}
	if !in.AtBOL() {
		t.Fatalf("at start: AtBOL=false, want true")
	}

	in.Advance() // consume 'a'
	if in.AtBOL() {
		t.Fatalf("after 'a': AtBOL=true, want false")
	}
	if !in.AtEOL() {
		t.Fatalf("before '\\n': AtEOL=false, want true")
	}

	in.Advance() // consume '\n'
	if !in.AtBOL() {
		t.Fatalf("after '\\n': AtBOL=false, want true")
	}

	in.Advance() // consume 'b'
	if !in.AtEOB() {
		t.Fatalf("after consuming all bytes: AtEOB=false, want true")
	}
}

func TestDetectBOM(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"utf-8 bom", []byte{0xEF, 0xBB, 0xBF, 'x'}, "utf-8"},
		{"utf-16le bom", []byte{0xFF, 0xFE, 'x', 0}, "utf-16le"},
		{"utf-16be bom", []byte{0xFE, 0xFF, 0, 'x'}, "utf-16be"},
		{"no bom", []byte("plain"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := DetectBOM(tt.raw)
			if got != tt.want {
				t.Errorf("DetectBOM(%v) name = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecode_Latin1(t *testing.T) {
	// 0xE9 in Latin-1 is 'é', which is the two-byte UTF-8 sequence
	// 0xC3 0xA9.
	out, err := Decode("latin-1", []byte{'h', 'i', 0xE9})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	want := []byte{'h', 'i', 0xC3, 0xA9}
	if string(out) != string(want) {
		t.Errorf("Decode(latin-1) = %v, want %v", out, want)
	}
}

func TestDecode_UTF8Passthrough(t *testing.T) {
	out, err := Decode("utf-8", []byte("hello"))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if string(out) != "hello" {
		t.Errorf("Decode(utf-8) = %q, want %q", out, "hello")
	}
}

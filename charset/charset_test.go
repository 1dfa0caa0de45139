package charset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSetAndTest(t *testing.T) {
	var s CharSet
	s.Set('a')
	s.Set('z')
	if !s.Test('a') || !s.Test('z') {
		t.Fatalf("expected a and z to be members")
	}
	if s.Test('b') {
		t.Fatalf("did not expect b to be a member")
	}
}

func TestSetRangeAndRanges(t *testing.T) {
	s := FromRange('a', 'f')
	got := s.Ranges()
	want := [][2]byte{{'a', 'f'}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Ranges() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlip256PreservesMeta(t *testing.T) {
	var s CharSet
	s.Set('a')
	s.SetMeta(MetaBase + 3)

	s.Flip256()

	if s.Test('a') {
		t.Fatalf("expected 'a' to be cleared after Flip256")
	}
	if !s.Test('b') {
		t.Fatalf("expected 'b' to be set after Flip256")
	}
	if !s.TestMeta(MetaBase + 3) {
		t.Fatalf("Flip256 must not disturb meta bits")
	}
}

// TestAlphabetDistributivity checks (A ∪ B) ∩ C = (A ∩ C) ∪ (B ∩ C) over
// a range of small random-ish sets.
func TestAlphabetDistributivity(t *testing.T) {
	sets := []CharSet{
		FromRange(0, 50),
		FromRange(30, 90),
		FromRange(10, 200),
		FromRange('a', 'z'),
		FromRange('A', 'Z'),
		Full(),
	}

	for i, a := range sets {
		for j, b := range sets {
			for k, c := range sets {
				lhs := Intersect(Union(a, b), c)
				rhs := Union(Intersect(a, c), Intersect(b, c))
				if !Equal(lhs, rhs) {
					t.Fatalf("distributivity failed for sets[%d], sets[%d], sets[%d]", i, j, k)
				}
			}
		}
	}
}

func TestSubsetAndEqual(t *testing.T) {
	a := FromRange('a', 'z')
	b := FromRange('a', 'Z'+26) // 'Z'+26 == 't', so b is a..t, a subset of a
	_ = b
	full := Full()
	if !Subset(a, full) {
		t.Fatalf("any set must be a subset of Full()")
	}
	if !Equal(a, a) {
		t.Fatalf("a set must equal itself")
	}
}

func TestMinMax(t *testing.T) {
	s := FromRange('c', 'k')
	lo, ok := s.Min()
	if !ok || lo != 'c' {
		t.Fatalf("Min() = %v, %v; want 'c', true", lo, ok)
	}
	hi, ok := s.Max()
	if !ok || hi != 'k' {
		t.Fatalf("Max() = %v, %v; want 'k', true", hi, ok)
	}

	var empty CharSet
	if _, ok := empty.Min(); ok {
		t.Fatalf("Min() on empty set should report ok=false")
	}
}

func TestCompareTotalOrder(t *testing.T) {
	a := FromByte('a')
	b := FromByte('b')
	if Compare(a, b) >= 0 {
		t.Fatalf("Compare(a,b) should be negative")
	}
	if Compare(b, a) <= 0 {
		t.Fatalf("Compare(b,a) should be positive")
	}
	if Compare(a, a) != 0 {
		t.Fatalf("Compare(a,a) should be zero")
	}
}

func TestCount(t *testing.T) {
	s := FromRange('a', 'z')
	if got := s.Count(); got != 26 {
		t.Fatalf("Count() = %d, want 26", got)
	}
}

func TestCharSetAsMapKey(t *testing.T) {
	m := map[CharSet]int{}
	m[FromByte('x')] = 1
	m[FromByte('y')] = 2
	if m[FromByte('x')] != 1 || m[FromByte('y')] != 2 {
		t.Fatalf("CharSet must be usable as a map key with value semantics")
	}
}

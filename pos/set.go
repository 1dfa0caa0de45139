package pos

import "sort"

// Set is an ordered set of Positions. It is the workhorse collection of
// the parser and DFA builder: firstpos, lastpos, followpos and DFA
// subset-construction states are all Sets.
//
// The zero value is an empty, usable Set, grounded on the same
// "zero-configuration" style internal/sparse.SparseSet uses for its
// dense/sparse member arrays, generalized here to an arbitrary
// comparable key (Position) instead of a bounded uint32 universe.
type Set struct {
	members map[Position]struct{}
	order   []Position
}

// NewSet builds a Set containing the given positions.
func NewSet(ps ...Position) *Set {
	s := &Set{}
	s.AddAll(ps...)
	return s
}

// Add inserts p into the set if not already present.
func (s *Set) Add(p Position) {
	if s.members == nil {
		s.members = make(map[Position]struct{})
	}
	if _, ok := s.members[p]; ok {
		return
	}
	s.members[p] = struct{}{}
	s.order = append(s.order, p)
}

// AddAll inserts every position in ps.
func (s *Set) AddAll(ps ...Position) {
	for _, p := range ps {
		s.Add(p)
	}
}

// AddSet inserts every member of other into s.
func (s *Set) AddSet(other *Set) {
	if other == nil {
		return
	}
	for _, p := range other.order {
		s.Add(p)
	}
}

// Contains reports whether p is a member of the set.
func (s *Set) Contains(p Position) bool {
	if s == nil || s.members == nil {
		return false
	}
	_, ok := s.members[p]
	return ok
}

// Remove deletes p from the set, if present.
func (s *Set) Remove(p Position) {
	if s == nil || s.members == nil {
		return
	}
	if _, ok := s.members[p]; !ok {
		return
	}
	delete(s.members, p)
	for i, q := range s.order {
		if q == p {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of members.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// IsEmpty reports whether the set has no members.
func (s *Set) IsEmpty() bool { return s.Len() == 0 }

// Slice returns the members in insertion order. The returned slice must
// not be mutated by the caller.
func (s *Set) Slice() []Position {
	if s == nil {
		return nil
	}
	return s.order
}

// Sorted returns the members in canonical Less order, suitable for
// hashing into a deterministic DFA state key.
func (s *Set) Sorted() []Position {
	out := append([]Position(nil), s.Slice()...)
	sort.Slice(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	c := &Set{}
	c.AddAll(s.Slice()...)
	return c
}

// Any reports whether f returns true for at least one member.
func (s *Set) Any(f func(Position) bool) bool {
	for _, p := range s.Slice() {
		if f(p) {
			return true
		}
	}
	return false
}

// ForEach calls f for every member in insertion order.
func (s *Set) ForEach(f func(Position)) {
	for _, p := range s.Slice() {
		f(p)
	}
}

// Filter returns a new Set containing only the members for which keep
// returns true.
func (s *Set) Filter(keep func(Position) bool) *Set {
	out := &Set{}
	for _, p := range s.Slice() {
		if keep(p) {
			out.Add(p)
		}
	}
	return out
}

// Key returns a canonical, comparable representation of the set's
// membership, suitable as a map key for DFA state deduplication: hash
// its position set and look up an existing state with the same set
// before allocating a new one.
func (s *Set) Key() string {
	sorted := s.Sorted()
	buf := make([]byte, 0, len(sorted)*12)
	for _, p := range sorted {
		buf = appendUint32(buf, uint32(int32(p.Loc)))
		buf = appendUint16(buf, p.Iter)
		buf = append(buf, byte(p.Lazy), byte(p.Flags), 0)
	}
	return string(buf)
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendUint16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

// Package sparse provides a sparse set data structure for efficient membership testing.
//
// A sparse set is a data structure that supports O(1) insertion, deletion, and membership
// testing while maintaining a dense list of elements. It's particularly useful for DFA
// simulation where we need to track visited states.
package sparse

// SparseSet is a set of uint32 values that supports O(1) operations.
// It maintains both a sparse array (for membership testing) and a dense array
// (for iteration). The sparse array maps values to indices in the dense array.
//
// This implementation is optimized for cases where the universe of possible
// values is known and relatively small (e.g., position or DFA state IDs).
type SparseSet struct {
	sparse []uint32 // Maps value -> index in dense
	dense  []uint32 // Contains the actual values
	size   uint32   // Current number of elements
}

// defaultCapacity is used when NewSparseSet or Resize is asked for
// capacity 0: a zero-sized sparse array can never hold a value, so an
// explicit zero means "I don't know the universe size yet, give me a
// reasonable default" rather than "hold nothing."
const defaultCapacity = 64

// NewSparseSet creates a new sparse set with the given capacity.
// The capacity represents the maximum value that can be stored (exclusive).
// A capacity of 0 is treated as defaultCapacity.
func NewSparseSet(capacity uint32) *SparseSet {
	if capacity == 0 {
		capacity = defaultCapacity
	}
	return &SparseSet{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
		size:   0,
	}
}

// Insert adds a value to the set, reporting whether it was newly
// added (false if it was already present).
// Panics if value >= capacity.
func (s *SparseSet) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}

	// Add to dense array
	s.dense = append(s.dense, value)
	// Map value to its index in dense
	s.sparse[value] = s.size
	s.size++
	return true
}

// Contains returns true if the value is in the set
func (s *SparseSet) Contains(value uint32) bool {
	// Bounds check: value must be within sparse array bounds
	// Check for potential overflow when converting len to uint32
	if len(s.sparse) > 0x7FFFFFFF {
		return false // len too large for safe conversion
	}
	//nolint:gosec // G115: len is checked above for safe conversion to uint32
	sparseLen := uint32(len(s.sparse))
	if value >= sparseLen {
		return false
	}
	idx := s.sparse[value]
	return idx < s.size && s.dense[idx] == value
}

// Remove removes a value from the set.
// If the value is not present, this is a no-op.
func (s *SparseSet) Remove(value uint32) {
	if !s.Contains(value) {
		return
	}

	// Get index of value in dense array
	idx := s.sparse[value]

	// Move last element to this position (swap and pop)
	lastValue := s.dense[s.size-1]
	s.dense[idx] = lastValue
	s.sparse[lastValue] = idx

	s.size--
	s.dense = s.dense[:s.size]
}

// Clear removes all elements from the set in O(1) time
func (s *SparseSet) Clear() {
	s.size = 0
	s.dense = s.dense[:0]
}

// Size returns the number of elements in the set
func (s *SparseSet) Size() int {
	return int(s.size)
}

// Len is an alias for Size, matching the naming most of this module's
// other collection types (pos.Set, literal.Seq) use.
func (s *SparseSet) Len() int {
	return int(s.size)
}

// Capacity returns the largest value (exclusive) the set can hold
// without a Resize.
func (s *SparseSet) Capacity() int {
	return len(s.sparse)
}

// MemoryUsage returns an estimate, in bytes, of the set's backing
// arrays: the sparse array is always allocated at full capacity, and
// the dense array is reported at its allocated capacity rather than
// its current length, since that's the high-water mark Insert can
// reach before the next Resize.
func (s *SparseSet) MemoryUsage() int {
	const wordSize = 4 // uint32
	return len(s.sparse)*wordSize + cap(s.dense)*wordSize
}

// Resize changes the set's capacity. Growing preserves every member
// already present (only the sparse array's backing storage needs to
// extend, since dense values and their indices don't move). Shrinking
// to an equal or smaller capacity clears the set first: a stale
// mapping into a now-truncated sparse array would be unsafe to keep.
// A capacity of 0 is treated as defaultCapacity.
func (s *SparseSet) Resize(capacity uint32) {
	if capacity == 0 {
		capacity = defaultCapacity
	}
	if int(capacity) <= len(s.sparse) {
		s.sparse = make([]uint32, capacity)
		s.dense = make([]uint32, 0, capacity)
		s.size = 0
		return
	}

	grown := make([]uint32, capacity)
	copy(grown, s.sparse)
	s.sparse = grown

	grownDense := make([]uint32, len(s.dense), capacity)
	copy(grownDense, s.dense)
	s.dense = grownDense
}

// Clone returns an independent copy of the set.
func (s *SparseSet) Clone() *SparseSet {
	return &SparseSet{
		sparse: append([]uint32(nil), s.sparse...),
		dense:  append([]uint32(nil), s.dense...),
		size:   s.size,
	}
}

// IsEmpty returns true if the set contains no elements
func (s *SparseSet) IsEmpty() bool {
	return s.size == 0
}

// Values returns a slice of all values in the set.
// The returned slice is valid until the next mutation.
func (s *SparseSet) Values() []uint32 {
	return s.dense[:s.size]
}

// Iter calls the given function for each value in the set, in the
// order of the dense array: insertion order, except that Remove moves
// the last element into the removed element's slot.
func (s *SparseSet) Iter(f func(uint32)) {
	for i := uint32(0); i < s.size; i++ {
		f(s.dense[i])
	}
}

// SparseSets is a pair of SparseSets used for double-buffered state
// tracking: Set1 holds the current step's members while Set2 is built
// up for the next step, then Swap exchanges their roles without
// copying either array. This is the shape a Thompson-construction VM
// uses for its current/next active-thread lists; Set1 and Set2 are
// exported directly since callers need to both read and populate
// whichever one is "next" on a given step.
type SparseSets struct {
	Set1 *SparseSet
	Set2 *SparseSet
}

// NewSparseSets creates a pair of sparse sets, both with the given
// capacity (0 defaults to defaultCapacity).
func NewSparseSets(capacity uint32) *SparseSets {
	return &SparseSets{
		Set1: NewSparseSet(capacity),
		Set2: NewSparseSet(capacity),
	}
}

// Swap exchanges Set1 and Set2 in place.
func (ss *SparseSets) Swap() {
	ss.Set1, ss.Set2 = ss.Set2, ss.Set1
}

// Clear empties both sets.
func (ss *SparseSets) Clear() {
	ss.Set1.Clear()
	ss.Set2.Clear()
}

// Resize resizes both sets to the given capacity.
func (ss *SparseSets) Resize(capacity uint32) {
	ss.Set1.Resize(capacity)
	ss.Set2.Resize(capacity)
}

// MemoryUsage returns the combined memory usage of both sets.
func (ss *SparseSets) MemoryUsage() int {
	return ss.Set1.MemoryUsage() + ss.Set2.MemoryUsage()
}

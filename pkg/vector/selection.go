package vector

// SelectVector maps logical row positions to physical indexes in a vector's
// backing storage. A nil or empty selection is the identity mapping; this is
// the fast path for flat vectors.
type SelectVector struct {
	sel []int
}

// NewSelectVector returns a selection with room for count entries.
func NewSelectVector(count int) *SelectVector {
	return &SelectVector{sel: make([]int, count)}
}

// ZeroSelectVector returns a selection mapping every one of count positions
// to index 0, used to expose constant vectors through the flattened view.
func ZeroSelectVector(count int) *SelectVector {
	// entries are zero-initialized
	return &SelectVector{sel: make([]int, count)}
}

// Index resolves a logical position to a physical index.
func (s *SelectVector) Index(pos int) int {
	if s == nil || s.sel == nil {
		return pos
	}
	return s.sel[pos]
}

// Set assigns the physical index for a logical position.
func (s *SelectVector) Set(pos, index int) {
	s.sel[pos] = index
}

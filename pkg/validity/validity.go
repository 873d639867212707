// Package validity implements bit-packed per-row null tracking for columnar
// data. A Mask holds one bit per row (1 = valid, 0 = null) in 64-bit words,
// with a first-class "all valid" sentinel state that requires no storage at
// all: a nil word slice means every row is valid. Masks either own their
// words or borrow them from raw chunk storage.
package validity

import (
	"math/bits"
	"unsafe"
)

const (
	// BitsPerWord is the number of rows tracked per mask word.
	BitsPerWord = 64

	// WordSize is the byte width of one mask word.
	WordSize = 8

	// DefaultCapacity is the row capacity a mask is sized for when storage
	// is first materialized lazily. It matches the engine batch capacity.
	DefaultCapacity = 1024

	allValidWord = ^uint64(0)
)

// EntryCount returns the number of words needed to track count rows.
func EntryCount(count int) int {
	return (count + BitsPerWord - 1) / BitsPerWord
}

// BytesNeeded returns the byte size of the word array tracking count rows.
func BytesNeeded(count int) int {
	return EntryCount(count) * WordSize
}

// Mask is a bit-packed validity mask. The zero value is the all-valid
// sentinel.
type Mask struct {
	words []uint64
}

// NewMask returns a mask with owned storage for count rows, all valid.
func NewMask(count int) Mask {
	m := Mask{}
	m.init(count)
	return m
}

// FromWords returns a mask borrowing the given word storage.
func FromWords(words []uint64) Mask {
	return Mask{words: words}
}

// FromBytes returns a mask borrowing word storage from a raw byte region,
// as laid out in chunk storage. The region must hold at least
// BytesNeeded(count) bytes.
func FromBytes(b []byte, count int) Mask {
	n := EntryCount(count)
	if len(b) < n*WordSize {
		panic("validity: byte region too small for mask")
	}
	return Mask{words: unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), n)}
}

func (m *Mask) init(count int) {
	n := EntryCount(count)
	m.words = make([]uint64, n)
	for i := range m.words {
		m.words[i] = allValidWord
	}
}

// AllValid reports whether the mask is in the no-storage sentinel state in
// which every row is valid.
func (m *Mask) AllValid() bool {
	return m.words == nil
}

// Words exposes the underlying word storage. Nil for the sentinel state.
func (m *Mask) Words() []uint64 {
	return m.words
}

// Reset returns the mask to the all-valid sentinel state.
func (m *Mask) Reset() {
	m.words = nil
}

// RowIsValid reports whether the given row is valid.
func (m *Mask) RowIsValid(row int) bool {
	if m.words == nil {
		return true
	}
	entry := row / BitsPerWord
	if entry >= len(m.words) {
		return true
	}
	return m.words[entry]&(1<<(uint(row)%BitsPerWord)) != 0
}

// SetValid marks the given row valid. A no-op in the sentinel state or
// beyond the covered words, where rows are implicitly valid.
func (m *Mask) SetValid(row int) {
	if m.words == nil || row/BitsPerWord >= len(m.words) {
		return
	}
	m.words[row/BitsPerWord] |= 1 << (uint(row) % BitsPerWord)
}

// SetInvalid marks the given row null. Storage is materialized lazily,
// sized for at least DefaultCapacity rows, and grown when the row falls
// beyond the covered words.
func (m *Mask) SetInvalid(row int) {
	if m.words == nil {
		capacity := DefaultCapacity
		if row >= capacity {
			capacity = row + 1
		}
		m.init(capacity)
	} else if row/BitsPerWord >= len(m.words) {
		m.Resize(len(m.words)*BitsPerWord, row+1)
	}
	m.words[row/BitsPerWord] &^= 1 << (uint(row) % BitsPerWord)
}

// Set marks the given row valid or null.
func (m *Mask) Set(row int, valid bool) {
	if valid {
		m.SetValid(row)
	} else {
		m.SetInvalid(row)
	}
}

// SetAllValid sets every bit covering count rows. Unlike Reset, this writes
// all-ones into storage, materializing it if necessary; it is used to
// initialize freshly allocated chunk regions whose bytes are undefined.
func (m *Mask) SetAllValid(count int) {
	if m.words == nil {
		m.init(count)
		return
	}
	n := EntryCount(count)
	for i := 0; i < n && i < len(m.words); i++ {
		m.words[i] = allValidWord
	}
}

// Combine intersects the mask with other over count rows: a row is valid in
// the result only if it is valid in both operands. If either operand is the
// sentinel the other is taken as-is; if both masks alias the same storage
// the call is a no-op. Otherwise fresh storage is allocated.
func (m *Mask) Combine(other Mask, count int) {
	if other.AllValid() {
		// X & 1 = X
		return
	}
	if m.AllValid() {
		// 1 & Y = Y
		m.words = other.words
		return
	}
	if &m.words[0] == &other.words[0] {
		// X & X = X
		return
	}
	old := m.words
	m.init(count)
	n := EntryCount(count)
	for i := 0; i < n; i++ {
		m.words[i] = old[i] & other.words[i]
	}
}

// Resize grows owned storage from oldCount to newCount rows, preserving
// existing bits and marking all rows in the newly covered words valid.
// A no-op in the sentinel state, which needs no storage to grow.
func (m *Mask) Resize(oldCount, newCount int) {
	if m.words == nil || newCount <= oldCount {
		return
	}
	oldWords := EntryCount(oldCount)
	newWords := EntryCount(newCount)
	grown := make([]uint64, newWords)
	copy(grown, m.words[:min(oldWords, len(m.words))])
	for i := oldWords; i < newWords; i++ {
		grown[i] = allValidWord
	}
	m.words = grown
}

// SliceFrom rebuilds the mask as a window of source starting at offset and
// covering count rows, reindexed to bit 0: bit i of the result equals bit
// offset+i of source. Bits past the end of the source storage are treated
// as valid.
func (m *Mask) SliceFrom(source Mask, offset, count int) {
	if source.AllValid() {
		m.words = nil
		return
	}
	if offset == 0 {
		m.words = source.words
		return
	}
	whole := offset / BitsPerWord
	sub := uint(offset % BitsPerWord)
	src := source.words
	out := make([]uint64, EntryCount(count))
	for i := range out {
		w := allValidWord
		if i+whole < len(src) {
			w = src[i+whole] >> sub
			if sub > 0 {
				if i+whole+1 < len(src) {
					w |= src[i+whole+1] << (BitsPerWord - sub)
				} else {
					w |= allValidWord << (BitsPerWord - sub)
				}
			}
		}
		out[i] = w
	}
	m.words = out
}

// CopyFrom replaces the mask contents with a copy of other over count rows.
func (m *Mask) CopyFrom(other Mask, count int) {
	if other.AllValid() {
		m.words = nil
		return
	}
	n := EntryCount(count)
	m.words = make([]uint64, n)
	copy(m.words, other.words[:n])
}

// CountValid returns the number of valid rows among the first count rows.
func (m *Mask) CountValid(count int) int {
	if m.words == nil {
		return count
	}
	valid := 0
	whole := count / BitsPerWord
	for i := 0; i < whole; i++ {
		valid += bits.OnesCount64(m.words[i])
	}
	if rem := uint(count % BitsPerWord); rem > 0 {
		valid += bits.OnesCount64(m.words[whole] & (1<<rem - 1))
	}
	return valid
}

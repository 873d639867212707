package validity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroValueIsAllValid(t *testing.T) {
	var m Mask
	assert.True(t, m.AllValid())
	assert.Nil(t, m.Words())
	for _, row := range []int{0, 63, 64, 1023, 100000} {
		assert.True(t, m.RowIsValid(row))
	}
}

func TestSetInvalidMaterializesStorage(t *testing.T) {
	var m Mask
	m.SetInvalid(5)
	require.False(t, m.AllValid())
	assert.False(t, m.RowIsValid(5))
	assert.True(t, m.RowIsValid(4))
	assert.True(t, m.RowIsValid(6))
	assert.Len(t, m.Words(), EntryCount(DefaultCapacity))

	m.SetValid(5)
	assert.True(t, m.RowIsValid(5))
}

func TestSetInvalidGrowsBeyondCoveredWords(t *testing.T) {
	m := NewMask(64)
	m.SetInvalid(3)
	m.SetInvalid(100)
	assert.False(t, m.RowIsValid(3))
	assert.False(t, m.RowIsValid(100))
	assert.True(t, m.RowIsValid(70))
	assert.True(t, m.RowIsValid(99))
}

func TestSetValidBeyondStorageIsNoop(t *testing.T) {
	m := NewMask(64)
	m.SetValid(500)
	assert.True(t, m.RowIsValid(500))
	assert.Len(t, m.Words(), 1)
}

func TestCombineAllValidOperands(t *testing.T) {
	// X & 1 = X
	a := NewMask(128)
	a.SetInvalid(10)
	var b Mask
	a.Combine(b, 128)
	assert.False(t, a.RowIsValid(10))
	assert.True(t, a.RowIsValid(11))

	// 1 & Y = Y: the result adopts Y's storage
	var c Mask
	d := NewMask(128)
	d.SetInvalid(90)
	c.Combine(d, 128)
	require.False(t, c.AllValid())
	assert.False(t, c.RowIsValid(90))
	assert.Same(t, &d.Words()[0], &c.Words()[0])
}

func TestCombineSameStorageIsNoop(t *testing.T) {
	a := NewMask(128)
	a.SetInvalid(7)
	b := FromWords(a.Words())
	a.Combine(b, 128)
	assert.False(t, a.RowIsValid(7))
	assert.Same(t, &b.Words()[0], &a.Words()[0])
}

func TestCombineIntersects(t *testing.T) {
	a := NewMask(192)
	a.SetInvalid(3)
	a.SetInvalid(64)
	b := NewMask(192)
	b.SetInvalid(64)
	b.SetInvalid(130)

	aWords := a.Words()
	a.Combine(b, 192)

	for row := 0; row < 192; row++ {
		want := row != 3 && row != 64 && row != 130
		assert.Equal(t, want, a.RowIsValid(row), "row %d", row)
	}
	// fresh storage: neither operand's words were written through
	assert.NotSame(t, &aWords[0], &a.Words()[0])
	assert.False(t, b.RowIsValid(130))
	assert.True(t, b.RowIsValid(3))
}

func TestResizePreservesAndExtends(t *testing.T) {
	m := NewMask(64)
	m.SetInvalid(5)
	m.SetInvalid(63)
	m.Resize(64, 200)
	assert.False(t, m.RowIsValid(5))
	assert.False(t, m.RowIsValid(63))
	for _, row := range []int{64, 128, 199} {
		assert.True(t, m.RowIsValid(row))
	}
	assert.Len(t, m.Words(), EntryCount(200))
}

func TestResizeSentinelStaysSentinel(t *testing.T) {
	var m Mask
	m.Resize(64, 4096)
	assert.True(t, m.AllValid())
}

func TestResizeShrinkIsNoop(t *testing.T) {
	m := NewMask(128)
	m.SetInvalid(100)
	m.Resize(128, 64)
	assert.Len(t, m.Words(), 2)
	assert.False(t, m.RowIsValid(100))
}

// sliceReference is the bit-at-a-time definition SliceFrom must match.
func sliceReference(source Mask, offset, count int) []bool {
	out := make([]bool, count)
	for i := range out {
		out[i] = source.RowIsValid(offset + i)
	}
	return out
}

func TestSliceFromMatchesReference(t *testing.T) {
	source := NewMask(256)
	for row := 0; row < 256; row += 7 {
		source.SetInvalid(row)
	}
	source.SetInvalid(63)
	source.SetInvalid(64)
	source.SetInvalid(255)

	for _, tc := range []struct{ offset, count int }{
		{1, 64},
		{3, 128},
		{63, 65},
		{64, 64},   // exact word boundary
		{64, 192},  // word boundary, multi-word
		{130, 100},
		{200, 100}, // runs past the end of storage
	} {
		var m Mask
		m.SliceFrom(source, tc.offset, tc.count)
		want := sliceReference(source, tc.offset, tc.count)
		for i := 0; i < tc.count; i++ {
			assert.Equal(t, want[i], m.RowIsValid(i), "offset=%d count=%d bit=%d", tc.offset, tc.count, i)
		}
	}
}

func TestSliceFromZeroOffsetSharesStorage(t *testing.T) {
	source := NewMask(128)
	source.SetInvalid(12)
	var m Mask
	m.SliceFrom(source, 0, 128)
	require.False(t, m.AllValid())
	assert.Same(t, &source.Words()[0], &m.Words()[0])
}

func TestSliceFromAllValidSource(t *testing.T) {
	var source Mask
	m := NewMask(64)
	m.SetInvalid(1)
	m.SliceFrom(source, 100, 64)
	assert.True(t, m.AllValid())
}

func TestCopyFrom(t *testing.T) {
	source := NewMask(128)
	source.SetInvalid(9)
	var m Mask
	m.CopyFrom(source, 128)
	assert.False(t, m.RowIsValid(9))
	m.SetInvalid(10)
	assert.True(t, source.RowIsValid(10), "copy must not alias source storage")
}

func TestCountValid(t *testing.T) {
	var m Mask
	assert.Equal(t, 100, m.CountValid(100))

	m = NewMask(192)
	m.SetInvalid(0)
	m.SetInvalid(64)
	m.SetInvalid(65)
	m.SetInvalid(191)
	assert.Equal(t, 188, m.CountValid(192))
	assert.Equal(t, 63, m.CountValid(64))
	assert.Equal(t, 63, m.CountValid(66))
}

func TestFromBytesBorrowsStorage(t *testing.T) {
	raw := make([]byte, BytesNeeded(128))
	m := FromBytes(raw, 128)
	m.SetAllValid(128)
	m.SetInvalid(77)

	again := FromBytes(raw, 128)
	assert.False(t, again.RowIsValid(77))
	assert.True(t, again.RowIsValid(76))
}

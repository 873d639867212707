package vector

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortexql/vortex/pkg/types"
)

func TestFlatSliceWrites(t *testing.T) {
	v := NewVector(types.Integer())
	data := FlatSlice[int32](v)
	require.Len(t, data, Capacity)
	data[0] = 42
	data[Capacity-1] = -7

	again := FlatSlice[int32](v)
	assert.Equal(t, int32(42), again[0])
	assert.Equal(t, int32(-7), again[Capacity-1])
}

func TestNullTracking(t *testing.T) {
	v := NewVector(types.Integer())
	assert.False(t, v.IsNull(10))
	v.SetNull(10)
	assert.True(t, v.IsNull(10))
	assert.False(t, v.IsNull(11))
}

func TestStringInlineAndHeap(t *testing.T) {
	v := NewVector(types.Varchar())
	v.SetString(0, "short")
	v.SetString(1, "exactly12ch!")
	v.SetString(2, "a considerably longer payload that cannot be inlined")
	v.SetString(3, "")

	assert.Equal(t, "short", v.GetString(0))
	assert.Equal(t, "exactly12ch!", v.GetString(1))
	assert.Equal(t, "a considerably longer payload that cannot be inlined", v.GetString(2))
	assert.Equal(t, "", v.GetString(3))

	descs := FlatSlice[String](v)
	assert.True(t, descs[0].IsInlined())
	assert.False(t, descs[1].IsInlined(), "12-byte payloads go to the heap")
	assert.False(t, descs[2].IsInlined())
	assert.True(t, descs[3].IsInlined())
}

func TestStringDescriptorSize(t *testing.T) {
	// the descriptor must stay exactly as wide as the VARCHAR storage slot
	assert.Equal(t, uintptr(types.Varchar().Size()), unsafe.Sizeof(String{}))
}

func TestConstantFlatten(t *testing.T) {
	v := NewConstantVector(types.Integer())
	FlatSlice[int32](v)[0] = 99

	v.Flatten(100)
	require.Equal(t, FormatFlat, v.Format())
	data := FlatSlice[int32](v)
	for i := 0; i < 100; i++ {
		assert.Equal(t, int32(99), data[i])
	}
}

func TestConstantNullFlatten(t *testing.T) {
	v := NewConstantVector(types.Integer())
	v.SetNull(0)
	v.Flatten(50)
	for i := 0; i < 50; i++ {
		assert.True(t, v.IsNull(i))
	}
}

func TestDictionaryToUnified(t *testing.T) {
	base := NewVector(types.Integer())
	data := FlatSlice[int32](base)
	for i := 0; i < 10; i++ {
		data[i] = int32(i * 10)
	}
	base.SetNull(3)

	sel := NewSelectVector(4)
	sel.Set(0, 9)
	sel.Set(1, 3)
	sel.Set(2, 0)
	sel.Set(3, 9)
	dict := NewDictionaryVector(base, sel)

	var uf UnifiedFormat
	dict.ToUnified(4, &uf)
	values := UnifiedSlice[int32](&uf)

	assert.Equal(t, int32(90), values[uf.Sel.Index(0)])
	assert.False(t, uf.Mask.RowIsValid(uf.Sel.Index(1)))
	assert.Equal(t, int32(0), values[uf.Sel.Index(2)])
	assert.Equal(t, int32(90), values[uf.Sel.Index(3)])
}

func TestDictionaryFlatten(t *testing.T) {
	base := NewVector(types.Varchar())
	base.SetString(0, "zero")
	base.SetString(1, "a very long string that lives in the heap")

	sel := NewSelectVector(3)
	sel.Set(0, 1)
	sel.Set(1, 0)
	sel.Set(2, 1)
	dict := NewDictionaryVector(base, sel)
	dict.Flatten(3)

	require.Equal(t, FormatFlat, dict.Format())
	assert.Equal(t, "a very long string that lives in the heap", dict.GetString(0))
	assert.Equal(t, "zero", dict.GetString(1))
	assert.Equal(t, "a very long string that lives in the heap", dict.GetString(2))
}

func TestListVector(t *testing.T) {
	v := NewVector(types.List(types.Integer()))
	entries := v.ListEntries()
	child := FlatSlice[int32](v.ListChild())

	child[0], child[1], child[2] = 1, 2, 3
	entries[0] = ListEntry{Offset: 0, Length: 2}
	entries[1] = ListEntry{Offset: 2, Length: 1}
	v.SetListSize(3)

	assert.Equal(t, 3, v.ListSize())
	assert.Equal(t, uint64(2), v.ListEntries()[0].Length)
}

func TestListReserveGrowsChild(t *testing.T) {
	v := NewVector(types.List(types.Integer()))
	FlatSlice[int32](v.ListChild())[0] = 7
	v.ListReserve(Capacity * 3)
	require.GreaterOrEqual(t, v.ListChild().Capacity(), Capacity*3)
	assert.Equal(t, int32(7), FlatSlice[int32](v.ListChild())[0], "growth preserves data")
}

func TestReservePreservesNulls(t *testing.T) {
	v := NewVector(types.Integer())
	v.SetNull(100)
	v.Reserve(Capacity * 2)
	assert.True(t, v.IsNull(100))
	assert.False(t, v.IsNull(Capacity+100))
}

func TestStructVector(t *testing.T) {
	typ := types.Struct(
		types.Field{Name: "id", Type: types.Integer()},
		types.Field{Name: "name", Type: types.Varchar()},
	)
	v := NewVector(typ)
	fields := v.StructFields()
	require.Len(t, fields, 2)

	FlatSlice[int32](fields[0])[0] = 5
	fields[1].SetString(0, "five")
	v.SetNull(1)

	assert.Equal(t, int32(5), FlatSlice[int32](fields[0])[0])
	assert.Equal(t, "five", fields[1].GetString(0))
	assert.True(t, v.IsNull(1))
	assert.False(t, v.IsNull(0))
}

func TestBatchReset(t *testing.T) {
	typs := []types.Type{types.Integer(), types.Varchar()}
	b := NewBatch(typs)
	FlatSlice[int32](b.Vector(0))[0] = 1
	b.Vector(0).SetNull(5)
	b.Vector(1).SetString(0, "payload that is long enough for the heap")
	b.SetCount(6)

	b.Reset()
	assert.Equal(t, 0, b.Count())
	assert.False(t, b.Vector(0).IsNull(5))
	b.Vector(1).SetString(0, "ok")
	assert.Equal(t, "ok", b.Vector(1).GetString(0))
}

func TestSelectVectorIdentity(t *testing.T) {
	var sel *SelectVector
	for i := 0; i < 5; i++ {
		assert.Equal(t, i, sel.Index(i))
	}
	zero := ZeroSelectVector(4)
	for i := 0; i < 4; i++ {
		assert.Equal(t, 0, zero.Index(i))
	}
}

func ExampleVector_SetString() {
	v := NewVector(types.Varchar())
	v.SetString(0, "hello")
	fmt.Println(v.GetString(0))
	// Output: hello
}

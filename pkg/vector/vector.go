// Package vector implements the batch/vector abstraction that is the unit of
// input to collection appends and output from collection scans. A Vector
// holds up to Capacity values of one logical type in a dense fixed-width
// layout, together with a validity mask; nested LIST and STRUCT types carry
// child vectors mirroring the type tree. ToUnified projects any physical
// encoding (flat, constant, dictionary) into the uniform
// (selection, validity, raw data) view consumed by the copy engine.
package vector

import (
	"unsafe"

	"github.com/vortexql/vortex/pkg/types"
	"github.com/vortexql/vortex/pkg/validity"
)

// Capacity is the row capacity of a standard batch, and the chunk row
// capacity of collection storage.
const Capacity = validity.DefaultCapacity

// Format is the physical encoding of a vector.
type Format uint8

const (
	// FormatFlat is a dense array of values.
	FormatFlat Format = iota
	// FormatConstant holds a single value logically repeated.
	FormatConstant
	// FormatDictionary holds a selection over a base vector.
	FormatDictionary
)

// ListEntry is the fixed-width descriptor stored in LIST columns: a window
// into the child element column.
type ListEntry struct {
	Offset uint64
	Length uint64
}

// Vector is a column of values in one physical encoding.
type Vector struct {
	typ      types.Type
	format   Format
	capacity int
	data     []byte
	mask     validity.Mask
	heap     Heap       // VARCHAR payload resolution
	ownHeap  *localHeap // VARCHAR values written through SetString
	sel      *SelectVector
	dict     *Vector   // dictionary base
	child    *Vector   // LIST element storage
	listSize int       // element count in child
	fields   []*Vector // STRUCT members
}

// NewVector returns a flat vector with standard capacity.
func NewVector(typ types.Type) *Vector {
	return NewVectorWithCapacity(typ, Capacity)
}

// NewVectorWithCapacity returns a flat vector sized for capacity rows.
// LIST child storage starts at standard capacity regardless and grows on
// demand through ListReserve.
func NewVectorWithCapacity(typ types.Type, capacity int) *Vector {
	v := &Vector{typ: typ, format: FormatFlat, capacity: capacity}
	if size := typ.Size(); size > 0 {
		v.data = make([]byte, capacity*size)
	}
	switch typ.ID() {
	case types.VARCHAR:
		v.ownHeap = &localHeap{}
		v.heap = v.ownHeap
	case types.LIST:
		v.child = NewVectorWithCapacity(typ.ListChild(), Capacity)
	case types.STRUCT:
		fields := typ.StructFields()
		v.fields = make([]*Vector, len(fields))
		for i, f := range fields {
			v.fields[i] = NewVectorWithCapacity(f.Type, capacity)
		}
	}
	return v
}

// NewConstantVector returns a vector holding a single value logically
// repeated. Write the value at index 0 before use.
func NewConstantVector(typ types.Type) *Vector {
	v := NewVectorWithCapacity(typ, 1)
	v.format = FormatConstant
	return v
}

// NewDictionaryVector returns a vector encoding a selection over base.
func NewDictionaryVector(base *Vector, sel *SelectVector) *Vector {
	return &Vector{
		typ:    base.typ,
		format: FormatDictionary,
		sel:    sel,
		dict:   base,
	}
}

// Type returns the vector's logical type.
func (v *Vector) Type() types.Type { return v.typ }

// Format returns the vector's physical encoding.
func (v *Vector) Format() Format { return v.format }

// Capacity returns the row capacity of the backing storage.
func (v *Vector) Capacity() int { return v.capacity }

// Data exposes the raw fixed-width value storage of a flat vector.
func (v *Vector) Data() []byte { return v.data }

// Mask returns the vector's validity mask.
func (v *Vector) Mask() *validity.Mask { return &v.mask }

// Heap returns the heap resolving this vector's out-of-line string payloads.
func (v *Vector) Heap() Heap { return v.heap }

// SetHeap rebinds string payload resolution, used when chunk storage is read
// back and payloads live in the page string heap.
func (v *Vector) SetHeap(h Heap) { v.heap = h }

// FlatSlice reinterprets a flat vector's raw storage as a typed slice.
func FlatSlice[T any](v *Vector) []T {
	if len(v.data) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(*new(T)))
	return unsafe.Slice((*T)(unsafe.Pointer(&v.data[0])), len(v.data)/size)
}

// IsNull reports whether the row is null. The vector must be flat or
// constant; dictionary vectors resolve through their base.
func (v *Vector) IsNull(row int) bool {
	switch v.format {
	case FormatConstant:
		return !v.mask.RowIsValid(0)
	case FormatDictionary:
		return v.dict.IsNull(v.sel.Index(row))
	default:
		return !v.mask.RowIsValid(row)
	}
}

// SetNull marks the row null.
func (v *Vector) SetNull(row int) {
	v.mask.SetInvalid(row)
}

// SetString writes a string value at the given row of a flat VARCHAR
// vector, spilling long payloads to the vector's private heap.
func (v *Vector) SetString(row int, s string) {
	FlatSlice[String](v)[row] = v.ownHeap.add([]byte(s))
}

// GetString reads the string value at the given row.
func (v *Vector) GetString(row int) string {
	switch v.format {
	case FormatConstant:
		row = 0
	case FormatDictionary:
		return v.dict.GetString(v.sel.Index(row))
	}
	d := FlatSlice[String](v)[row]
	return d.Value(v.heap)
}

// ListChild returns the element storage of a LIST vector.
func (v *Vector) ListChild() *Vector { return v.child }

// ListSize returns the number of elements stored in the list child.
func (v *Vector) ListSize() int { return v.listSize }

// SetListSize records the number of elements stored in the list child.
func (v *Vector) SetListSize(n int) { v.listSize = n }

// ListEntries exposes the entry descriptors of a flat LIST vector.
func (v *Vector) ListEntries() []ListEntry {
	return FlatSlice[ListEntry](v)
}

// ListReserve grows the list child storage to hold at least n elements,
// preserving already written elements.
func (v *Vector) ListReserve(n int) {
	v.child.reserve(n)
}

// Reserve grows the vector's own storage to hold at least n rows,
// preserving already written rows. Used when chunk chains are read back
// into a single child vector.
func (v *Vector) Reserve(n int) {
	v.reserve(n)
}

func (v *Vector) reserve(n int) {
	if n <= v.capacity {
		return
	}
	grown := n
	if grown < 2*v.capacity {
		grown = 2 * v.capacity
	}
	if size := v.typ.Size(); size > 0 {
		data := make([]byte, grown*size)
		copy(data, v.data)
		v.data = data
	}
	v.mask.Resize(v.capacity, grown)
	for _, f := range v.fields {
		f.reserve(grown)
	}
	v.capacity = grown
}

// StructFields returns the member vectors of a STRUCT vector, in field
// order.
func (v *Vector) StructFields() []*Vector { return v.fields }

// Flatten materializes constant and dictionary encodings into a flat
// vector covering count rows. Flat vectors are untouched.
func (v *Vector) Flatten(count int) {
	switch v.format {
	case FormatFlat:
		return
	case FormatConstant:
		*v = *gather(v, ZeroSelectVector(count), count)
	case FormatDictionary:
		*v = *gather(v.dict, v.sel, count)
	}
}

// gather materializes sel applied to src into a fresh flat vector.
func gather(src *Vector, sel *SelectVector, count int) *Vector {
	capacity := count
	if capacity < Capacity {
		capacity = Capacity
	}
	out := NewVectorWithCapacity(src.typ, capacity)
	if size := src.typ.Size(); size > 0 {
		for i := 0; i < count; i++ {
			idx := sel.Index(i)
			copy(out.data[i*size:(i+1)*size], src.data[idx*size:(idx+1)*size])
		}
	}
	if !src.mask.AllValid() {
		for i := 0; i < count; i++ {
			if !src.mask.RowIsValid(sel.Index(i)) {
				out.mask.SetInvalid(i)
			}
		}
	}
	switch src.typ.ID() {
	case types.VARCHAR:
		// descriptors keep referencing the source heap
		out.ownHeap = nil
		out.heap = src.heap
	case types.LIST:
		out.child = src.child
		out.listSize = src.listSize
	case types.STRUCT:
		for i := range out.fields {
			out.fields[i] = gather(src.fields[i], sel, count)
		}
	}
	return out
}

// UnifiedFormat is the flattened projection of a vector: a selection mapping
// logical rows into the raw backing array, a validity predicate, and raw
// fixed-width values, regardless of the vector's physical encoding.
type UnifiedFormat struct {
	Sel  *SelectVector
	Mask validity.Mask
	Heap Heap
	data []byte
}

// UnifiedSlice reinterprets the flattened raw values as a typed slice.
func UnifiedSlice[T any](uf *UnifiedFormat) []T {
	if len(uf.data) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(*new(T)))
	return unsafe.Slice((*T)(unsafe.Pointer(&uf.data[0])), len(uf.data)/size)
}

// ToUnified projects the vector over count rows into out.
func (v *Vector) ToUnified(count int, out *UnifiedFormat) {
	switch v.format {
	case FormatConstant:
		out.Sel = ZeroSelectVector(count)
		out.data = v.data
		out.Mask = v.mask
		out.Heap = v.heap
	case FormatDictionary:
		if v.dict.format != FormatFlat {
			v.Flatten(count)
			v.ToUnified(count, out)
			return
		}
		out.Sel = v.sel
		out.data = v.dict.data
		out.Mask = v.dict.mask
		out.Heap = v.dict.heap
	default:
		out.Sel = nil
		out.data = v.data
		out.Mask = v.mask
		out.Heap = v.heap
	}
}

// resetForReuse restores a vector for the next chunk read or fill.
func (v *Vector) resetForReuse() {
	v.mask.Reset()
	if v.ownHeap != nil {
		v.ownHeap.reset()
		v.heap = v.ownHeap
	}
	v.listSize = 0
	if v.child != nil {
		v.child.resetForReuse()
	}
	for _, f := range v.fields {
		f.resetForReuse()
	}
}

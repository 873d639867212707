package colbuf

import (
	"fmt"
	"unsafe"

	"github.com/vortexql/vortex/pkg/storage"
	"github.com/vortexql/vortex/pkg/types"
	"github.com/vortexql/vortex/pkg/validity"
	"github.com/vortexql/vortex/pkg/vector"
)

// copyFunc copies count rows starting at srcOffset from a flattened source
// column into the destination slot carried by meta.
type copyFunc func(meta *copyMeta, src *vector.UnifiedFormat, srcVec *vector.Vector, srcOffset, count int)

// copyFunction is one node of the copy-function tree. The tree is built
// once per collection from its column types and mirrors the nesting of the
// logical type: struct nodes carry one child per field, list nodes exactly
// one child, scalars none. It replaces a per-row type switch with a
// pre-resolved call tree.
type copyFunction struct {
	fn       copyFunc
	children []copyFunction
}

// copyMeta is the context of one copy invocation: the tree node, the
// destination page, the append session, the destination chunk and the
// destination slot. Slot references are held by index, never by pointer,
// because child allocation can grow the slot arena mid-copy.
type copyMeta struct {
	fn            *copyFunction
	page          *storage.Page
	state         *AppendState
	chunk         *storage.ChunkMeta
	slot          storage.SlotIndex
	childListSize int
}

func (m *copyMeta) slotMeta() *storage.VectorSlot {
	return m.page.Slot(m.slot)
}

// buildCopyFunction resolves the copy strategy for a column type,
// recursively building child nodes for nested types. An unsupported
// physical type is a programming-contract violation: the engine must never
// construct a collection over one.
func buildCopyFunction(t types.Type) copyFunction {
	var result copyFunction
	switch t.ID() {
	case types.BOOLEAN, types.TINYINT, types.UTINYINT:
		result.fn = copyPlain[uint8]
	case types.SMALLINT, types.USMALLINT:
		result.fn = copyPlain[uint16]
	case types.INTEGER, types.UINTEGER, types.FLOAT:
		result.fn = copyPlain[uint32]
	case types.BIGINT, types.UBIGINT, types.DOUBLE:
		result.fn = copyPlain[uint64]
	case types.VARCHAR:
		result.fn = copyVarchar
	case types.LIST:
		result.fn = copyList
		result.children = []copyFunction{buildCopyFunction(t.ListChild())}
	case types.STRUCT:
		result.fn = copyStruct
		for _, f := range t.StructFields() {
			result.children = append(result.children, buildCopyFunction(f.Type))
		}
	default:
		panic(fmt.Sprintf("colbuf: no copy strategy for type %s", t))
	}
	return result
}

// copyValidity transfers null bits from a flattened source into a slot's
// validity region. The very first write into a region initializes it to
// all-valid, since freshly allocated bytes are undefined. All-valid sources
// skip the per-row scan.
func copyValidity(src *vector.UnifiedFormat, region []byte, srcOffset, destOffset, count int) {
	mask := validity.FromBytes(region, vector.Capacity)
	if destOffset == 0 {
		mask.SetAllValid(vector.Capacity)
	}
	if !src.Mask.AllValid() {
		for i := 0; i < count; i++ {
			idx := src.Sel.Index(srcOffset + i)
			if !src.Mask.RowIsValid(idx) {
				mask.SetInvalid(destOffset + i)
			}
		}
	}
}

// templatedCopy copies fixed-width values element-wise through a per-value
// transform, honoring the source selection and skipping the value copy (but
// not the validity copy) for null source rows.
func templatedCopy[T any](m *copyMeta, src *vector.UnifiedFormat, srcOffset, count int, op func(*copyMeta, T) T) {
	slot := m.slotMeta()
	base := m.page.SlotData(&m.state.chunkState, slot)
	size := int(unsafe.Sizeof(*new(T)))
	valueBytes := size * vector.Capacity
	copyValidity(src, base[valueBytes:valueBytes+validity.BytesNeeded(vector.Capacity)], srcOffset, slot.Count, count)

	ldata := vector.UnifiedSlice[T](src)
	result := unsafe.Slice((*T)(unsafe.Pointer(&base[0])), vector.Capacity)
	for i := 0; i < count; i++ {
		idx := src.Sel.Index(srcOffset + i)
		if src.Mask.RowIsValid(idx) {
			result[slot.Count+i] = op(m, ldata[idx])
		}
	}
	slot.Count += count
}

// copyPlain is the identity copy for fixed-width scalars. Values are copied
// as opaque bit patterns of their width.
func copyPlain[T any](m *copyMeta, src *vector.UnifiedFormat, _ *vector.Vector, srcOffset, count int) {
	templatedCopy[T](m, src, srcOffset, count, func(_ *copyMeta, v T) T { return v })
}

// copyVarchar interns string values: descriptors with inline payloads are
// copied as-is, out-of-line payloads are re-homed into the page string heap
// and the descriptor rewritten to reference it.
func copyVarchar(m *copyMeta, src *vector.UnifiedFormat, _ *vector.Vector, srcOffset, count int) {
	heap := m.page.Heap()
	templatedCopy[vector.String](m, src, srcOffset, count, func(_ *copyMeta, v vector.String) vector.String {
		if v.IsInlined() {
			return v
		}
		return heap.AddString(v.Bytes(src.Heap))
	})
}

// copyList appends the source's child elements into the slot's child chain
// first, then copies the list entry descriptors with their offsets rebased
// by the child rows that existed before this append, so stored offsets are
// always relative to the child column's cumulative storage.
func copyList(m *copyMeta, src *vector.UnifiedFormat, srcVec *vector.Vector, srcOffset, count int) {
	page := m.page
	child := srcVec.ListChild()
	childSize := srcVec.ListSize()
	childType := srcVec.Type().ListChild()

	var childData vector.UnifiedFormat
	child.ToUnified(childSize, &childData)

	if m.slotMeta().Child == storage.InvalidChild {
		childSlot := page.AllocateVector(childType)
		m.slotMeta().Child = page.AddChildIndex(childSlot)
	}
	childFn := &m.fn.children[0]
	childIdx := page.ChildSlotIndex(m.slotMeta().Child, 0)

	remaining := childSize
	currentListSize := 0
	for remaining > 0 {
		currentListSize += page.Slot(childIdx).Count
		appendCount := vector.Capacity - page.Slot(childIdx).Count
		if appendCount > remaining {
			appendCount = remaining
		}
		if appendCount > 0 {
			childMeta := &copyMeta{
				fn:            childFn,
				page:          page,
				state:         m.state,
				chunk:         m.chunk,
				slot:          childIdx,
				childListSize: -1,
			}
			childFn.fn(childMeta, &childData, child, childSize-remaining, appendCount)
		}
		remaining -= appendCount
		if remaining > 0 {
			// child chunk exhausted: follow or extend the overflow chain
			if page.Slot(childIdx).Next == storage.InvalidSlot {
				next := page.AllocateVector(childType)
				page.Slot(childIdx).Next = next
			}
			childIdx = page.Slot(childIdx).Next
		}
	}
	m.childListSize = currentListSize
	templatedCopy[vector.ListEntry](m, src, srcOffset, count, func(meta *copyMeta, v vector.ListEntry) vector.ListEntry {
		v.Offset += uint64(meta.childListSize)
		return v
	})
}

// copyStruct copies the struct column's own validity bits, then recurses
// into each field with the same selection, offset and count: struct fields
// advance in lockstep with their parent, unlike list children which
// accumulate independently. Field slots are allocated once, lazily, as a
// fixed run sized by field count.
func copyStruct(m *copyMeta, src *vector.UnifiedFormat, srcVec *vector.Vector, srcOffset, count int) {
	page := m.page
	slot := m.slotMeta()
	region := page.SlotData(&m.state.chunkState, slot)
	copyValidity(src, region[:validity.BytesNeeded(vector.Capacity)], srcOffset, slot.Count, count)
	slot.Count += count

	fields := srcVec.Type().StructFields()
	if m.slotMeta().Child == storage.InvalidChild {
		childBase := page.ReserveChildren(len(fields))
		for i, f := range fields {
			childSlot := page.AllocateVector(f.Type)
			page.SetChildIndex(childBase, i, childSlot)
		}
		m.slotMeta().Child = childBase
	}
	children := srcVec.StructFields()
	for i := range fields {
		childFn := &m.fn.children[i]
		childIdx := page.ChildSlotIndex(m.slotMeta().Child, i)

		var childData vector.UnifiedFormat
		children[i].ToUnified(srcOffset+count, &childData)

		childMeta := &copyMeta{
			fn:            childFn,
			page:          page,
			state:         m.state,
			chunk:         m.chunk,
			slot:          childIdx,
			childListSize: -1,
		}
		childFn.fn(childMeta, &childData, children[i], srcOffset, count)
	}
}

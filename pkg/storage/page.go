package storage

import (
	"unsafe"

	"github.com/vortexql/vortex/pkg/types"
	"github.com/vortexql/vortex/pkg/validity"
	"github.com/vortexql/vortex/pkg/vector"
	"github.com/vortexql/vortex/pkg/vortexerrors"
)

// SlotIndex addresses one vector slot within a page's slot arena.
type SlotIndex int32

// InvalidSlot marks an unassigned slot reference.
const InvalidSlot SlotIndex = -1

// ChildIndex addresses an entry in a page's child slot table: the head of a
// list overflow chain, or the first of a struct's per-field slots.
type ChildIndex int32

// InvalidChild marks an unallocated child slot table entry.
const InvalidChild ChildIndex = -1

// VectorSlot is the physical descriptor for one column's data within one
// chunk: the block and byte offset of its storage region, the rows already
// written, and child references for nested types. List children use Next to
// chain overflow slots when a single list column needs more raw child rows
// than one region holds; struct children are a fixed run of per-field slots
// reached through Child.
type VectorSlot struct {
	Block  BlockID
	Offset uint32
	Count  int
	Next   SlotIndex
	Child  ChildIndex
}

// ChunkMeta describes one chunk: its row count and one slot per top-level
// column.
type ChunkMeta struct {
	Count int
	Slots []SlotIndex
}

// Page is an ordered sequence of chunks plus a string heap. Pages are the
// unit merged by Collection.Combine; slot storage lives in the shared
// allocator, addressed by index so the arena can grow without invalidating
// references.
type Page struct {
	alloc      *Allocator
	heap       *StringHeap
	typs       []types.Type
	count      int
	chunks     []ChunkMeta
	slots      []VectorSlot
	childSlots []SlotIndex
}

// NewPage returns an empty page for the given column types, allocating out
// of the shared allocator.
func NewPage(alloc *Allocator, typs []types.Type) *Page {
	return &Page{
		alloc: alloc,
		heap:  NewStringHeap(),
		typs:  typs,
	}
}

// Heap returns the page's string heap.
func (p *Page) Heap() *StringHeap { return p.heap }

// Count returns the number of rows stored in the page.
func (p *Page) Count() int { return p.count }

// AddCount bumps the page row count after a sub-range has been fully
// copied.
func (p *Page) AddCount(n int) { p.count += n }

// Types returns the page's column types.
func (p *Page) Types() []types.Type { return p.typs }

// ChunkCount returns the number of chunks in the page.
func (p *Page) ChunkCount() int { return len(p.chunks) }

// Chunk returns the chunk metadata at the given index.
func (p *Page) Chunk(i int) *ChunkMeta { return &p.chunks[i] }

// LastChunk returns the most recently allocated chunk.
func (p *Page) LastChunk() *ChunkMeta { return &p.chunks[len(p.chunks)-1] }

// Slot returns the vector slot at the given index.
func (p *Page) Slot(idx SlotIndex) *VectorSlot { return &p.slots[idx] }

// slotBytes is the storage footprint of one vector slot region: a full
// chunk's worth of fixed-width values followed by the validity words.
// STRUCT columns store validity only.
func slotBytes(t types.Type) int {
	return t.Size()*vector.Capacity + validity.BytesNeeded(vector.Capacity)
}

// AllocateVector reserves a storage region for one column in one chunk and
// returns its slot index.
func (p *Page) AllocateVector(t types.Type) SlotIndex {
	blockID, offset := p.alloc.Allocate(slotBytes(t))
	p.slots = append(p.slots, VectorSlot{
		Block:  blockID,
		Offset: offset,
		Next:   InvalidSlot,
		Child:  InvalidChild,
	})
	return SlotIndex(len(p.slots) - 1)
}

// AllocateNewChunk appends an empty chunk with one slot per top-level
// column and returns its index. Nested child slots are allocated lazily on
// first append.
func (p *Page) AllocateNewChunk() int {
	chunk := ChunkMeta{Slots: make([]SlotIndex, len(p.typs))}
	for i, t := range p.typs {
		chunk.Slots[i] = p.AllocateVector(t)
	}
	p.chunks = append(p.chunks, chunk)
	return len(p.chunks) - 1
}

// InitializeChunkState pins the top-level blocks of the given chunk into
// state. Nested child blocks are pinned on demand as they are touched.
func (p *Page) InitializeChunkState(chunkIdx int, state *ChunkState) {
	state.Reset()
	for _, idx := range p.chunks[chunkIdx].Slots {
		p.alloc.Pin(state, p.slots[idx].Block)
	}
}

// ReserveChildren reserves a run of n unassigned entries in the child slot
// table and returns the index of the first.
func (p *Page) ReserveChildren(n int) ChildIndex {
	base := len(p.childSlots)
	for i := 0; i < n; i++ {
		p.childSlots = append(p.childSlots, InvalidSlot)
	}
	return ChildIndex(base)
}

// AddChildIndex records a single child slot and returns its table index.
func (p *Page) AddChildIndex(slot SlotIndex) ChildIndex {
	p.childSlots = append(p.childSlots, slot)
	return ChildIndex(len(p.childSlots) - 1)
}

// SetChildIndex assigns the i-th entry of a reserved child run.
func (p *Page) SetChildIndex(base ChildIndex, i int, slot SlotIndex) {
	p.childSlots[int(base)+i] = slot
}

// ChildSlotIndex resolves the i-th entry of a child run.
func (p *Page) ChildSlotIndex(base ChildIndex, i int) SlotIndex {
	return p.childSlots[int(base)+i]
}

// SlotData returns the raw storage region of a slot, pinning its block into
// state if needed.
func (p *Page) SlotData(state *ChunkState, slot *VectorSlot) []byte {
	return p.alloc.Data(state, slot.Block, slot.Offset)
}

// MaskRegion carves the validity words out of a slot storage region.
func MaskRegion(base []byte, t types.Type) []byte {
	off := t.Size() * vector.Capacity
	return base[off : off+validity.BytesNeeded(vector.Capacity)]
}

// ReadChunk materializes the chunk at chunkIdx into out, whose vectors must
// already be reset. Out-of-line string payloads stay in the page heap; the
// destination vectors are rebound to resolve through it.
func (p *Page) ReadChunk(chunkIdx int, state *ChunkState, out *vector.Batch) {
	chunk := &p.chunks[chunkIdx]
	for col, idx := range chunk.Slots {
		p.readVector(state, idx, p.typs[col], out.Vector(col), 0)
	}
	out.SetCount(chunk.Count)
}

// readVector reads the slot chain starting at idx into out beginning at
// destOffset, returning the total rows read. Top-level slots never chain;
// list child slots may.
func (p *Page) readVector(state *ChunkState, idx SlotIndex, t types.Type, out *vector.Vector, destOffset int) int {
	total := 0
	for cur := idx; cur != InvalidSlot; {
		slot := p.Slot(cur)
		count := slot.Count
		base := p.SlotData(state, slot)
		out.Reserve(destOffset + count)
		switch t.ID() {
		case types.STRUCT:
			readMaskInto(out.Mask(), base[:validity.BytesNeeded(vector.Capacity)], count, destOffset)
			if slot.Child != InvalidChild {
				for i, f := range t.StructFields() {
					p.readVector(state, p.ChildSlotIndex(slot.Child, i), f.Type, out.StructFields()[i], destOffset)
				}
			}
		case types.LIST:
			// child elements first: entry offsets in this slot are relative
			// to the slot's own child chain, so rebase them onto the rows
			// already present in the merged child vector
			childStart := out.ListSize()
			childTotal := 0
			if slot.Child != InvalidChild {
				childHead := p.ChildSlotIndex(slot.Child, 0)
				out.ListReserve(childStart + p.chainCount(childHead))
				childTotal = p.readVector(state, childHead, t.ListChild(), out.ListChild(), childStart)
			}
			out.SetListSize(childStart + childTotal)
			srcEntries := bytesAs[vector.ListEntry](base, vector.Capacity)
			entries := out.ListEntries()
			for i := 0; i < count; i++ {
				e := srcEntries[i]
				e.Offset += uint64(childStart)
				entries[destOffset+i] = e
			}
			readMaskInto(out.Mask(), MaskRegion(base, t), count, destOffset)
		default:
			size := t.Size()
			copy(out.Data()[destOffset*size:(destOffset+count)*size], base[:count*size])
			readMaskInto(out.Mask(), MaskRegion(base, t), count, destOffset)
			if t.ID() == types.VARCHAR {
				out.SetHeap(p.heap)
			}
		}
		total += count
		destOffset += count
		cur = slot.Next
	}
	return total
}

// chainCount sums the row counts of a slot overflow chain.
func (p *Page) chainCount(idx SlotIndex) int {
	total := 0
	for cur := idx; cur != InvalidSlot; cur = p.Slot(cur).Next {
		total += p.Slot(cur).Count
	}
	return total
}

// readMaskInto transfers the null bits of a slot's validity region into a
// destination mask at destOffset. Regions whose covered words are all valid
// are skipped entirely, keeping the destination in its sentinel state.
func readMaskInto(m *validity.Mask, region []byte, count, destOffset int) {
	if count == 0 {
		return
	}
	src := validity.FromBytes(region, vector.Capacity)
	words := src.Words()
	allValid := true
	for i := 0; i < validity.EntryCount(count); i++ {
		if words[i] != ^uint64(0) {
			allValid = false
			break
		}
	}
	if allValid {
		return
	}
	for i := 0; i < count; i++ {
		if !src.RowIsValid(i) {
			m.SetInvalid(destOffset + i)
		}
	}
}

// bytesAs reinterprets a raw region as n fixed-width values.
func bytesAs[T any](b []byte, n int) []T {
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}

// Verify checks that the sum of per-chunk row counts matches the page row
// count.
func (p *Page) Verify() error {
	total := 0
	for i := range p.chunks {
		total += p.chunks[i].Count
	}
	if total != p.count {
		return vortexerrors.New(vortexerrors.ErrorTypeInternal, "page chunk counts do not sum to page count").
			WithDetail("chunk_total", total).
			WithDetail("page_count", p.count)
	}
	return nil
}

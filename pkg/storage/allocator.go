// Package storage owns the physical side of a column data collection: a
// bump-pointer block allocator handing out raw byte regions, an append-only
// string heap for out-of-line VARCHAR payloads, and the Page type tracking
// chunks, vector slots and nested child slot chains.
//
// Allocation is single-writer: exactly one append session may allocate at a
// time. Reads are safe from any number of goroutines once appends stop;
// each reader pins blocks into its own ChunkState.
package storage

// BlockSize is the default byte size of an allocator block. Requests larger
// than this get a dedicated block.
const BlockSize = 256 * 1024

// BlockID identifies one allocator block.
type BlockID int32

type block struct {
	data []byte
	used int
}

// Allocator hands out raw byte regions addressed by (block id, offset).
// It never frees: memory lives until the owning collection is dropped.
type Allocator struct {
	blocks []block
}

// NewAllocator returns an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate reserves size bytes and returns their location.
func (a *Allocator) Allocate(size int) (BlockID, uint32) {
	if n := len(a.blocks); n > 0 {
		b := &a.blocks[n-1]
		if len(b.data)-b.used >= size {
			offset := b.used
			b.used += size
			return BlockID(n - 1), uint32(offset)
		}
	}
	blockSize := BlockSize
	if size > blockSize {
		blockSize = size
	}
	a.blocks = append(a.blocks, block{data: make([]byte, blockSize), used: size})
	return BlockID(len(a.blocks) - 1), 0
}

// BlockCount returns the number of allocated blocks.
func (a *Allocator) BlockCount() int {
	return len(a.blocks)
}

// ChunkState holds the pinned block handles of one chunk for one reader or
// writer. States are per-goroutine and must not be shared.
type ChunkState struct {
	handles map[BlockID][]byte
}

// Reset drops all pinned handles.
func (s *ChunkState) Reset() {
	for id := range s.handles {
		delete(s.handles, id)
	}
}

// Pin records a handle for the given block in the state.
func (a *Allocator) Pin(state *ChunkState, id BlockID) {
	if state.handles == nil {
		state.handles = make(map[BlockID][]byte)
	}
	state.handles[id] = a.blocks[id].data
}

// Data returns the raw bytes at (id, offset), pinning the block into state
// if it is not pinned yet. The slice is valid for the scope of the pin.
func (a *Allocator) Data(state *ChunkState, id BlockID, offset uint32) []byte {
	h, ok := state.handles[id]
	if !ok {
		a.Pin(state, id)
		h = state.handles[id]
	}
	return h[offset:]
}

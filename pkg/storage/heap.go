package storage

import (
	"github.com/vortexql/vortex/pkg/vector"
)

// HeapBlockSize is the default byte size of one string heap block. Payloads
// larger than this get a dedicated block.
const HeapBlockSize = 64 * 1024

// StringHeap is the append-only byte heap of one page, holding VARCHAR
// payloads too long to inline into their 16-byte descriptors. It implements
// vector.Heap so descriptors read back from chunk storage resolve through
// it directly.
type StringHeap struct {
	blocks []block
}

// NewStringHeap returns an empty heap.
func NewStringHeap() *StringHeap {
	return &StringHeap{}
}

// AddString copies the payload into the heap and returns its descriptor.
// Short payloads are inlined into the descriptor and occupy no heap space.
func (h *StringHeap) AddString(b []byte) vector.String {
	if len(b) < vector.StringInlineLength {
		return vector.InlineString(b)
	}
	id, offset := h.allocate(len(b))
	copy(h.blocks[id].data[offset:], b)
	return vector.HeapString(b, int32(id), uint32(offset))
}

func (h *StringHeap) allocate(size int) (int, int) {
	if n := len(h.blocks); n > 0 {
		b := &h.blocks[n-1]
		if len(b.data)-b.used >= size {
			offset := b.used
			b.used += size
			return n - 1, offset
		}
	}
	blockSize := HeapBlockSize
	if size > blockSize {
		blockSize = size
	}
	h.blocks = append(h.blocks, block{data: make([]byte, blockSize), used: size})
	return len(h.blocks) - 1, 0
}

// StringBytes resolves an out-of-line descriptor to its payload bytes.
func (h *StringHeap) StringBytes(s vector.String) []byte {
	return h.blocks[s.Block()].data[s.Offset() : s.Offset()+uint32(s.Length())]
}

// Size returns the total bytes held by the heap's blocks.
func (h *StringHeap) Size() int {
	total := 0
	for i := range h.blocks {
		total += h.blocks[i].used
	}
	return total
}

package vector

import (
	"unsafe"

	stringpool "github.com/vortexql/vortex/pkg/strings"
)

// StringInlineLength is the payload size below which a string is stored
// entirely inside its 16-byte descriptor. Longer payloads live in a string
// heap and the descriptor records their location.
const StringInlineLength = 12

// String is the fixed-width 16-byte descriptor stored in VARCHAR columns.
// Short payloads (< StringInlineLength bytes) are inlined into the 12 bytes
// following the length; longer payloads are referenced by (block, offset)
// into the owning heap, with the first bytes duplicated in the prefix for
// cheap comparisons. The descriptor holds no Go pointers, so it can live in
// raw chunk storage.
type String struct {
	length uint32
	prefix [4]byte
	block  int32
	offset uint32
}

// Heap resolves the payload bytes of out-of-line String descriptors.
// Implemented by the page string heap in pkg/storage and by the private
// heap a vector uses for its own values.
type Heap interface {
	StringBytes(s String) []byte
}

// Length returns the payload length in bytes.
func (s String) Length() int { return int(s.length) }

// IsInlined reports whether the payload is stored inside the descriptor.
func (s String) IsInlined() bool { return s.length < StringInlineLength }

// Block returns the heap block id of an out-of-line payload.
func (s String) Block() int32 { return s.block }

// Offset returns the byte offset of an out-of-line payload within its block.
func (s String) Offset() uint32 { return s.offset }

// inlineBytes exposes the 12 inline payload bytes of the descriptor.
func (s *String) inlineBytes() []byte {
	return unsafe.Slice(&s.prefix[0], StringInlineLength)
}

// InlineString builds an inline descriptor from a short payload.
func InlineString(b []byte) String {
	if len(b) >= StringInlineLength {
		panic("vector: payload too long to inline")
	}
	var s String
	s.length = uint32(len(b))
	copy(s.inlineBytes(), b)
	return s
}

// HeapString builds an out-of-line descriptor for a payload stored at
// (block, offset) in some heap.
func HeapString(b []byte, block int32, offset uint32) String {
	var s String
	s.length = uint32(len(b))
	copy(s.prefix[:], b)
	s.block = block
	s.offset = offset
	return s
}

// Bytes returns the payload, resolving out-of-line descriptors through h.
// The returned slice aliases descriptor or heap memory; callers must not
// modify it.
func (s *String) Bytes(h Heap) []byte {
	if s.IsInlined() {
		return s.inlineBytes()[:s.length]
	}
	return h.StringBytes(*s)
}

// Value returns the payload as a string without copying.
func (s *String) Value(h Heap) string {
	return stringpool.BytesToString(s.Bytes(h))
}

// localHeap is the private append-only heap backing a vector's own string
// values, before they are interned into page storage by the copy engine.
type localHeap struct {
	buf []byte
}

func (h *localHeap) add(b []byte) String {
	if len(b) < StringInlineLength {
		return InlineString(b)
	}
	offset := uint32(len(h.buf))
	h.buf = append(h.buf, b...)
	return HeapString(b, 0, offset)
}

func (h *localHeap) StringBytes(s String) []byte {
	return h.buf[s.offset : s.offset+s.length]
}

func (h *localHeap) reset() {
	h.buf = h.buf[:0]
}

// Package colbuf implements the columnar buffering layer of the Vortex
// engine: an append-only, chunked, in-memory collection of typed column
// data that decouples producers from consumers. Operators append batches of
// up to vector.Capacity rows; the collection repacks them into dense
// chunks backed by coarse allocator blocks, interning out-of-line strings
// and flattening nested columns into per-chunk slot chains. Consumers read
// the data back through serial or parallel scan cursors, or merge whole
// collections with Combine.
package colbuf

import (
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/vortexql/vortex/pkg/logger"
	"github.com/vortexql/vortex/pkg/pool"
	"github.com/vortexql/vortex/pkg/storage"
	"github.com/vortexql/vortex/pkg/types"
	"github.com/vortexql/vortex/pkg/vector"
	"github.com/vortexql/vortex/pkg/vortexerrors"
)

// Collection buffers columnar data as an ordered list of pages, each
// holding dense chunks of up to vector.Capacity rows. A collection built
// purely by appends has exactly one page; multi-page collections arise from
// Combine. Appends are single-writer; scans may run in parallel once
// appending is done.
type Collection struct {
	typs           []types.Type
	count          int
	finishedAppend bool
	alloc          *storage.Allocator
	pages          []*storage.Page
	copyFuncs      []copyFunction

	poolOnce  sync.Once
	batchPool *pool.Pool[*vector.Batch]
}

// New creates an empty collection over the given column types and resolves
// the copy-function tree for each column.
func New(typs []types.Type) *Collection {
	c := &Collection{
		typs:  append([]types.Type(nil), typs...),
		alloc: storage.NewAllocator(),
	}
	c.copyFuncs = make([]copyFunction, 0, len(typs))
	for _, t := range typs {
		c.copyFuncs = append(c.copyFuncs, buildCopyFunction(t))
	}
	return c
}

// NewFromCollection creates an empty collection with the same column types
// as other, sharing other's block allocator so both draw from one arena.
// The source is frozen: it can still be scanned and combined, but no
// further rows can be appended to it, since interleaved appends into a
// shared arena would fragment both collections.
func NewFromCollection(other *Collection) *Collection {
	c := New(other.typs)
	c.alloc = other.alloc
	other.finishedAppend = true
	return c
}

// AppendState carries the per-session scratch of an append: the flattened
// view of each input column, the page being filled, and the pinned blocks
// of its trailing chunk.
type AppendState struct {
	vectorData []vector.UnifiedFormat
	page       *storage.Page
	chunkState storage.ChunkState
}

// InitializeAppend prepares an append session, creating the initial page
// and chunk if the collection is empty and pinning the current chunk's
// blocks. Fails if the collection has been frozen by a copy handoff.
func (c *Collection) InitializeAppend(state *AppendState) error {
	if c.finishedAppend {
		return vortexerrors.New(vortexerrors.ErrorTypeInternal,
			"append to a frozen collection: it was handed off via NewFromCollection or Combine")
	}
	state.vectorData = make([]vector.UnifiedFormat, len(c.typs))
	if len(c.pages) == 0 {
		c.pages = append(c.pages, storage.NewPage(c.alloc, c.typs))
		logger.Debug("colbuf: created page",
			zap.Int("page_index", len(c.pages)-1),
			zap.Int("column_count", len(c.typs)))
	}
	page := c.pages[len(c.pages)-1]
	if page.ChunkCount() == 0 {
		page.AllocateNewChunk()
	}
	page.InitializeChunkState(page.ChunkCount()-1, &state.chunkState)
	state.page = page
	return nil
}

// Append copies all rows of input into the collection, splitting them
// across chunk boundaries as needed. Partially filled trailing chunks are
// topped up by the next append, so chunk layout depends only on the total
// row sequence, never on how it was batched.
func (c *Collection) Append(state *AppendState, input *vector.Batch) error {
	if c.finishedAppend {
		return vortexerrors.New(vortexerrors.ErrorTypeInternal,
			"append to a frozen collection: it was handed off via NewFromCollection or Combine")
	}
	if !types.Equals(c.typs, input.Types()) {
		return vortexerrors.New(vortexerrors.ErrorTypeInternal, "batch types do not match collection types").
			WithDetail("expected", types.Describe(c.typs)).
			WithDetail("got", types.Describe(input.Types()))
	}

	page := c.pages[len(c.pages)-1]
	if page != state.page {
		// Combine can splice in pages from another allocator, and block ids
		// are only unique within one allocator: stale pins must be dropped
		// before writing into a different page
		if page.ChunkCount() == 0 {
			page.AllocateNewChunk()
		}
		page.InitializeChunkState(page.ChunkCount()-1, &state.chunkState)
		state.page = page
	}
	for col := 0; col < input.ColumnCount(); col++ {
		vec := input.Vector(col)
		// the copy operators walk child vectors directly and cannot see
		// through dictionary or constant indirection under nested types
		if vec.Type().IsNested() {
			vec.Flatten(input.Count())
		}
		vec.ToUnified(input.Count(), &state.vectorData[col])
	}

	remaining := input.Count()
	for remaining > 0 {
		chunk := page.LastChunk()
		appendAmount := vector.Capacity - chunk.Count
		if appendAmount > remaining {
			appendAmount = remaining
		}
		if appendAmount > 0 {
			offset := input.Count() - remaining
			for col := range c.copyFuncs {
				meta := &copyMeta{
					fn:            &c.copyFuncs[col],
					page:          page,
					state:         state,
					chunk:         chunk,
					slot:          chunk.Slots[col],
					childListSize: -1,
				}
				c.copyFuncs[col].fn(meta, &state.vectorData[col], input.Vector(col), offset, appendAmount)
			}
			chunk.Count += appendAmount
		}
		remaining -= appendAmount
		if remaining > 0 {
			page.AllocateNewChunk()
			page.InitializeChunkState(page.ChunkCount()-1, &state.chunkState)
		}
	}
	page.AddCount(input.Count())
	c.count += input.Count()
	return nil
}

// AppendBatch appends a single batch without an explicit session. Repeated
// single-batch appends re-pin the trailing chunk each call; hold an
// AppendState across calls when appending in a loop.
func (c *Collection) AppendBatch(input *vector.Batch) error {
	var state AppendState
	if err := c.InitializeAppend(&state); err != nil {
		return err
	}
	return c.Append(&state, input)
}

// Combine takes ownership of other's pages, appending them to this
// collection's page list without copying any row data. Other is left empty
// and frozen. The column types of both collections must match exactly.
func (c *Collection) Combine(other *Collection) error {
	if !types.Equals(c.typs, other.typs) {
		return vortexerrors.New(vortexerrors.ErrorTypeInternal, "combining collections with mismatching types").
			WithDetail("expected", types.Describe(c.typs)).
			WithDetail("got", types.Describe(other.typs))
	}
	c.count += other.count
	c.pages = append(c.pages, other.pages...)
	other.pages = nil
	other.count = 0
	other.finishedAppend = true
	logger.Debug("colbuf: combined collections",
		zap.Int("total_rows", c.count),
		zap.Int("total_pages", len(c.pages)))
	return c.Verify()
}

// Count returns the total number of rows in the collection.
func (c *Collection) Count() int { return c.count }

// Types returns the collection's column types.
func (c *Collection) Types() []types.Type { return c.typs }

// ColumnCount returns the number of top-level columns.
func (c *Collection) ColumnCount() int { return len(c.typs) }

// ChunkCount returns the total number of chunks across all pages.
func (c *Collection) ChunkCount() int {
	total := 0
	for _, p := range c.pages {
		total += p.ChunkCount()
	}
	return total
}

// Reset drops all rows and pages and reopens the collection for appends,
// keeping the column types and copy functions. A fresh allocator replaces
// the old one so a previously shared arena is released along with the
// pages.
func (c *Collection) Reset() {
	c.count = 0
	c.pages = nil
	c.finishedAppend = false
	c.alloc = storage.NewAllocator()
}

// Verify checks the internal row-count invariants: every page's chunk
// counts must sum to its page count, and page counts must sum to the
// collection count.
func (c *Collection) Verify() error {
	total := 0
	for _, p := range c.pages {
		if err := p.Verify(); err != nil {
			return err
		}
		total += p.Count()
	}
	if total != c.count {
		return vortexerrors.New(vortexerrors.ErrorTypeInternal, "page counts do not sum to collection count").
			WithDetail("page_total", total).
			WithDetail("collection_count", c.count)
	}
	return nil
}

// Describe returns a JSON summary of the collection's shape, intended for
// logs and diagnostics.
func (c *Collection) Describe() string {
	summary := struct {
		Rows    int      `json:"rows"`
		Pages   int      `json:"pages"`
		Chunks  int      `json:"chunks"`
		Blocks  int      `json:"blocks"`
		Columns []string `json:"columns"`
	}{
		Rows:   c.count,
		Pages:  len(c.pages),
		Chunks: c.ChunkCount(),
		Blocks: c.alloc.BlockCount(),
	}
	for _, t := range c.typs {
		summary.Columns = append(summary.Columns, t.String())
	}
	b, err := json.Marshal(summary)
	if err != nil {
		return fmt.Sprintf("{\"rows\":%d}", c.count)
	}
	return string(b)
}

// String implements fmt.Stringer.
func (c *Collection) String() string {
	return fmt.Sprintf("Collection(%d rows, %d columns, %d chunks)", c.count, len(c.typs), c.ChunkCount())
}

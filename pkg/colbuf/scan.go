package colbuf

import (
	"sync"

	"github.com/vortexql/vortex/pkg/pool"
	"github.com/vortexql/vortex/pkg/storage"
	"github.com/vortexql/vortex/pkg/vector"
)

// ScanState is a serial scan cursor over a collection: the current page and
// chunk position, the global row index of the chunk being read, and the
// pinned blocks of the current page.
type ScanState struct {
	pageIndex       int
	chunkIndex      int
	currentRowIndex int
	nextRowIndex    int
	chunkState      storage.ChunkState
}

// CurrentRowIndex returns the global row offset of the most recently
// scanned chunk.
func (s *ScanState) CurrentRowIndex() int { return s.currentRowIndex }

// ParallelScanState is the shared half of a parallel scan: a single cursor
// advanced under a mutex. Chunk materialization happens outside the lock,
// in each worker's LocalScanState.
type ParallelScanState struct {
	mu   sync.Mutex
	scan ScanState
}

// LocalScanState is the per-worker half of a parallel scan: the worker's
// own pinned blocks and the global row offset of its current chunk. Pinned
// handles are dropped whenever the worker crosses into a different page,
// since block ids are only unique within one page's allocator.
type LocalScanState struct {
	pageIndex       int
	chunkState      storage.ChunkState
	currentRowIndex int
}

// CurrentRowIndex returns the global row offset of the chunk this worker
// most recently scanned.
func (l *LocalScanState) CurrentRowIndex() int { return l.currentRowIndex }

// InitializeScan positions a scan cursor at the start of the collection.
func (c *Collection) InitializeScan(state *ScanState) {
	state.pageIndex = 0
	state.chunkIndex = 0
	state.currentRowIndex = 0
	state.nextRowIndex = 0
	state.chunkState.Reset()
}

// InitializeParallelScan positions a shared parallel cursor at the start of
// the collection.
func (c *Collection) InitializeParallelScan(state *ParallelScanState) {
	c.InitializeScan(&state.scan)
}

// nextScanIndex claims the next chunk, skipping exhausted pages, and
// advances the cursor past it. It is the only operation that mutates scan
// position; parallel scans serialize exactly this call.
func (c *Collection) nextScanIndex(state *ScanState) (chunkIdx, pageIdx, rowIdx int, ok bool) {
	state.currentRowIndex = state.nextRowIndex
	rowIdx = state.nextRowIndex
	if state.pageIndex >= len(c.pages) {
		return 0, 0, 0, false
	}
	for state.chunkIndex >= c.pages[state.pageIndex].ChunkCount() {
		state.chunkIndex = 0
		state.pageIndex++
		state.chunkState.Reset()
		if state.pageIndex >= len(c.pages) {
			return 0, 0, 0, false
		}
	}
	state.nextRowIndex += c.pages[state.pageIndex].Chunk(state.chunkIndex).Count
	chunkIdx = state.chunkIndex
	pageIdx = state.pageIndex
	state.chunkIndex++
	return chunkIdx, pageIdx, rowIdx, true
}

// Scan materializes the next chunk into result and advances the cursor.
// Returns false when the collection is exhausted; result is left reset in
// that case.
func (c *Collection) Scan(state *ScanState, result *vector.Batch) bool {
	result.Reset()
	chunkIdx, pageIdx, _, ok := c.nextScanIndex(state)
	if !ok {
		return false
	}
	c.pages[pageIdx].ReadChunk(chunkIdx, &state.chunkState, result)
	return true
}

// ScanParallel claims the next chunk under the shared cursor's lock, then
// materializes it into result outside the lock using the worker's local
// state. Each chunk is delivered to exactly one worker; chunk order across
// workers is unspecified, but CurrentRowIndex on the local state gives each
// chunk's global row offset.
func (c *Collection) ScanParallel(state *ParallelScanState, lstate *LocalScanState, result *vector.Batch) bool {
	result.Reset()
	state.mu.Lock()
	chunkIdx, pageIdx, rowIdx, ok := c.nextScanIndex(&state.scan)
	state.mu.Unlock()
	if !ok {
		return false
	}
	if lstate.pageIndex != pageIdx {
		lstate.chunkState.Reset()
		lstate.pageIndex = pageIdx
	}
	lstate.currentRowIndex = rowIdx
	c.pages[pageIdx].ReadChunk(chunkIdx, &lstate.chunkState, result)
	return true
}

// NewScanBatch allocates a batch shaped for scanning this collection.
func (c *Collection) NewScanBatch() *vector.Batch {
	return vector.NewBatch(c.typs)
}

// AcquireScanBatch returns a pooled scan batch. Pair with ReleaseScanBatch
// when done; batches are reset on release.
func (c *Collection) AcquireScanBatch() *vector.Batch {
	return c.scanBatchPool().Get()
}

// ReleaseScanBatch returns a batch obtained from AcquireScanBatch.
func (c *Collection) ReleaseScanBatch(b *vector.Batch) {
	c.scanBatchPool().Put(b)
}

func (c *Collection) scanBatchPool() *pool.Pool[*vector.Batch] {
	c.poolOnce.Do(func() {
		c.batchPool = pool.New(
			func() *vector.Batch { return vector.NewBatch(c.typs) },
			func(b *vector.Batch) { b.Reset() },
		)
	})
	return c.batchPool
}

// ScanAll runs a full serial scan, invoking fn once per chunk. The batch is
// pooled and reused between invocations; fn must not retain it.
func (c *Collection) ScanAll(fn func(*vector.Batch)) {
	var state ScanState
	c.InitializeScan(&state)
	batch := c.AcquireScanBatch()
	defer c.ReleaseScanBatch(batch)
	for c.Scan(&state, batch) {
		fn(batch)
	}
}

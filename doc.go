// Package vortex provides the in-memory columnar buffering layer of the
// Vortex vectorized query execution engine.
//
// Operators that need to materialize more rows than fit in a single batch
// (joins, aggregates, sorts, intermediate results) accumulate their output
// into a colbuf.Collection: a paged, densely packed columnar store that
// supports arbitrarily nested logical types (VARCHAR, LIST, STRUCT) with
// bit-packed per-row validity tracking, and later replays the data through
// the same batch interface in original order.
//
// # Packages
//
//   - pkg/colbuf:   the collection itself - append engine, copy-function
//     dispatch tree, serial and parallel scan cursors, Combine
//   - pkg/vector:   batches, vectors, selection vectors and the flattened
//     (selection + validity + raw data) view consumed by the copy engine
//   - pkg/storage:  the block allocator, page/chunk/slot bookkeeping and the
//     append-only string heap
//   - pkg/validity: bit-packed validity masks with an all-valid sentinel
//   - pkg/types:    the logical column type tree
//
// # Quick start
//
//	import (
//	    "github.com/vortexql/vortex/pkg/colbuf"
//	    "github.com/vortexql/vortex/pkg/types"
//	    "github.com/vortexql/vortex/pkg/vector"
//	)
//
//	col := colbuf.New([]types.Type{types.Integer(), types.Varchar()})
//	batch := vector.NewBatch(col.Types())
//	// ... fill batch ...
//	if err := col.AppendBatch(batch); err != nil {
//	    return err
//	}
//	col.ScanAll(func(out *vector.Batch) {
//	    // consume rows in original order
//	})
//
// The buffer is transient and process-local: no persistence, transactions,
// compression or on-disk format. Appends are single-writer; fully appended
// collections may be scanned by many threads concurrently.
package vortex

package vector

import (
	"github.com/vortexql/vortex/pkg/types"
)

// Batch is a row group of vectors, one per column, and is the unit of
// collection appends and scans. All vectors share the batch's row count.
type Batch struct {
	vectors []*Vector
	typs    []types.Type
	count   int
}

// NewBatch returns a batch with one standard-capacity flat vector per type.
func NewBatch(typs []types.Type) *Batch {
	b := &Batch{
		vectors: make([]*Vector, len(typs)),
		typs:    append([]types.Type(nil), typs...),
	}
	for i, t := range typs {
		b.vectors[i] = NewVector(t)
	}
	return b
}

// ColumnCount returns the number of columns.
func (b *Batch) ColumnCount() int { return len(b.vectors) }

// Vector returns the column vector at the given index.
func (b *Batch) Vector(col int) *Vector { return b.vectors[col] }

// ReplaceVector swaps in a different vector for a column, used to feed
// alternative encodings (constant, dictionary) through the append path.
func (b *Batch) ReplaceVector(col int, v *Vector) { b.vectors[col] = v }

// Types returns the column types.
func (b *Batch) Types() []types.Type { return b.typs }

// Count returns the number of rows in the batch.
func (b *Batch) Count() int { return b.count }

// SetCount sets the number of rows in the batch.
func (b *Batch) SetCount(n int) { b.count = n }

// Reset clears the batch for reuse: the row count drops to zero and every
// vector returns to an all-valid flat state with empty private heaps.
func (b *Batch) Reset() {
	b.count = 0
	for i, v := range b.vectors {
		if v.format != FormatFlat {
			b.vectors[i] = NewVector(b.typs[i])
			continue
		}
		v.resetForReuse()
	}
}

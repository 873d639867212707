// Package pool provides typed object pooling for Vortex. It wraps sync.Pool
// with statistics tracking and automatic reset functionality, reducing
// garbage collection pressure on hot paths such as scan batch allocation.
//
// Example usage:
//
//	batches := pool.New(
//	    func() *vector.Batch { return vector.NewBatch(typs) },
//	    func(b *vector.Batch) { b.Reset() },
//	)
//	batch := batches.Get()
//	defer batches.Put(batch)
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool represents a generic object pool with type safety. The pool is safe
// for concurrent use; pointer types are recommended for efficiency.
type Pool[T any] struct {
	pool  sync.Pool
	new   func() T
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
	}
}

// New creates a new typed pool with custom allocation and reset functions.
// The new function is called when the pool is empty and a new object is
// needed. The reset function, if non-nil, is called before returning an
// object to the pool.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{
		new:   newFn,
		reset: reset,
	}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get retrieves an object from the pool, creating one if the pool is empty.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	return p.pool.Get().(T)
}

// Put returns an object to the pool for reuse, resetting it first if a
// reset function was provided.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns the total number of objects created by the pool and the
// number currently checked out.
func (p *Pool[T]) Stats() (allocated, inUse int64) {
	return atomic.LoadInt64(&p.stats.allocated), atomic.LoadInt64(&p.stats.inUse)
}

package colbuf

import (
	"testing"

	"github.com/vortexql/vortex/pkg/types"
	"github.com/vortexql/vortex/pkg/vector"
)

func BenchmarkAppendInt(b *testing.B) {
	c := New([]types.Type{types.Integer()})
	var state AppendState
	if err := c.InitializeAppend(&state); err != nil {
		b.Fatal(err)
	}
	batch := intBatch(0, vector.Capacity)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Append(&state, batch); err != nil {
			b.Fatal(err)
		}
		if c.Count() >= 1<<22 {
			b.StopTimer()
			c.Reset()
			if err := c.InitializeAppend(&state); err != nil {
				b.Fatal(err)
			}
			b.StartTimer()
		}
	}
}

func BenchmarkAppendVarchar(b *testing.B) {
	c := New([]types.Type{types.Integer(), types.Varchar()})
	var state AppendState
	if err := c.InitializeAppend(&state); err != nil {
		b.Fatal(err)
	}
	batch := rowBatch(0, vector.Capacity)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Append(&state, batch); err != nil {
			b.Fatal(err)
		}
		if c.Count() >= 1<<21 {
			b.StopTimer()
			c.Reset()
			if err := c.InitializeAppend(&state); err != nil {
				b.Fatal(err)
			}
			b.StartTimer()
		}
	}
}

func BenchmarkScan(b *testing.B) {
	c := New([]types.Type{types.Integer()})
	var astate AppendState
	if err := c.InitializeAppend(&astate); err != nil {
		b.Fatal(err)
	}
	batch := intBatch(0, vector.Capacity)
	for c.Count() < 1<<20 {
		if err := c.Append(&astate, batch); err != nil {
			b.Fatal(err)
		}
	}
	out := c.NewScanBatch()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var state ScanState
		c.InitializeScan(&state)
		for c.Scan(&state, out) {
		}
	}
}

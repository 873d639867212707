package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scratch struct {
	buf []byte
}

func TestGetPut(t *testing.T) {
	p := New(
		func() *scratch { return &scratch{buf: make([]byte, 0, 64)} },
		func(s *scratch) { s.buf = s.buf[:0] },
	)

	s := p.Get()
	require.NotNil(t, s)
	s.buf = append(s.buf, 1, 2, 3)
	p.Put(s)

	again := p.Get()
	assert.Empty(t, again.buf, "reset runs on Put")
	p.Put(again)
}

func TestStats(t *testing.T) {
	p := New(func() *scratch { return &scratch{} }, nil)

	a := p.Get()
	b := p.Get()
	allocated, inUse := p.Stats()
	assert.Equal(t, int64(2), allocated)
	assert.Equal(t, int64(2), inUse)

	p.Put(a)
	p.Put(b)
	_, inUse = p.Stats()
	assert.Equal(t, int64(0), inUse)
}

func TestConcurrentUse(t *testing.T) {
	p := New(
		func() *scratch { return &scratch{buf: make([]byte, 0, 16)} },
		func(s *scratch) { s.buf = s.buf[:0] },
	)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				s := p.Get()
				s.buf = append(s.buf, byte(i))
				p.Put(s)
			}
		}()
	}
	wg.Wait()

	_, inUse := p.Stats()
	assert.Equal(t, int64(0), inUse)
}

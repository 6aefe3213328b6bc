package client

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdGenerator(t *testing.T) {
	assert := assert.New(t)

	g := NewIdGenerator(func() uint32 { return 100 })
	assert.Equal(uint32(100), g.Last())
	assert.Equal(uint32(101), g.Next())
	assert.Equal(uint32(102), g.Next())
	assert.Equal(uint32(102), g.Last())

	g = NewIdGenerator(func() uint32 { return 0xfffffffe })
	assert.Equal(uint32(0xffffffff), g.Next())
	assert.Equal(uint32(0), g.Next())
	assert.Equal(uint32(1), g.Next())
}

func TestIdGeneratorReset(t *testing.T) {
	assert := assert.New(t)

	seed := uint32(7)
	g := NewIdGenerator(func() uint32 { return seed })
	g.Next()
	g.Next()
	assert.Equal(uint32(9), g.Last())

	seed = 1000
	g.Reset()
	assert.Equal(uint32(1000), g.Last())
	assert.Equal(uint32(1001), g.Next())
}

func TestIdGeneratorRandom(t *testing.T) {
	assert := assert.New(t)

	seen := make(map[uint32]bool)
	for i := 0; i < 16; i++ {
		seen[NewIdGenerator(nil).Last()] = true
	}
	assert.Greater(len(seen), 1)

	g := NewIdGenerator(nil)
	first := g.Next()
	for i := uint32(1); i < 100; i++ {
		assert.Equal(first+i, g.Next())
	}
}

func TestIdGeneratorConcurrent(t *testing.T) {
	require := require.New(t)

	g := NewIdGenerator(func() uint32 { return 0xffffff00 })
	ids := make(chan uint32, 16*1000)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				ids <- g.Next()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint32]bool)
	for id := range ids {
		require.False(seen[id])
		seen[id] = true
	}
	require.Len(seen, 16000)
	require.Equal(uint32(16000-0x100), g.Last())
}

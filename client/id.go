package client

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
)

// IdGenerator hands out message ids, each one is the previous plus one modulo
// 2^32. The starting point is random so the collector can tell sessions apart.
type IdGenerator struct {
	sync.Mutex
	last uint32
	seed func() uint32
}

func NewIdGenerator(seed func() uint32) *IdGenerator {
	if seed == nil {
		seed = randomSeed
	}
	g := &IdGenerator{seed: seed}
	g.Reset()
	return g
}

func (g *IdGenerator) Next() uint32 {
	g.Lock()
	defer g.Unlock()
	g.last++
	return g.last
}

func (g *IdGenerator) Reset() {
	g.Lock()
	defer g.Unlock()
	g.last = g.seed()
}

func (g *IdGenerator) Last() uint32 {
	g.Lock()
	defer g.Unlock()
	return g.last
}

func randomSeed() uint32 {
	var b [4]byte
	_, err := rand.Read(b[:])
	if err != nil {
		panic(err)
	}
	return binary.BigEndian.Uint32(b[:])
}

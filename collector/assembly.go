package collector

import (
	"time"

	"github.com/MixinNetwork/plog/packet"
	"github.com/willf/bitset"
)

type Message struct {
	Id         uint32
	Checksum   uint32
	Tags       []string
	Data       []byte
	ReceivedAt time.Time
}

// assembly collects the chunks of one message id until all of them arrived.
type assembly struct {
	id        uint32
	length    uint32
	checksum  uint32
	chunkSize uint16
	count     uint16
	tags      []string
	chunks    [][]byte
	received  *bitset.BitSet
	createdAt time.Time
}

func newAssembly(m *packet.MultipartMessage, now time.Time) *assembly {
	return &assembly{
		id:        m.Id,
		length:    m.Length,
		checksum:  m.Checksum,
		chunkSize: m.ChunkSize,
		count:     m.Count,
		tags:      m.Tags,
		chunks:    make([][]byte, m.Count),
		received:  bitset.New(uint(m.Count)),
		createdAt: now,
	}
}

func (a *assembly) matches(m *packet.MultipartMessage) bool {
	return a.count == m.Count &&
		a.length == m.Length &&
		a.checksum == m.Checksum &&
		a.chunkSize == m.ChunkSize
}

// add returns false for a chunk index already received.
func (a *assembly) add(m *packet.MultipartMessage) bool {
	i := uint(m.Index)
	if a.received.Test(i) {
		return false
	}
	a.received.Set(i)
	a.chunks[i] = append([]byte{}, m.Payload...)
	return true
}

func (a *assembly) complete() bool {
	return a.received.Count() == uint(a.count)
}

func (a *assembly) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(a.createdAt) > ttl
}

func (a *assembly) message(now time.Time) *Message {
	data := make([]byte, 0, a.length)
	for _, c := range a.chunks {
		data = append(data, c...)
	}
	return &Message{
		Id:         a.id,
		Checksum:   a.checksum,
		Tags:       a.tags,
		Data:       data,
		ReceivedAt: now,
	}
}

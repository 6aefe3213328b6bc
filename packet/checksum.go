package packet

import "github.com/spaolacci/murmur3"

// Checksum is the 32 bits MurmurHash3 of the whole message with seed 0, the
// collector verifies it after reassembly.
//
// murmur3.Sum32 walks the data with raw pointer arithmetic that the race
// detector's checkptr instrumentation rejects, the streaming hasher indexes
// the slice and yields the same sum.
func Checksum(data []byte) uint32 {
	h := murmur3.New32()
	h.Write(data)
	return h.Sum32()
}

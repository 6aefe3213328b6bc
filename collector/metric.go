package collector

import (
	"sync/atomic"

	"github.com/MixinNetwork/plog/config"
)

type MetricPool struct {
	ReceivedPackets  uint64 `json:"received_packets"`
	InvalidPackets   uint64 `json:"invalid_packets"`
	DuplicatePackets uint64 `json:"duplicate_packets"`
	Commands         uint64 `json:"commands"`
	Messages         uint64 `json:"messages"`
	ChecksumFailures uint64 `json:"checksum_failures"`
	Expired          uint64 `json:"expired"`
}

func (mp *MetricPool) add(counter *uint64) {
	atomic.AddUint64(counter, 1)
}

func (mp *MetricPool) snapshot(pending int) map[string]interface{} {
	return map[string]interface{}{
		"received_packets":  atomic.LoadUint64(&mp.ReceivedPackets),
		"invalid_packets":   atomic.LoadUint64(&mp.InvalidPackets),
		"duplicate_packets": atomic.LoadUint64(&mp.DuplicatePackets),
		"commands":          atomic.LoadUint64(&mp.Commands),
		"messages":          atomic.LoadUint64(&mp.Messages),
		"checksum_failures": atomic.LoadUint64(&mp.ChecksumFailures),
		"expired":           atomic.LoadUint64(&mp.Expired),
		"pending":           pending,
		"version":           config.BuildVersion,
	}
}

package config

import "time"

const (
	BuildVersion = "v0.1.0-BUILD_VERSION"

	DefaultHost         = "127.0.0.1"
	DefaultPort         = 23456
	DefaultChunkSize    = 64000
	DefaultStatsTimeout = 3 * time.Second

	// a single UDP datagram never exceeds this
	ReceiveBufferSize = 65536

	DefaultCollectorListener = "127.0.0.1:23456"
	DefaultCollectorTTL      = 10 * time.Second
	DefaultLogLevel          = 2
)

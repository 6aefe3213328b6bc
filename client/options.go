package client

import (
	"fmt"
	"net"
	"strconv"

	"github.com/MixinNetwork/plog/config"
	"github.com/MixinNetwork/plog/logger"
	"github.com/MixinNetwork/plog/network"
	"github.com/MixinNetwork/plog/packet"
)

type Logger interface {
	Debugf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Options start from DefaultOptions. An empty Host or a zero Port fall back
// to the defaults in the config package, a zero ChunkSize has no fallback and
// is rejected by New like any other out of range value.
type Options struct {
	Host           string
	Port           int
	SendBufferSize int
	ChunkSize      int

	// OnLargeMessage is called before sending a message longer than
	// LargeMessageThreshold, 0 disables it. Its errors are only logged.
	LargeMessageThreshold int
	OnLargeMessage        func(c *Client, message []byte) error

	Logger    Logger
	Ids       *IdGenerator
	Transport network.Transport
}

func DefaultOptions() Options {
	return Options{
		Host:      config.DefaultHost,
		Port:      config.DefaultPort,
		ChunkSize: config.DefaultChunkSize,
	}
}

func (o *Options) validate() error {
	if o.Host == "" {
		o.Host = config.DefaultHost
	}
	if o.Port == 0 {
		o.Port = config.DefaultPort
	}
	if o.Port < 0 || o.Port > 65535 {
		return &ConfigError{"port", fmt.Sprintf("%d out of range", o.Port)}
	}
	if o.SendBufferSize < 0 {
		return &ConfigError{"send_buffer_size", fmt.Sprintf("%d is negative", o.SendBufferSize)}
	}
	if o.ChunkSize < 1 || o.ChunkSize > packet.MaxChunkSize {
		return &ConfigError{"chunk_size", fmt.Sprintf("%d not in [1, %d]", o.ChunkSize, packet.MaxChunkSize)}
	}
	if o.LargeMessageThreshold < 0 {
		return &ConfigError{"large_message_threshold", fmt.Sprintf("%d is negative", o.LargeMessageThreshold)}
	}

	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	if o.Ids == nil {
		o.Ids = NewIdGenerator(nil)
	}
	if o.Transport == nil {
		addr := net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
		trans, err := network.NewUdpClient(addr, o.SendBufferSize)
		if err != nil {
			return &ConfigError{"send_buffer_size", err.Error()}
		}
		o.Transport = trans
	}
	return nil
}

package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

type Custom struct {
	Client struct {
		Host                  string `toml:"host"`
		Port                  int    `toml:"port"`
		SendBufferSize        int    `toml:"send-buffer-size"`
		ChunkSize             int    `toml:"chunk-size"`
		LargeMessageThreshold int    `toml:"large-message-threshold"`
	} `toml:"client"`
	Log struct {
		Level   int    `toml:"level"`
		Filter  string `toml:"filter"`
		Limiter int    `toml:"limiter"`
	} `toml:"log"`
	Collector struct {
		Listener string        `toml:"listener"`
		Dir      string        `toml:"dir"`
		TTL      int           `toml:"ttl"`
		HTTPPort int           `toml:"http-port"`
		Expiry   time.Duration `toml:"-"`
	} `toml:"collector"`
}

func Initialize(file string) (*Custom, error) {
	f, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var config Custom
	err = toml.NewDecoder(bytes.NewReader(f)).Strict(true).Decode(&config)
	if err != nil {
		return nil, err
	}
	tree, err := toml.LoadBytes(f)
	if err != nil {
		return nil, err
	}
	// an absent chunk-size takes the default, an explicit one must be usable
	if tree.Has("client.chunk-size") && config.Client.ChunkSize < 1 {
		return nil, fmt.Errorf("config client.chunk-size %d must be positive", config.Client.ChunkSize)
	}
	config.fillDefaults()
	return &config, nil
}

func Default() *Custom {
	var config Custom
	config.fillDefaults()
	return &config
}

func (c *Custom) fillDefaults() {
	if c.Client.Host == "" {
		c.Client.Host = DefaultHost
	}
	if c.Client.Port == 0 {
		c.Client.Port = DefaultPort
	}
	if c.Client.ChunkSize == 0 {
		c.Client.ChunkSize = DefaultChunkSize
	}
	if c.Log.Level == 0 {
		c.Log.Level = DefaultLogLevel
	}
	if c.Collector.Listener == "" {
		c.Collector.Listener = DefaultCollectorListener
	}
	c.Collector.Expiry = DefaultCollectorTTL
	if c.Collector.TTL > 0 {
		c.Collector.Expiry = time.Duration(c.Collector.TTL) * time.Second
	}
}

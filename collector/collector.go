// Package collector is a development receiver for the plog wire format. It
// reassembles multipart messages, verifies their checksum and answers the
// stats command, enough to exercise a client end to end.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"time"

	"github.com/MixinNetwork/plog/config"
	"github.com/MixinNetwork/plog/logger"
	"github.com/MixinNetwork/plog/network"
	"github.com/MixinNetwork/plog/packet"
	"github.com/cornelk/hashmap"
)

const ReadTimeout = 200 * time.Millisecond

type Handler func(m *Message) error

type Options struct {
	TTL     time.Duration
	Handler Handler
	Logger  *logger.Logger
}

type Collector struct {
	listener  network.Listener
	ttl       time.Duration
	handler   Handler
	logger    *logger.Logger
	pending   *hashmap.HashMap
	metric    *MetricPool
	lastSweep time.Time
}

func New(listener network.Listener, opts Options) *Collector {
	if opts.TTL <= 0 {
		opts.TTL = config.DefaultCollectorTTL
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return &Collector{
		listener:  listener,
		ttl:       opts.TTL,
		handler:   opts.Handler,
		logger:    opts.Logger,
		pending:   &hashmap.HashMap{},
		metric:    &MetricPool{},
		lastSweep: time.Now(),
	}
}

// Run reads datagrams until ctx is done or the listener fails.
func (c *Collector) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		data, addr, err := c.listener.ReadFrom(ReadTimeout)
		now := time.Now()
		if err == nil {
			c.handle(data, addr, now)
		} else if !errors.Is(err, os.ErrDeadlineExceeded) {
			return err
		}
		if now.Sub(c.lastSweep) > c.ttl/2 {
			c.expire(now)
			c.lastSweep = now
		}
	}
}

func (c *Collector) Stats() map[string]interface{} {
	return c.metric.snapshot(c.pending.Len())
}

func (c *Collector) handle(data []byte, addr net.Addr, now time.Time) {
	c.metric.add(&c.metric.ReceivedPackets)
	typ, err := packet.Type(data)
	if err != nil {
		c.metric.add(&c.metric.InvalidPackets)
		c.logger.Verbosef("collector: invalid packet from %s: %v", addr, err)
		return
	}
	switch typ {
	case packet.TypeCommand:
		c.handleCommand(data, addr)
	case packet.TypeMultipartMessage:
		c.handleMultipart(data, addr, now)
	default:
		c.metric.add(&c.metric.InvalidPackets)
		c.logger.Verbosef("collector: unknown packet type %d from %s", typ, addr)
	}
}

func (c *Collector) handleCommand(data []byte, addr net.Addr) {
	c.metric.add(&c.metric.Commands)
	cmd, err := packet.ParseCommand(data)
	if err != nil || cmd != packet.CommandStats {
		c.metric.add(&c.metric.InvalidPackets)
		c.logger.Verbosef("collector: unknown command %q from %s", cmd, addr)
		return
	}
	reply, err := json.Marshal(c.Stats())
	if err != nil {
		panic(err)
	}
	err = c.listener.WriteTo(reply, addr)
	if err != nil {
		c.logger.Errorf("collector: stats reply to %s error %v", addr, err)
	}
}

func (c *Collector) handleMultipart(data []byte, addr net.Addr, now time.Time) {
	m, err := packet.ParseMultipartMessage(data)
	if err != nil {
		c.metric.add(&c.metric.InvalidPackets)
		c.logger.Verbosef("collector: invalid multipart from %s: %v", addr, err)
		return
	}

	var a *assembly
	val, found := c.pending.Get(m.Id)
	if found {
		a = val.(*assembly)
	} else {
		a = newAssembly(m, now)
		c.pending.Set(m.Id, a)
	}
	if !a.matches(m) {
		c.metric.add(&c.metric.InvalidPackets)
		c.logger.Verbosef("collector: multipart %d chunk %d does not match its message", m.Id, m.Index)
		return
	}
	if !a.add(m) {
		c.metric.add(&c.metric.DuplicatePackets)
		return
	}
	if !a.complete() {
		return
	}

	c.pending.Del(m.Id)
	msg := a.message(now)
	if uint32(len(msg.Data)) != a.length || packet.Checksum(msg.Data) != a.checksum {
		c.metric.add(&c.metric.ChecksumFailures)
		c.logger.Printf("collector: message %d checksum mismatch", m.Id)
		return
	}
	c.metric.add(&c.metric.Messages)
	c.logger.Debugf("collector: message %d complete (%d bytes; %d chunk(s))", m.Id, len(msg.Data), a.count)
	if c.handler == nil {
		return
	}
	err = c.handler(msg)
	if err != nil {
		c.logger.Errorf("collector: handler error for message %d: %v", m.Id, err)
	}
}

func (c *Collector) expire(now time.Time) {
	var expired []interface{}
	for kv := range c.pending.Iter() {
		a := kv.Value.(*assembly)
		if a.expired(now, c.ttl) {
			expired = append(expired, kv.Key)
		}
	}
	for _, k := range expired {
		c.pending.Del(k)
		c.metric.add(&c.metric.Expired)
		c.logger.Verbosef("collector: message %v expired", k)
	}
}

// Package client sends messages to a plog collector.
//
// A message is split at byte boundaries into chunks of at most ChunkSize
// bytes, each chunk goes out as one self describing UDP datagram. Nothing is
// acknowledged or retried, the collector reassembles the chunks by message id
// and checks the MurmurHash3 checksum of the whole message.
package client

import (
	"fmt"
	"sync"

	"github.com/MixinNetwork/plog/network"
	"github.com/MixinNetwork/plog/packet"
)

type Client struct {
	opts      Options
	ids       *IdGenerator
	transport network.Transport
	logger    Logger

	mutex  sync.Mutex
	socket network.Client
}

func New(opts Options) (*Client, error) {
	err := opts.validate()
	if err != nil {
		return nil, err
	}
	return &Client{
		opts:      opts,
		ids:       opts.Ids,
		transport: opts.Transport,
		logger:    opts.Logger,
	}, nil
}

func (c *Client) Host() string {
	return c.opts.Host
}

func (c *Client) Port() int {
	return c.opts.Port
}

func (c *Client) ChunkSize() int {
	return c.opts.ChunkSize
}

func (c *Client) LastMessageId() uint32 {
	return c.ids.Last()
}

// Send transmits message as one datagram per chunk, in chunk order, and
// returns the message id. Chunks already written when a datagram fails are
// not retracted, the socket is discarded and reopened by the next call.
func (c *Client) Send(message []byte, tags ...string) (uint32, error) {
	err := c.validateMessage(message, tags)
	if err != nil {
		c.logger.Errorf("plog: error sending message: %v", err)
		return 0, err
	}
	if c.isLargeMessage(message) {
		c.notifyLargeMessage(message)
	}

	id := c.ids.Next()
	length := uint32(len(message))
	checksum := packet.Checksum(message)
	chunks := packet.Split(message, c.opts.ChunkSize)

	c.logger.Debugf("plog: sending (%d; %d chunk(s))", id, len(chunks))
	for i, data := range chunks {
		m := &packet.MultipartMessage{
			Id:        id,
			Length:    length,
			Checksum:  checksum,
			ChunkSize: uint16(c.opts.ChunkSize),
			Count:     uint16(len(chunks)),
			Index:     uint16(i),
			Tags:      tags,
			Payload:   data,
		}
		err = c.write(m.Encode())
		if err != nil {
			c.logger.Errorf("plog: error sending message %d at chunk %d/%d: %v", id, i, len(chunks), err)
			return 0, err
		}
	}
	return id, nil
}

// Reset picks a new random message id base and drops the socket.
func (c *Client) Reset() error {
	c.ids.Reset()
	return c.Close()
}

func (c *Client) Close() error {
	c.mutex.Lock()
	s := c.socket
	c.socket = nil
	c.mutex.Unlock()

	if s == nil {
		return nil
	}
	return s.Close()
}

// Socket returns the shared socket, opening it on first use.
func (c *Client) Socket() (network.Client, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.socket != nil {
		return c.socket, nil
	}
	s, err := c.transport.Dial()
	if err != nil {
		return nil, err
	}
	c.socket = s
	return s, nil
}

func (c *Client) validateMessage(message []byte, tags []string) error {
	if uint64(len(message)) > packet.MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(message))
	}
	count := packet.ChunkCount(len(message), c.opts.ChunkSize)
	if count > packet.MaxChunkCount {
		return fmt.Errorf("%w: %d chunks", ErrMessageTooLarge, count)
	}
	block, err := packet.EncodeTags(tags)
	if err != nil {
		return err
	}
	payload := c.opts.ChunkSize
	if len(message) < payload {
		payload = len(message)
	}
	if size := packet.MultipartHeaderSize + len(block) + payload; size > packet.MaxDatagramSize {
		return fmt.Errorf("%w: %d bytes datagram", ErrMessageTooLarge, size)
	}
	return nil
}

func (c *Client) isLargeMessage(message []byte) bool {
	threshold := c.opts.LargeMessageThreshold
	return threshold > 0 && len(message) > threshold
}

func (c *Client) notifyLargeMessage(message []byte) {
	if c.opts.OnLargeMessage == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorf("plog: large message callback panic: %v", r)
		}
	}()
	err := c.opts.OnLargeMessage(c, message)
	if err != nil {
		c.logger.Errorf("plog: large message callback error: %v", err)
	}
}

func (c *Client) write(data []byte) error {
	s, err := c.Socket()
	if err != nil {
		c.logger.Errorf("plog: error opening socket: %v", err)
		return &TransportError{Op: "dial", Err: err}
	}
	c.logger.Debugf("plog: writing %d bytes to %s", len(data), s.RemoteAddr())
	err = s.Send(data)
	if err != nil {
		c.logger.Errorf("plog: error writing to socket: %v", err)
		c.discard(s)
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

// discard closes s and forgets it unless another caller already replaced it.
func (c *Client) discard(s network.Client) {
	c.mutex.Lock()
	if c.socket == s {
		c.socket = nil
	}
	c.mutex.Unlock()
	s.Close()
}

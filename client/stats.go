package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/MixinNetwork/plog/config"
	"github.com/MixinNetwork/plog/packet"
)

// Stats asks the collector for its counters and waits up to timeout for the
// JSON reply. A missing reply is ErrTimeout and leaves the socket open, a
// reply arriving after that is dropped by the next Stats before it asks again.
func (c *Client) Stats(timeout time.Duration) (map[string]interface{}, error) {
	if timeout <= 0 {
		timeout = config.DefaultStatsTimeout
	}
	s, err := c.Socket()
	if err != nil {
		c.logger.Errorf("plog: error opening socket: %v", err)
		return nil, &TransportError{Op: "dial", Err: err}
	}
	n, err := s.Drain()
	if err != nil {
		c.logger.Errorf("plog: error draining socket: %v", err)
		c.discard(s)
		return nil, &TransportError{Op: "read", Err: err}
	} else if n > 0 {
		c.logger.Debugf("plog: dropped %d stale datagram(s) from %s", n, s.RemoteAddr())
	}

	err = c.write(packet.EncodeCommand(packet.CommandStats))
	if err != nil {
		return nil, err
	}

	c.logger.Debugf("plog: receiving from socket %s with timeout %s", s.RemoteAddr(), timeout)
	data, err := s.Receive(timeout)
	if isTimeout(err) {
		return nil, fmt.Errorf("%w: no answer in %s", ErrTimeout, timeout)
	} else if err != nil {
		c.logger.Errorf("plog: error reading from socket: %v", err)
		c.discard(s)
		return nil, &TransportError{Op: "read", Err: err}
	}

	var stats map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	err = dec.Decode(&stats)
	if err != nil {
		return nil, &ProtocolError{Reply: data, Err: err}
	}
	if stats == nil {
		return nil, &ProtocolError{Reply: data, Err: errors.New("not a JSON object")}
	}
	return stats, nil
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

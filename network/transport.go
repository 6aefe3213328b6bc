package network

import (
	"net"
	"time"
)

const UdpMessageMaxSize = 65507

// Client is an outbound datagram socket bound to one remote address.
type Client interface {
	RemoteAddr() net.Addr
	Receive(timeout time.Duration) ([]byte, error)
	Drain() (int, error)
	Send([]byte) error
	Close() error
}

type Transport interface {
	Dial() (Client, error)
}

// Listener is the receiving side used by the collector.
type Listener interface {
	LocalAddr() net.Addr
	ReadFrom(timeout time.Duration) ([]byte, net.Addr, error)
	WriteTo(data []byte, addr net.Addr) error
	Close() error
}

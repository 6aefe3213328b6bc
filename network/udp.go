package network

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/MixinNetwork/plog/config"
)

const (
	drainTimeout = time.Millisecond
	drainLimit   = 256
)

type UdpClient struct {
	conn   *net.UDPConn
	remote *net.UDPAddr
}

type UdpTransport struct {
	addr       string
	sendBuffer int
	listener   *net.UDPConn
}

func NewUdpServer(addr string) (*UdpTransport, error) {
	return &UdpTransport{
		addr: addr,
	}, nil
}

func NewUdpClient(addr string, sendBuffer int) (*UdpTransport, error) {
	if sendBuffer < 0 {
		return nil, fmt.Errorf("udp invalid send buffer size %d", sendBuffer)
	}
	return &UdpTransport{
		addr:       addr,
		sendBuffer: sendBuffer,
	}, nil
}

// Dial resolves the address again on every call, so a reopened socket
// follows DNS changes. The socket is left unconnected, an ICMP unreachable
// from a missing collector must not fail later writes.
func (t *UdpTransport) Dial() (Client, error) {
	remote, err := net.ResolveUDPAddr("udp", t.addr)
	if err != nil {
		return nil, err
	}
	network := "udp"
	if remote.IP.To4() != nil {
		network = "udp4"
	}
	conn, err := net.ListenUDP(network, nil)
	if err != nil {
		return nil, err
	}
	if t.sendBuffer > 0 {
		err = conn.SetWriteBuffer(t.sendBuffer)
		if err != nil {
			conn.Close()
			return nil, err
		}
	}
	return &UdpClient{
		conn:   conn,
		remote: remote,
	}, nil
}

func (t *UdpTransport) Listen() error {
	addr, err := net.ResolveUDPAddr("udp", t.addr)
	if err != nil {
		return err
	}
	l, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}
	t.listener = l
	return nil
}

func (t *UdpTransport) LocalAddr() net.Addr {
	return t.listener.LocalAddr()
}

func (t *UdpTransport) ReadFrom(timeout time.Duration) ([]byte, net.Addr, error) {
	err := t.listener.SetReadDeadline(time.Now().Add(timeout))
	if err != nil {
		return nil, nil, err
	}
	buf := make([]byte, config.ReceiveBufferSize)
	n, addr, err := t.listener.ReadFromUDP(buf)
	if err != nil {
		return nil, nil, err
	}
	return buf[:n], addr, nil
}

func (t *UdpTransport) WriteTo(data []byte, addr net.Addr) error {
	if l := len(data); l < 1 || l > UdpMessageMaxSize {
		return fmt.Errorf("udp send invalid message size %d", l)
	}
	_, err := t.listener.WriteTo(data, addr)
	return err
}

func (t *UdpTransport) Close() error {
	if t.listener == nil {
		return nil
	}
	return t.listener.Close()
}

func (c *UdpClient) RemoteAddr() net.Addr {
	return c.remote
}

func (c *UdpClient) Receive(timeout time.Duration) ([]byte, error) {
	err := c.conn.SetReadDeadline(time.Now().Add(timeout))
	if err != nil {
		return nil, err
	}
	buf := make([]byte, config.ReceiveBufferSize)
	n, _, err := c.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Drain discards the datagrams already queued on the socket, such as a reply
// that arrived after its reader gave up, and returns how many were dropped.
func (c *UdpClient) Drain() (int, error) {
	buf := make([]byte, config.ReceiveBufferSize)
	for n := 0; n < drainLimit; n++ {
		err := c.conn.SetReadDeadline(time.Now().Add(drainTimeout))
		if err != nil {
			return n, err
		}
		_, _, err = c.conn.ReadFromUDP(buf)
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return n, nil
		} else if err != nil {
			return n, err
		}
	}
	return drainLimit, nil
}

func (c *UdpClient) Send(data []byte) error {
	if l := len(data); l < 1 || l > UdpMessageMaxSize {
		return fmt.Errorf("udp send invalid message size %d", l)
	}
	n, err := c.conn.WriteToUDP(data, c.remote)
	if err != nil {
		return err
	}
	if n != len(data) {
		return fmt.Errorf("udp send short write %d %d", n, len(data))
	}
	return nil
}

func (c *UdpClient) Close() error {
	return c.conn.Close()
}

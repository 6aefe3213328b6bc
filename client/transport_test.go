package client

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/MixinNetwork/plog/network"
)

var errBrokenSocket = errors.New("broken socket")

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

type fakeTransport struct {
	sync.Mutex
	dials     int
	dialErr   error
	sendErr   error
	failAfter int
	stale     int
	drainErr  error
	drains    int
	reply     []byte
	replyErr  error
	sockets   []*fakeSocket
	datagrams [][]byte
}

type fakeSocket struct {
	trans  *fakeTransport
	closed bool
}

func (t *fakeTransport) Dial() (network.Client, error) {
	t.Lock()
	defer t.Unlock()
	t.dials++
	if t.dialErr != nil {
		return nil, t.dialErr
	}
	s := &fakeSocket{trans: t}
	t.sockets = append(t.sockets, s)
	return s, nil
}

func (t *fakeTransport) sent() [][]byte {
	t.Lock()
	defer t.Unlock()
	return append([][]byte{}, t.datagrams...)
}

func (s *fakeSocket) RemoteAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 23456}
}

func (s *fakeSocket) Receive(timeout time.Duration) ([]byte, error) {
	s.trans.Lock()
	defer s.trans.Unlock()
	if s.trans.replyErr != nil {
		return nil, s.trans.replyErr
	}
	return s.trans.reply, nil
}

func (s *fakeSocket) Drain() (int, error) {
	s.trans.Lock()
	defer s.trans.Unlock()
	s.trans.drains++
	if s.trans.drainErr != nil {
		return 0, s.trans.drainErr
	}
	n := s.trans.stale
	s.trans.stale = 0
	return n, nil
}

// Send fails with sendErr, or once failAfter datagrams went through when
// failAfter is positive.
func (s *fakeSocket) Send(data []byte) error {
	s.trans.Lock()
	defer s.trans.Unlock()
	if s.trans.sendErr != nil {
		return s.trans.sendErr
	}
	if s.trans.failAfter > 0 && len(s.trans.datagrams) >= s.trans.failAfter {
		s.trans.failAfter = 0
		return errBrokenSocket
	}
	s.trans.datagrams = append(s.trans.datagrams, append([]byte{}, data...))
	return nil
}

func (s *fakeSocket) Close() error {
	s.trans.Lock()
	defer s.trans.Unlock()
	s.closed = true
	return nil
}

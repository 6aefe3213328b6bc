package client

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/MixinNetwork/plog/network"
	"github.com/stretchr/testify/require"
)

func TestClientStats(t *testing.T) {
	require := require.New(t)

	server, err := network.NewUdpServer("127.0.0.1:0")
	require.Nil(err)
	err = server.Listen()
	require.Nil(err)
	defer server.Close()

	go func() {
		req, addr, err := server.ReadFrom(5 * time.Second)
		if err != nil {
			return
		}
		if string(req) == "\x00\x00stats" {
			server.WriteTo([]byte(`{"foo":1,"bar":"baz"}`), addr)
		}
	}()

	trans, err := network.NewUdpClient(server.LocalAddr().String(), 0)
	require.Nil(err)
	opts := DefaultOptions()
	opts.Transport = trans
	c, err := New(opts)
	require.Nil(err)
	defer c.Close()

	stats, err := c.Stats(5 * time.Second)
	require.Nil(err)
	require.Equal(json.Number("1"), stats["foo"])
	require.Equal("baz", stats["bar"])
}

func TestClientStatsTimeout(t *testing.T) {
	require := require.New(t)

	server, err := network.NewUdpServer("127.0.0.1:0")
	require.Nil(err)
	err = server.Listen()
	require.Nil(err)
	defer server.Close()

	trans, err := network.NewUdpClient(server.LocalAddr().String(), 0)
	require.Nil(err)
	opts := DefaultOptions()
	opts.Transport = trans
	c, err := New(opts)
	require.Nil(err)
	defer c.Close()

	start := time.Now()
	_, err = c.Stats(200 * time.Millisecond)
	elapsed := time.Since(start)
	require.ErrorIs(err, ErrTimeout)
	require.True(elapsed >= 200*time.Millisecond, elapsed.String())
	require.True(elapsed < 2*time.Second, elapsed.String())

	req, _, err := server.ReadFrom(time.Second)
	require.Nil(err)
	require.Equal([]byte("\x00\x00stats"), req)

	s1, err := c.Socket()
	require.Nil(err)
	_, err = c.Stats(50 * time.Millisecond)
	require.ErrorIs(err, ErrTimeout)
	s2, err := c.Socket()
	require.Nil(err)
	require.Equal(s1, s2)
}

func TestClientStatsFake(t *testing.T) {
	require := require.New(t)
	c, trans := newTestClient(t, DefaultOptions())

	trans.reply = []byte(`{"foo":1}`)
	stats, err := c.Stats(0)
	require.Nil(err)
	require.Equal(map[string]interface{}{"foo": json.Number("1")}, stats)
	sent := trans.sent()
	require.Len(sent, 1)
	require.Equal("\x00\x00stats", string(sent[0]))

	trans.replyErr = timeoutError{}
	_, err = c.Stats(time.Second)
	require.ErrorIs(err, ErrTimeout)
	require.False(trans.sockets[0].closed)

	trans.replyErr = errBrokenSocket
	_, err = c.Stats(time.Second)
	var te *TransportError
	require.True(errors.As(err, &te))
	require.Equal("read", te.Op)
	require.True(trans.sockets[0].closed)

	trans.replyErr = nil
	trans.reply = []byte(`not json`)
	_, err = c.Stats(time.Second)
	var pe *ProtocolError
	require.True(errors.As(err, &pe))
	require.Equal(2, trans.dials)

	trans.reply = []byte(`null`)
	_, err = c.Stats(time.Second)
	require.True(errors.As(err, &pe))

	trans.sendErr = errBrokenSocket
	_, err = c.Stats(time.Second)
	require.True(errors.As(err, &te))
	require.Equal("write", te.Op)
}

func TestClientStatsLateReply(t *testing.T) {
	require := require.New(t)

	server, err := network.NewUdpServer("127.0.0.1:0")
	require.Nil(err)
	err = server.Listen()
	require.Nil(err)
	defer server.Close()

	trans, err := network.NewUdpClient(server.LocalAddr().String(), 0)
	require.Nil(err)
	opts := DefaultOptions()
	opts.Transport = trans
	c, err := New(opts)
	require.Nil(err)
	defer c.Close()

	_, err = c.Stats(100 * time.Millisecond)
	require.ErrorIs(err, ErrTimeout)
	_, addr, err := server.ReadFrom(time.Second)
	require.Nil(err)
	err = server.WriteTo([]byte(`{"round":1}`), addr)
	require.Nil(err)
	time.Sleep(100 * time.Millisecond)

	go func() {
		req, addr, err := server.ReadFrom(5 * time.Second)
		if err != nil || string(req) != "\x00\x00stats" {
			return
		}
		server.WriteTo([]byte(`{"round":2}`), addr)
	}()

	stats, err := c.Stats(5 * time.Second)
	require.Nil(err)
	require.Equal(json.Number("2"), stats["round"])
}

func TestClientStatsDrain(t *testing.T) {
	require := require.New(t)
	c, trans := newTestClient(t, DefaultOptions())

	trans.stale = 2
	trans.reply = []byte(`{"foo":2}`)
	stats, err := c.Stats(time.Second)
	require.Nil(err)
	require.Equal(json.Number("2"), stats["foo"])
	require.Equal(1, trans.drains)
	require.Equal(0, trans.stale)
	require.Len(trans.sent(), 1)

	trans.drainErr = errBrokenSocket
	_, err = c.Stats(time.Second)
	var te *TransportError
	require.True(errors.As(err, &te))
	require.Equal("read", te.Op)
	require.True(trans.sockets[0].closed)
	require.Len(trans.sent(), 1)

	trans.drainErr = nil
	_, err = c.Stats(time.Second)
	require.Nil(err)
	require.Equal(2, trans.dials)
	require.Equal(3, trans.drains)
}

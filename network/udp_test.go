package network

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUdp(t *testing.T) {
	require := require.New(t)

	serverTrans, err := NewUdpServer("127.0.0.1:0")
	require.Nil(err)
	require.NotNil(serverTrans)
	defer serverTrans.Close()
	err = serverTrans.Listen()
	require.Nil(err)

	clientTrans, err := NewUdpClient(serverTrans.LocalAddr().String(), 1024*1024)
	require.Nil(err)
	require.NotNil(clientTrans)
	client, err := clientTrans.Dial()
	require.Nil(err)
	require.NotNil(client)
	defer client.Close()
	require.Equal(serverTrans.LocalAddr().String(), client.RemoteAddr().String())

	err = client.Send([]byte("hello plog"))
	require.Nil(err)
	msg, addr, err := serverTrans.ReadFrom(time.Second)
	require.Nil(err)
	require.Equal("hello plog", string(msg))

	err = serverTrans.WriteTo([]byte("hello client"), addr)
	require.Nil(err)
	msg, err = client.Receive(time.Second)
	require.Nil(err)
	require.Equal("hello client", string(msg))

	err = client.Send(nil)
	require.NotNil(err)
	err = client.Send(make([]byte, UdpMessageMaxSize+1))
	require.NotNil(err)
	err = serverTrans.WriteTo(nil, addr)
	require.NotNil(err)
}

func TestUdpReceiveTimeout(t *testing.T) {
	require := require.New(t)

	serverTrans, err := NewUdpServer("127.0.0.1:0")
	require.Nil(err)
	defer serverTrans.Close()
	err = serverTrans.Listen()
	require.Nil(err)

	clientTrans, err := NewUdpClient(serverTrans.LocalAddr().String(), 0)
	require.Nil(err)
	client, err := clientTrans.Dial()
	require.Nil(err)
	defer client.Close()

	start := time.Now()
	_, err = client.Receive(100 * time.Millisecond)
	require.True(errors.Is(err, os.ErrDeadlineExceeded))
	require.True(time.Since(start) < 2*time.Second)

	_, _, err = serverTrans.ReadFrom(100 * time.Millisecond)
	require.True(errors.Is(err, os.ErrDeadlineExceeded))
}

func TestUdpInvalid(t *testing.T) {
	require := require.New(t)

	_, err := NewUdpClient("127.0.0.1:23456", -1)
	require.NotNil(err)

	clientTrans, err := NewUdpClient("127.0.0.1:not-a-port", 0)
	require.Nil(err)
	_, err = clientTrans.Dial()
	require.NotNil(err)

	serverTrans, err := NewUdpServer("127.0.0.1:0")
	require.Nil(err)
	require.Nil(serverTrans.Close())
}

func TestUdpDrain(t *testing.T) {
	require := require.New(t)

	serverTrans, err := NewUdpServer("127.0.0.1:0")
	require.Nil(err)
	defer serverTrans.Close()
	err = serverTrans.Listen()
	require.Nil(err)

	clientTrans, err := NewUdpClient(serverTrans.LocalAddr().String(), 0)
	require.Nil(err)
	client, err := clientTrans.Dial()
	require.Nil(err)
	defer client.Close()

	n, err := client.Drain()
	require.Nil(err)
	require.Equal(0, n)

	err = client.Send([]byte("ping"))
	require.Nil(err)
	_, addr, err := serverTrans.ReadFrom(time.Second)
	require.Nil(err)
	for _, m := range []string{"stale 1", "stale 2", "stale 3"} {
		err = serverTrans.WriteTo([]byte(m), addr)
		require.Nil(err)
	}
	time.Sleep(100 * time.Millisecond)

	n, err = client.Drain()
	require.Nil(err)
	require.Equal(3, n)

	err = serverTrans.WriteTo([]byte("fresh"), addr)
	require.Nil(err)
	msg, err := client.Receive(time.Second)
	require.Nil(err)
	require.Equal("fresh", string(msg))
}

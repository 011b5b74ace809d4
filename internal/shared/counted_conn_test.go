package shared

import (
	"io"
	"net"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountedConn(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	var up, down atomic.Uint64
	cc := NewCountedConn(client, &up, &down)
	defer cc.Close()

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 5)
		_, _ = io.ReadFull(server, buf)
		_, _ = server.Write([]byte("ok"))
		done <- buf
	}()

	n, err := cc.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	reply := make([]byte, 2)
	_, err = io.ReadFull(cc, reply)
	require.NoError(t, err)

	assert.Equal(t, []byte("hello"), <-done)
	assert.Equal(t, uint64(5), cc.Uplink())
	assert.Equal(t, uint64(2), cc.Downlink())
}

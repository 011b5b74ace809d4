package shared

import (
	"net"
	"sync/atomic"
)

// CountedConn wraps a net.Conn and atomically counts uplink and downlink bytes.
type CountedConn struct {
	net.Conn
	uplink   *atomic.Uint64
	downlink *atomic.Uint64
}

// NewCountedConn creates a CountedConn that adds to the given counters.
func NewCountedConn(conn net.Conn, uplink, downlink *atomic.Uint64) *CountedConn {
	return &CountedConn{
		Conn:     conn,
		uplink:   uplink,
		downlink: downlink,
	}
}

// Read reads from the underlying connection and adds to the downlink counter.
func (c *CountedConn) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)
	if n > 0 {
		c.downlink.Add(uint64(n))
	}
	return n, err
}

// Write writes to the underlying connection and adds to the uplink counter.
// Short writes count only the bytes actually accepted.
func (c *CountedConn) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)
	if n > 0 {
		c.uplink.Add(uint64(n))
	}
	return n, err
}

// Uplink returns the bytes written so far.
func (c *CountedConn) Uplink() uint64 { return c.uplink.Load() }

// Downlink returns the bytes read so far.
func (c *CountedConn) Downlink() uint64 { return c.downlink.Load() }

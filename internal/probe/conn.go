package probe

import (
	"io"
	"net"
	"sync"
)

// guardedConn releases the underlying connection at most once. Any use after
// that returns ErrAlreadyClosed.
type guardedConn struct {
	net.Conn
	mu     sync.Mutex
	closed bool
}

func newGuardedConn(c net.Conn) *guardedConn {
	return &guardedConn{Conn: c}
}

func (c *guardedConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *guardedConn) Write(b []byte) (int, error) {
	if c.isClosed() {
		return 0, ErrAlreadyClosed
	}
	return c.Conn.Write(b)
}

func (c *guardedConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrAlreadyClosed
	}
	c.closed = true
	return c.Conn.Close()
}

// writeFull writes all of b, retrying on short writes. It stops at the first
// error and reports how many bytes were accepted.
func writeFull(w io.Writer, b []byte) (int, error) {
	total := 0
	for total < len(b) {
		n, err := w.Write(b[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

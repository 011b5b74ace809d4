//go:build linux

package sockopt

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// ReuseAddrControl sets SO_REUSEADDR before bind so a capture listener can
// be restarted while old connections sit in TIME_WAIT. Use it as
// net.ListenConfig.Control.
func ReuseAddrControl(network, address string, c syscall.RawConn) error {
	var serr error
	if err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	}); err != nil {
		return err
	}
	return serr
}

//go:build !linux

package sockopt

import "syscall"

// ReuseAddrControl is a no-op on platforms other than Linux.
func ReuseAddrControl(network, address string, c syscall.RawConn) error {
	return nil
}

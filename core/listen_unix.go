//go:build unix

package core

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlSocket enables SO_REUSEADDR on the listening socket
func controlSocket(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

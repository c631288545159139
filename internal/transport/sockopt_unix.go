//go:build unix

package transport

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// sendBufferControl returns a dialer control hook that sets SO_SNDBUF,
// or nil when size is not positive.
func sendBufferControl(size int) func(network, address string, c syscall.RawConn) error {
	if size <= 0 {
		return nil
	}

	return func(_, _ string, c syscall.RawConn) error {
		var sockErr error

		if err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, size)
		}); err != nil {
			return err
		}

		return sockErr
	}
}

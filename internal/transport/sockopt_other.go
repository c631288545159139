//go:build !unix

package transport

import "syscall"

// sendBufferControl is a no-op on platforms without unix socket options;
// the OS default send buffer is used.
func sendBufferControl(int) func(network, address string, c syscall.RawConn) error {
	return nil
}

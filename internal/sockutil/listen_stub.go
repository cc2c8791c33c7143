//go:build !linux
// +build !linux

// File: internal/sockutil/listen_stub.go
// Author: momentics <momentics@gmail.com>

package sockutil

import "github.com/momentics/reactor-chat/api"

// Listen is unsupported outside Linux; see reactor.NewDemultiplexer.
func Listen(port int) (int, error) {
	return -1, api.ErrNotSupported
}

// BoundPort is unsupported outside Linux.
func BoundPort(fd int) (int, error) {
	return 0, api.ErrNotSupported
}

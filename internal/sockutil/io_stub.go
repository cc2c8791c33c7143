//go:build !linux
// +build !linux

// File: internal/sockutil/io_stub.go
// Author: momentics <momentics@gmail.com>

package sockutil

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/reactor-chat/api"
)

// Accept is unsupported outside Linux; see reactor.NewDemultiplexer.
func Accept(listenFD int) (fd int, peerAddr string, err error) {
	return -1, "", api.ErrNotSupported
}

// SockaddrString is unsupported outside Linux.
func SockaddrString(sa unix.Sockaddr) string {
	return ""
}

//go:build linux
// +build linux

// File: internal/sockutil/listen_linux.go
// Author: momentics <momentics@gmail.com>
//
// Listening socket factory. Any failure along the way closes the
// partially-created fd and returns ErrCodeConfig; the caller treats
// this as a fatal startup failure.

package sockutil

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/reactor-chat/api"
)

// maxBacklog bounds pending connections on the listening socket.
const maxBacklog = 1024

// Listen allocates, configures and binds a non-blocking IPv4 TCP listening
// socket on 0.0.0.0:port, and starts it listening with maxBacklog pending
// connections.
func Listen(port int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, api.NewError(api.ErrCodeConfig, "socket() failed").WithContext("errno", err.Error())
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, api.NewError(api.ErrCodeConfig, "setsockopt(SO_REUSEADDR) failed").WithContext("errno", err.Error())
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return -1, api.NewError(api.ErrCodeConfig, "set non-blocking failed").WithContext("errno", err.Error())
	}

	addr := &unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, addr); err != nil {
		_ = unix.Close(fd)
		return -1, api.NewError(api.ErrCodeConfig, "bind() failed").WithContext("port", port).WithContext("errno", err.Error())
	}

	if err := unix.Listen(fd, maxBacklog); err != nil {
		_ = unix.Close(fd)
		return -1, api.NewError(api.ErrCodeConfig, "listen() failed").WithContext("errno", err.Error())
	}

	return fd, nil
}

// BoundPort returns the port the socket at fd was actually bound to,
// useful when Listen was called with port 0 (ephemeral, used by tests).
func BoundPort(fd int) (int, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return 0, err
	}
	v4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, api.NewError(api.ErrCodeConfig, "unexpected sockaddr family")
	}
	return v4.Port, nil
}

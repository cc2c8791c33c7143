//go:build linux
// +build linux

// File: internal/sockutil/io_linux.go
// Author: momentics <momentics@gmail.com>
//
// Thin wrappers around the raw syscalls the event handler state machine
// needs: accept a pending connection and stringify a peer address.

package sockutil

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Accept accepts one pending connection on listenFD, sets it
// non-blocking, and returns its fd plus a displayable peer address.
func Accept(listenFD int) (fd int, peerAddr string, err error) {
	nfd, sa, err := unix.Accept(listenFD)
	if err != nil {
		return -1, "", err
	}
	if err := unix.SetNonblock(nfd, true); err != nil {
		_ = unix.Close(nfd)
		return -1, "", err
	}
	return nfd, SockaddrString(sa), nil
}

// SockaddrString renders a unix.Sockaddr as "ip:port".
func SockaddrString(sa unix.Sockaddr) string {
	v4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d.%d:%d", v4.Addr[0], v4.Addr[1], v4.Addr[2], v4.Addr[3], v4.Port)
}

//go:build linux
// +build linux

// File: reactor/demux_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7) demultiplexer, edge-triggered. Readable interest is
// EPOLLIN|EPOLLET|EPOLLRDHUP; Modify alternates a connection into
// EPOLLOUT|EPOLLET|EPOLLONESHOT|EPOLLRDHUP for the echo-mode write leg.

package reactor

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/reactor-chat/api"
)

const maxEpollEvents = 64

// epollDemux implements api.Demultiplexer on top of Linux epoll.
type epollDemux struct {
	epfd       int
	listenFD   int
	listenSeen bool
}

// NewDemultiplexer constructs the Linux epoll backend.
func NewDemultiplexer() (api.Demultiplexer, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, api.NewError(api.ErrCodeConfig, "epoll_create1 failed").WithContext("errno", err)
	}
	return &epollDemux{epfd: epfd}, nil
}

func (d *epollDemux) Register(h api.Handler, mask api.EventMask) error {
	fd := h.FD()
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLET | unix.EPOLLRDHUP,
		Fd:     int32(fd),
	}
	if mask&api.EventAccept != 0 {
		d.listenFD = fd
		d.listenSeen = true
	}
	if err := unix.EpollCtl(d.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return api.NewError(api.ErrCodeRegistration, "epoll_ctl add failed").
			WithContext("fd", fd).WithContext("errno", err.Error())
	}
	return nil
}

func (d *epollDemux) Remove(h api.Handler) error {
	fd := h.FD()
	// Removing an already-gone fd is expected on the peer-close race.
	_ = unix.EpollCtl(d.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	return nil
}

func (d *epollDemux) Modify(h api.Handler, mask api.EventMask) error {
	fd := h.FD()
	ev := unix.EpollEvent{Fd: int32(fd)}
	if mask&api.EventSend != 0 {
		ev.Events = unix.EPOLLOUT | unix.EPOLLET | unix.EPOLLONESHOT | unix.EPOLLRDHUP
	} else {
		ev.Events = unix.EPOLLIN | unix.EPOLLET | unix.EPOLLRDHUP
	}
	_ = unix.EpollCtl(d.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
	return nil
}

func (d *epollDemux) Wait(timeoutMs int, resolve func(fd int) api.Handler) error {
	events := make([]unix.EpollEvent, maxEpollEvents)
	for {
		n, err := unix.EpollWait(d.epfd, events, timeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("epoll_wait: %w", err)
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			h := resolve(fd)
			if h == nil {
				continue
			}
			switch {
			case d.listenSeen && fd == d.listenFD:
				h.HandleAccept()
			case events[i].Events&(unix.EPOLLRDHUP|unix.EPOLLHUP|unix.EPOLLERR) != 0:
				h.HandleClose()
			case events[i].Events&unix.EPOLLIN != 0:
				h.HandleRecv()
			case events[i].Events&unix.EPOLLOUT != 0:
				h.HandleWrite(nil)
			}
		}
		if timeoutMs >= 0 {
			return nil
		}
	}
}

func (d *epollDemux) Close() error {
	return unix.Close(d.epfd)
}

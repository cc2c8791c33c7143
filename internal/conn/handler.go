// File: internal/conn/handler.go
// Author: momentics <momentics@gmail.com>
//
// Handler is the per-connection event handler state machine. The same
// type serves both the listening socket (the demultiplexer's dispatch
// order routes all of its readiness to HandleAccept; Reactor.Shutdown
// closes it through HandleClose) and accepted client sockets
// (HandleRecv/HandleWrite/HandleClose).

package conn

import (
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/reactor-chat/api"
	"github.com/momentics/reactor-chat/internal/bufpool"
	"github.com/momentics/reactor-chat/internal/sockutil"
	"github.com/momentics/reactor-chat/metrics"
)

// Mode selects what HandleRecv does with a drained buffer. Accepted
// client handlers inherit their listener's mode.
type Mode int

const (
	// ModeEchoServer writes each received chunk straight back to its own
	// fd.
	ModeEchoServer Mode = iota
	// ModeChatRoom pushes received bytes onto the shared queue for the
	// chat-room worker instead of acting on them directly.
	ModeChatRoom
)

const (
	statusOpen int32 = iota
	statusClosed
)

// Registrar is the subset of *reactor.Reactor a Handler works with:
// register newly accepted connections and remove itself on close.
// Modify is part of the set, but no Handler method calls it; the echo
// branch of HandleRecv writes back inline. A narrow interface here
// avoids an import cycle between conn and reactor.
type Registrar interface {
	Register(h api.Handler, mask api.EventMask) error
	Remove(h api.Handler)
	Modify(h api.Handler, mask api.EventMask)
}

// MessageSink receives fully-drained recv payloads in ModeChatRoom,
// satisfied by *internal/queue.FIFO.
type MessageSink interface {
	Push(env api.Envelope)
}

// Handler implements api.Handler for one socket.
type Handler struct {
	fd       int
	peerAddr string
	status   int32
	mode     Mode
	listener bool

	reactor Registrar
	sink    MessageSink
	bufs    *bufpool.Pool
	log     *zap.Logger
	metrics *metrics.Registry
}

// New constructs a Handler for fd. listener marks the accepting socket;
// mode selects the echo/chat-room recv-write branch for client sockets.
// reg may be nil (tests and stand-alone construction), in which case the
// handler simply skips metric updates.
func New(fd int, peerAddr string, listener bool, mode Mode, reactor Registrar, sink MessageSink, bufs *bufpool.Pool, log *zap.Logger, reg *metrics.Registry) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		fd:       fd,
		peerAddr: peerAddr,
		listener: listener,
		mode:     mode,
		reactor:  reactor,
		sink:     sink,
		bufs:     bufs,
		log:      log,
		metrics:  reg,
	}
}

// FD returns the underlying file descriptor.
func (h *Handler) FD() int { return h.fd }

// Registered reports whether the handler is still open.
func (h *Handler) Registered() bool {
	return atomic.LoadInt32(&h.status) == statusOpen
}

// HandleAccept accepts pending connections until accept reports EAGAIN
// and registers a new Handler for each, inheriting this listener's mode.
// The listening fd is edge-triggered: connections already waiting in the
// backlog raise no further event, so all of them are taken here.
func (h *Handler) HandleAccept() {
	for {
		fd, peerAddr, err := sockutil.Accept(h.fd)
		if err != nil {
			if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
				h.log.Warn("accept failed", zap.Error(err))
			}
			return
		}
		h.log.Info("accept success", zap.String("peer", peerAddr))

		client := New(fd, peerAddr, false, h.mode, h.reactor, h.sink, h.bufs, h.log, h.metrics)
		if err := h.reactor.Register(client, api.EventRecv); err != nil {
			h.log.Warn("register accepted client failed", zap.Int("fd", fd), zap.Error(err))
			_ = unix.Close(fd)
			continue
		}
		if h.metrics != nil {
			h.metrics.ConnectionsAccepted.Inc()
			h.metrics.ConnectionsActive.Inc()
		}
	}
}

// HandleRecv drains the socket a buffer at a time until EAGAIN (the
// demultiplexer is edge-triggered, so a partial drain would lose the
// rest), then dispatches the assembled message per h.mode.
func (h *Handler) HandleRecv() {
	var msg []byte
	buf := h.bufs.Get()
	defer h.bufs.Put(buf)

	for {
		n, err := unix.Read(h.fd, buf)
		if n > 0 {
			h.log.Info("recv buff", zap.Int("len", n), zap.Int("fd", h.fd))
			msg = append(msg, buf[:n]...)
			if h.metrics != nil {
				h.metrics.BytesReceived.Add(float64(n))
			}
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				h.log.Info("all data has been received", zap.Int("fd", h.fd))
				break
			}
			h.log.Error("recv error", zap.Error(err), zap.Int("fd", h.fd))
			h.HandleClose()
			return
		}
		if n == 0 {
			h.log.Warn("peer has closed connection", zap.Int("fd", h.fd))
			h.HandleClose()
			return
		}
	}

	switch h.mode {
	case ModeEchoServer:
		if len(msg) > 0 {
			n, err := unix.Write(h.fd, msg)
			h.log.Info("write bytes to client for echo", zap.Int("n", n), zap.Error(err))
		}
	case ModeChatRoom:
		h.sink.Push(api.Envelope{SenderFD: h.fd, PeerAddr: h.peerAddr, Payload: msg})
		h.log.Info("push ocr msg to queue", zap.Int("fd", h.fd), zap.String("addr", h.peerAddr), zap.Int("size", len(msg)))
	}
}

// HandleWrite writes msg to the socket, retrying on EAGAIN until the
// whole message is sent. Payloads are short, so the busy retry stays
// bounded by one send-buffer drain.
func (h *Handler) HandleWrite(msg []byte) {
	total := 0
	for total < len(msg) {
		n, err := unix.Write(h.fd, msg[total:])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				h.log.Warn("send buffer is full, try again", zap.Int("fd", h.fd))
				continue
			}
			h.log.Error("send error", zap.Error(err), zap.Int("fd", h.fd))
			h.HandleClose()
			return
		}
		if n == 0 {
			h.log.Warn("peer has closed connection", zap.Int("fd", h.fd))
			h.HandleClose()
			return
		}
		total += n
	}
	h.log.Info("write data to fd", zap.Int("fd", h.fd), zap.Int("len", len(msg)))
}

// HandleClose removes the handler from the reactor and closes the fd.
// Idempotent: a double close (once from an error path, once from the
// demultiplexer's RDHUP dispatch) only closes the fd the first time.
func (h *Handler) HandleClose() {
	if !atomic.CompareAndSwapInt32(&h.status, statusOpen, statusClosed) {
		return
	}
	h.log.Info("event handle close", zap.String("peer", h.peerAddr), zap.Int("fd", h.fd))
	h.reactor.Remove(h)
	_ = unix.Close(h.fd)
	if h.metrics != nil && !h.listener {
		h.metrics.ConnectionsActive.Dec()
	}
}

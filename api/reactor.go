// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the abstract contract between the Reactor and its event
// demultiplexer, and the per-connection handler the demultiplexer
// dispatches into. One concrete Demultiplexer exists today (Linux epoll,
// edge-triggered); the interface exists so the Reactor itself never
// imports syscall.

package api

// EventMask selects which readiness a handler wants reported.
type EventMask int

const (
	// EventAccept marks the listening fd; Demultiplexer routes its
	// readiness to HandleAccept instead of HandleRecv.
	EventAccept EventMask = 1 << iota
	// EventRecv requests readable interest.
	EventRecv
	// EventSend requests writable interest.
	EventSend
)

// Handler is the per-fd state machine the demultiplexer drives. Exactly
// one of HandleAccept/HandleRecv/HandleWrite/HandleClose is invoked per
// dispatched readiness event, per the priority order documented on
// Demultiplexer.Wait.
type Handler interface {
	// FD returns the file descriptor this handler owns.
	FD() int

	// Registered reports whether the handler is currently known to the
	// demultiplexer. A demultiplexer must never dispatch to an
	// unregistered handler.
	Registered() bool

	HandleAccept()
	HandleRecv()
	HandleWrite(msg []byte)
	HandleClose()
}

// Demultiplexer abstracts the OS readiness-notification mechanism behind
// the Reactor. The only implementation in this repository is Linux
// epoll in edge-triggered mode; other platforms get a stub that reports
// ErrNotSupported.
type Demultiplexer interface {
	// Register associates fd with readable interest by default; mask
	// carrying EventAccept additionally records fd as the listening fd.
	Register(h Handler, mask EventMask) error

	// Remove drops interest in h's fd. No-op if h was never registered.
	Remove(h Handler) error

	// Modify switches interest between readable and writable for h's fd.
	Modify(h Handler, mask EventMask) error

	// Wait blocks until at least one fd is ready and dispatches each ready
	// fd to its handler via resolve, one handler method per event in this
	// priority order: the listening fd goes to HandleAccept; hangup or
	// error to HandleClose; readable to HandleRecv; writable to
	// HandleWrite(nil). With timeoutMs >= 0 it returns after one such
	// round; with timeoutMs < 0 it keeps waiting and dispatching and
	// returns only on a poller error. resolve looks up the Handler owning
	// a ready fd; Wait
	// skips fds resolve can't find (e.g. removed between wake and
	// dispatch).
	Wait(timeoutMs int, resolve func(fd int) Handler) error

	// Close releases the underlying poller resource.
	Close() error
}

// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Reactor owns the demultiplexer and the connection table, and is the
// dispatch hub handlers call back into on register/remove/modify.

package reactor

import (
	"sync"

	"go.uber.org/zap"

	"github.com/momentics/reactor-chat/api"
)

// Worker is spawned by Run when the Reactor is serving the online chat
// room; it is handed a back-reference to the Reactor for the lifetime of
// its goroutine. Shutdown joins the worker after it has closed the
// demultiplexer.
type Worker interface {
	Run(r *Reactor)
}

// Reactor is the dispatch hub: one demultiplexer, one mutex-guarded
// connection table keyed by fd.
type Reactor struct {
	demux api.Demultiplexer
	log   *zap.Logger

	mu    sync.RWMutex
	table map[int]api.Handler

	worker   Worker
	workerWG sync.WaitGroup
}

// New constructs a Reactor over the given demultiplexer.
func New(demux api.Demultiplexer, log *zap.Logger) *Reactor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reactor{
		demux: demux,
		log:   log,
		table: make(map[int]api.Handler),
	}
}

// Register inserts h into the connection table (warning, not failing, if
// already present) and delegates to the demultiplexer.
func (r *Reactor) Register(h api.Handler, mask api.EventMask) error {
	fd := h.FD()
	r.mu.Lock()
	if _, exists := r.table[fd]; exists {
		r.log.Warn("fd already registered", zap.Int("fd", fd))
	}
	r.table[fd] = h
	r.mu.Unlock()

	if err := r.demux.Register(h, mask); err != nil {
		r.mu.Lock()
		delete(r.table, fd)
		r.mu.Unlock()
		r.log.Warn("registration failed", zap.Int("fd", fd), zap.Error(err))
		return err
	}
	r.log.Info("registered handler", zap.Int("fd", fd), zap.Int("mask", int(mask)))
	return nil
}

// Remove unregisters h from the demultiplexer first, then erases the
// table entry; once removed from the demultiplexer, no further events
// can fire for that fd.
func (r *Reactor) Remove(h api.Handler) {
	fd := h.FD()
	if err := r.demux.Remove(h); err != nil {
		r.log.Warn("demux remove failed", zap.Int("fd", fd), zap.Error(err))
	}

	r.mu.Lock()
	if _, ok := r.table[fd]; !ok {
		r.mu.Unlock()
		r.log.Warn("fd not found on remove", zap.Int("fd", fd))
		return
	}
	delete(r.table, fd)
	r.mu.Unlock()
	r.log.Info("removed handler", zap.Int("fd", fd))
}

// Modify is a straight passthrough to the demultiplexer.
func (r *Reactor) Modify(h api.Handler, mask api.EventMask) {
	_ = r.demux.Modify(h, mask)
}

// GetHandler is a locked lookup. The returned Handler remains valid to
// use even if another goroutine concurrently removes it from the table:
// the value stays alive as long as the caller holds the reference.
func (r *Reactor) GetHandler(fd int) api.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table[fd]
}

// Broadcast calls HandleWrite(payload) on every registered handler except
// listenFD. The sender's own fd is not excluded: clients see their own
// messages echoed back. Fan-out order is the table's iteration order,
// unspecified but consistent for one message.
func (r *Reactor) Broadcast(listenFD int, payload []byte) int {
	r.mu.RLock()
	handlers := make([]api.Handler, 0, len(r.table))
	for fd, h := range r.table {
		if fd == listenFD {
			continue
		}
		handlers = append(handlers, h)
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		h.HandleWrite(payload)
	}
	return len(handlers)
}

// NumHandlers reports how many handlers are currently registered,
// listening socket included.
func (r *Reactor) NumHandlers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.table)
}

// SetWorker installs the chat-room worker to be spawned by Run.
func (r *Reactor) SetWorker(w Worker) {
	r.worker = w
}

// Run spawns the chat-room worker (if one was set) and then blocks inside
// the demultiplexer's Wait loop forever.
func (r *Reactor) Run() error {
	if r.worker != nil {
		r.workerWG.Add(1)
		go func() {
			defer r.workerWG.Done()
			r.worker.Run(r)
		}()
	}
	r.log.Info("reactor running")
	err := r.demux.Wait(-1, r.GetHandler)
	r.log.Info("reactor run over", zap.Error(err))
	return err
}

// Shutdown closes every registered handler, then the demultiplexer
// itself, and waits for the worker goroutine to drain out. Closing the
// demultiplexer does not interrupt a Wait that is already blocked (the
// epoll backend keeps waiting), so Run does not return after Shutdown.
func (r *Reactor) Shutdown() {
	r.mu.RLock()
	handlers := make([]api.Handler, 0, len(r.table))
	for _, h := range r.table {
		handlers = append(handlers, h)
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		h.HandleClose()
	}
	_ = r.demux.Close()
	r.workerWG.Wait()
}

// File: internal/queue/fifo.go
// Author: momentics <momentics@gmail.com>
//
// FIFO is the cross-goroutine message queue handlers push onto and the
// chat-room worker blocks on: a mutex plus condition variable guarding
// a ring-buffer backed queue. github.com/eapache/queue.Queue supplies
// the ring buffer (amortized O(1) push/pop, grows/shrinks by doubling
// and halving).

package queue

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/reactor-chat/api"
)

// FIFO is safe for concurrent use by any number of producers and
// consumers.
type FIFO struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  *queue.Queue
	closed bool
}

// New returns an empty FIFO.
func New() *FIFO {
	f := &FIFO{items: queue.New()}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Push appends env and wakes one waiter. Push on a closed queue is a
// no-op: shutdown order doesn't guarantee producers stop first.
func (f *FIFO) Push(env api.Envelope) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.items.Add(env)
	f.mu.Unlock()
	f.cond.Signal()
}

// TryPop returns immediately: (envelope, true) if one was available, or
// (zero, false) otherwise.
func (f *FIFO) TryPop() (api.Envelope, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.items.Length() == 0 {
		return api.Envelope{}, false
	}
	return f.pop(), true
}

// WaitAndPop blocks until an item is available or the queue is closed.
// The second return is false only when the queue was closed and
// drained; callers use that to end their worker loop instead of racing
// on a stop flag.
func (f *FIFO) WaitAndPop() (api.Envelope, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.items.Length() == 0 && !f.closed {
		f.cond.Wait()
	}
	if f.items.Length() == 0 {
		return api.Envelope{}, false
	}
	return f.pop(), true
}

// Close marks the queue closed and wakes every blocked waiter, letting
// chatroom.Worker.Run exit when the server shuts down.
func (f *FIFO) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.cond.Broadcast()
}

// Len reports the number of items currently queued.
func (f *FIFO) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items.Length()
}

// pop must be called with f.mu held and the queue non-empty.
func (f *FIFO) pop() api.Envelope {
	env := f.items.Peek().(api.Envelope)
	f.items.Remove()
	return env
}

package reactor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/reactor-chat/api"
)

// fakeDemux records every Register/Remove/Modify call against its own fd
// set, independent of the Reactor's table, so tests can assert the two
// stay in lockstep.
type fakeDemux struct {
	mu       sync.Mutex
	fds      map[int]bool
	removeCh chan int
}

func newFakeDemux() *fakeDemux {
	return &fakeDemux{fds: make(map[int]bool), removeCh: make(chan int, 8)}
}

func (d *fakeDemux) Register(h api.Handler, _ api.EventMask) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fds[h.FD()] = true
	return nil
}

func (d *fakeDemux) Remove(h api.Handler) error {
	d.mu.Lock()
	delete(d.fds, h.FD())
	d.mu.Unlock()
	select {
	case d.removeCh <- h.FD():
	default:
	}
	return nil
}

func (d *fakeDemux) Modify(api.Handler, api.EventMask) error { return nil }
func (d *fakeDemux) Wait(int, func(int) api.Handler) error   { return nil }
func (d *fakeDemux) Close() error                            { return nil }

func (d *fakeDemux) has(fd int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fds[fd]
}

type fakeHandler struct {
	fd int
}

func (h *fakeHandler) FD() int            { return h.fd }
func (h *fakeHandler) Registered() bool   { return true }
func (h *fakeHandler) HandleAccept()      {}
func (h *fakeHandler) HandleRecv()        {}
func (h *fakeHandler) HandleClose()       {}
func (h *fakeHandler) HandleWrite([]byte) {}

func TestRegisterMirrorsDemuxAndTable(t *testing.T) {
	d := newFakeDemux()
	r := New(d, nil)
	h := &fakeHandler{fd: 5}

	require.NoError(t, r.Register(h, api.EventRecv))

	assert.True(t, d.has(5))
	assert.Same(t, api.Handler(h), r.GetHandler(5))
}

func TestRemoveMirrorsDemuxAndTable(t *testing.T) {
	d := newFakeDemux()
	r := New(d, nil)
	h := &fakeHandler{fd: 7}
	require.NoError(t, r.Register(h, api.EventRecv))

	r.Remove(h)

	assert.False(t, d.has(7))
	assert.Nil(t, r.GetHandler(7))
}

// TestGetHandlerLiveAcrossConcurrentRemove drives many goroutines calling
// GetHandler while another goroutine concurrently Removes the entry. The
// property under test: a reference obtained from GetHandler before (or
// racing with) the Remove stays a valid, usable api.Handler regardless
// of what the table does to its own entry.
func TestGetHandlerLiveAcrossConcurrentRemove(t *testing.T) {
	d := newFakeDemux()
	r := New(d, nil)
	h := &fakeHandler{fd: 11}
	require.NoError(t, r.Register(h, api.EventRecv))

	var wg sync.WaitGroup
	got := make(chan api.Handler, 64)

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ref := r.GetHandler(11); ref != nil {
				got <- ref
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Remove(h)
	}()

	wg.Wait()
	close(got)

	select {
	case <-d.removeCh:
	case <-time.After(time.Second):
		t.Fatal("demux never saw the Remove")
	}

	for ref := range got {
		assert.Equal(t, 11, ref.FD())
		ref.HandleWrite(nil)
	}

	assert.Nil(t, r.GetHandler(11))
	assert.False(t, d.has(11))
}

func TestRemoveUnknownFDIsNoop(t *testing.T) {
	d := newFakeDemux()
	r := New(d, nil)
	h := &fakeHandler{fd: 99}

	r.Remove(h)

	assert.False(t, d.has(99))
	assert.Nil(t, r.GetHandler(99))
}

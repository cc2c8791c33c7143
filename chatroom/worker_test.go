package chatroom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/reactor-chat/adapters"
	"github.com/momentics/reactor-chat/api"
	"github.com/momentics/reactor-chat/internal/queue"
	"github.com/momentics/reactor-chat/reactor"
)

type fakeDemux struct{}

func (fakeDemux) Register(api.Handler, api.EventMask) error { return nil }
func (fakeDemux) Remove(api.Handler) error                  { return nil }
func (fakeDemux) Modify(api.Handler, api.EventMask) error   { return nil }
func (fakeDemux) Wait(int, func(int) api.Handler) error     { return nil }
func (fakeDemux) Close() error                              { return nil }

type fakeHandler struct {
	fd      int
	written [][]byte
}

func (h *fakeHandler) FD() int            { return h.fd }
func (h *fakeHandler) Registered() bool    { return true }
func (h *fakeHandler) HandleAccept()       {}
func (h *fakeHandler) HandleRecv()         {}
func (h *fakeHandler) HandleClose()        {}
func (h *fakeHandler) HandleWrite(b []byte) {
	h.written = append(h.written, append([]byte(nil), b...))
}

func newTestReactor(t *testing.T, listenFD int, handlers ...*fakeHandler) *reactor.Reactor {
	t.Helper()
	r := reactor.New(fakeDemux{}, nil)
	listener := &fakeHandler{fd: listenFD}
	require.NoError(t, r.Register(listener, api.EventAccept))
	for _, h := range handlers {
		require.NoError(t, r.Register(h, api.EventRecv))
	}
	return r
}

func TestWorkerRegistersUsernameWithoutBroadcast(t *testing.T) {
	q := queue.New()
	w := New(q, 99, nil, nil, nil)
	alice := &fakeHandler{fd: 5}
	r := newTestReactor(t, 99, alice)

	w.dispatch(r, api.Envelope{SenderFD: 5}, []byte(`{"type":"text","sender":"client","recipient":"server","timestamp":"1","content":"alice"}`))

	assert.Equal(t, "alice", w.clients[5])
	assert.Empty(t, alice.written)
}

func TestWorkerBroadcastsChatTextToAllIncludingSender(t *testing.T) {
	q := queue.New()
	w := New(q, 99, nil, nil, nil)
	alice := &fakeHandler{fd: 5}
	bob := &fakeHandler{fd: 6}
	r := newTestReactor(t, 99, alice, bob)
	w.clients[5] = "alice"

	w.dispatch(r, api.Envelope{SenderFD: 5}, []byte(`{"type":"text","sender":"alice","recipient":"server","timestamp":"2","content":"SGk="}`))

	require.Len(t, alice.written, 1)
	require.Len(t, bob.written, 1)
	assert.Contains(t, string(alice.written[0]), `"content":"SGk="`)
	assert.Contains(t, string(alice.written[0]), `"sender":"alice"`)
}

func TestWorkerFileRelayRewritesSender(t *testing.T) {
	q := queue.New()
	w := New(q, 99, nil, nil, nil)
	alice := &fakeHandler{fd: 5}
	bob := &fakeHandler{fd: 6}
	r := newTestReactor(t, 99, alice, bob)
	w.clients[5] = "alice"

	w.dispatch(r, api.Envelope{SenderFD: 5}, []byte(`{"type":"file","sender":"client","timestamp":"3","msg_type":"metadata","content":"photo.png"}`))

	require.Len(t, bob.written, 1)
	assert.Contains(t, string(bob.written[0]), `"sender":"alice"`)
}

func TestWorkerMalformedFrameDropsAndContinues(t *testing.T) {
	q := queue.New()
	w := New(q, 99, nil, nil, nil)
	alice := &fakeHandler{fd: 5}
	r := newTestReactor(t, 99, alice)
	w.clients[5] = "alice"

	w.dispatch(r, api.Envelope{SenderFD: 5}, []byte(`{"type":"text","sender":"alice","content":`))
	assert.Empty(t, alice.written)

	w.dispatch(r, api.Envelope{SenderFD: 5}, []byte(`{"type":"text","sender":"bob","recipient":"server","timestamp":"4","content":"aGk="}`))
	assert.Len(t, alice.written, 1)
}

func TestWorkerPublishesStats(t *testing.T) {
	q := queue.New()
	ctrl := adapters.NewControlAdapter()
	w := New(q, 99, nil, nil, ctrl)
	r := newTestReactor(t, 99)

	q.Push(api.Envelope{SenderFD: 5, Payload: []byte(`{"type":"bogus"}`)})
	q.Close()

	done := make(chan struct{})
	go func() {
		w.Run(r)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not drain the queue")
	}

	stats := ctrl.Stats()
	assert.Equal(t, uint64(1), stats["stats.envelopes_processed"])
	assert.Equal(t, uint64(1), stats["stats.frames_dropped"])
	assert.Equal(t, 0, stats["stats.participants"])
}

func TestWorkerRunExitsWhenQueueClosed(t *testing.T) {
	q := queue.New()
	w := New(q, 99, nil, nil, nil)
	r := newTestReactor(t, 99)

	done := make(chan struct{})
	go func() {
		w.Run(r)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after queue closed")
	}
}

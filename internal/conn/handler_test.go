//go:build linux
// +build linux

package conn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/reactor-chat/api"
	"github.com/momentics/reactor-chat/internal/bufpool"
)

type fakeRegistrar struct {
	removed []int
}

func (f *fakeRegistrar) Register(api.Handler, api.EventMask) error { return nil }
func (f *fakeRegistrar) Remove(h api.Handler)                      { f.removed = append(f.removed, h.FD()) }
func (f *fakeRegistrar) Modify(api.Handler, api.EventMask)         {}

type fakeSink struct {
	envs []api.Envelope
}

func (f *fakeSink) Push(env api.Envelope) { f.envs = append(f.envs, env) }

func socketpair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	require.NoError(t, unix.SetNonblock(fds[0], true))
	require.NoError(t, unix.SetNonblock(fds[1], true))
	return fds[0], fds[1]
}

func TestHandleRecvChatRoomPushesEnvelope(t *testing.T) {
	a, b := socketpair(t)
	defer unix.Close(b)

	reg := &fakeRegistrar{}
	sink := &fakeSink{}
	h := New(a, "unix-peer", false, ModeChatRoom, reg, sink, bufpool.New(), nil, nil)

	_, err := unix.Write(b, []byte(`{"hello":"world"}`))
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	h.HandleRecv()

	require.Len(t, sink.envs, 1)
	assert.Equal(t, a, sink.envs[0].SenderFD)
	assert.Equal(t, `{"hello":"world"}`, string(sink.envs[0].Payload))
}

func TestHandleRecvPeerClosedTriggersClose(t *testing.T) {
	a, b := socketpair(t)

	reg := &fakeRegistrar{}
	sink := &fakeSink{}
	h := New(a, "unix-peer", false, ModeChatRoom, reg, sink, bufpool.New(), nil, nil)

	require.NoError(t, unix.Close(b))
	time.Sleep(10 * time.Millisecond)

	h.HandleRecv()

	assert.False(t, h.Registered())
	assert.Contains(t, reg.removed, a)
}

func TestHandleWriteDeliversFullPayload(t *testing.T) {
	a, b := socketpair(t)
	defer unix.Close(b)

	reg := &fakeRegistrar{}
	sink := &fakeSink{}
	h := New(a, "unix-peer", false, ModeChatRoom, reg, sink, bufpool.New(), nil, nil)

	payload := []byte(`{"type":"text"}`)
	h.HandleWrite(payload)

	buf := make([]byte, len(payload))
	n, err := unix.Read(b, buf)
	require.NoError(t, err)
	assert.Equal(t, payload, buf[:n])
}

func TestHandleCloseIsIdempotent(t *testing.T) {
	a, b := socketpair(t)
	defer unix.Close(b)

	reg := &fakeRegistrar{}
	sink := &fakeSink{}
	h := New(a, "unix-peer", false, ModeChatRoom, reg, sink, bufpool.New(), nil, nil)

	h.HandleClose()
	h.HandleClose()

	assert.Len(t, reg.removed, 1)
}

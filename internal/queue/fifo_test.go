package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/reactor-chat/api"
)

func TestFIFOTryPopEmpty(t *testing.T) {
	f := New()
	_, ok := f.TryPop()
	assert.False(t, ok)
}

func TestFIFOPushTryPopOrder(t *testing.T) {
	f := New()
	f.Push(api.Envelope{SenderFD: 1})
	f.Push(api.Envelope{SenderFD: 2})

	first, ok := f.TryPop()
	require.True(t, ok)
	assert.Equal(t, 1, first.SenderFD)

	second, ok := f.TryPop()
	require.True(t, ok)
	assert.Equal(t, 2, second.SenderFD)

	_, ok = f.TryPop()
	assert.False(t, ok)
}

func TestFIFOWaitAndPopBlocksUntilPush(t *testing.T) {
	f := New()
	done := make(chan api.Envelope, 1)
	go func() {
		env, ok := f.WaitAndPop()
		if ok {
			done <- env
		}
	}()

	time.Sleep(20 * time.Millisecond)
	f.Push(api.Envelope{SenderFD: 42})

	select {
	case env := <-done:
		assert.Equal(t, 42, env.SenderFD)
	case <-time.After(time.Second):
		t.Fatal("WaitAndPop did not return after Push")
	}
}

func TestFIFOCloseUnblocksWaiters(t *testing.T) {
	f := New()
	done := make(chan bool, 1)
	go func() {
		_, ok := f.WaitAndPop()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	f.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("WaitAndPop did not unblock after Close")
	}
}

func TestFIFOPushAfterCloseIsNoop(t *testing.T) {
	f := New()
	f.Close()
	f.Push(api.Envelope{SenderFD: 1})
	assert.Equal(t, 0, f.Len())
}

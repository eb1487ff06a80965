package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/ledcontent/internal/domain"
	"github.com/xiaot623/ledcontent/internal/logging"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := New(logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h
}

func receive(t *testing.T, conn *Connection) []byte {
	t.Helper()
	select {
	case data, ok := <-conn.Send:
		require.True(t, ok, "send channel closed")
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestBroadcastReachesOnlyChannelSubscribers(t *testing.T) {
	h := startHub(t)

	live := h.NewConnection(nil, domain.ChannelLive)
	test := h.NewConnection(nil, domain.ChannelTest)
	require.True(t, h.Register(live))
	require.True(t, h.Register(test))

	h.Broadcast(domain.ChannelLive, []byte("Text=0,Hi"))
	assert.Equal(t, "Text=0,Hi", string(receive(t, live)))

	select {
	case data := <-test.Send:
		t.Fatalf("test subscriber got live content %q", data)
	case <-time.After(20 * time.Millisecond):
	}

	assert.Equal(t, 2, h.ConnectionCount())
	assert.Equal(t, 1, h.SubscriberCount(domain.ChannelLive))
}

func TestUnregisterClosesSend(t *testing.T) {
	h := startHub(t)

	conn := h.NewConnection(nil, domain.ChannelLive)
	require.True(t, h.Register(conn))
	h.Unregister(conn)

	_, ok := <-conn.Send
	assert.False(t, ok)
	assert.Equal(t, 0, h.SubscriberCount(domain.ChannelLive))

	// A second unregister is a no-op.
	h.Unregister(conn)
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	h := startHub(t)

	conn := h.NewConnection(nil, domain.ChannelLive)
	require.True(t, h.Register(conn))
	for i := 0; i < sendBufferSize+1; i++ {
		h.Broadcast(domain.ChannelLive, []byte("x"))
	}

	require.Eventually(t, func() bool { return h.ConnectionCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestStoppedHubRejectsRegistration(t *testing.T) {
	h := New(logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	conn := h.NewConnection(nil, domain.ChannelLive)
	require.True(t, h.Register(conn))
	cancel()
	<-done

	_, ok := <-conn.Send
	assert.False(t, ok)
	assert.False(t, h.Register(h.NewConnection(nil, domain.ChannelTest)))
	h.Broadcast(domain.ChannelLive, []byte("ignored"))
}

package live

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestBroadcastToRoom_DeliversOnlyToRoom(t *testing.T) {
	hub := newTestHub(t)
	leaderboard := NewClient(hub, nil, "leaderboard")
	other := NewClient(hub, nil, "other")
	hub.Register <- leaderboard
	hub.Register <- other
	require.Eventually(t, func() bool { return hub.RoomSize("leaderboard") == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToRoom("leaderboard", map[string]string{"type": "LEADERBOARD_UPDATED"})

	select {
	case msg := <-leaderboard.Send:
		var decoded map[string]string
		require.NoError(t, json.Unmarshal(msg, &decoded))
		assert.Equal(t, "LEADERBOARD_UPDATED", decoded["type"])
	case <-time.After(time.Second):
		t.Fatal("leaderboard client got no message")
	}
	assert.Empty(t, other.Send)
}

func TestUnregister_ClosesSendChannel(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient(hub, nil, "leaderboard")
	hub.Register <- client
	hub.Unregister <- client

	require.Eventually(t, func() bool { return hub.RoomSize("leaderboard") == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-client.Send
	assert.False(t, ok)

	// Рассылка в пустую комнату ничего не делает
	hub.BroadcastToRoom("leaderboard", "ignored")
}

func TestBroadcastToRoom_FullBufferSkips(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient(hub, nil, "leaderboard")
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.RoomSize("leaderboard") == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < sendBufferSize+10; i++ {
		hub.BroadcastToRoom("leaderboard", i)
	}

	assert.Len(t, client.Send, sendBufferSize)
}

func TestUnregister_DoesNotBlockAfterShutdown(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := NewClient(hub, nil, "leaderboard")
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.RoomSize("leaderboard") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, ok := <-client.Send
	assert.False(t, ok, "shutdown closes clients")

	assert.False(t, hub.Join(NewClient(hub, nil, "leaderboard")), "stopped hub takes no clients")

	returned := make(chan struct{})
	go func() {
		hub.unregister(client)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after shutdown")
	}
}

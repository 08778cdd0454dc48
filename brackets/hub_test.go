package brackets

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastToRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	room := CompetitionRoom("c1")
	inRoom := &Client{Hub: hub, Send: make(chan []byte, 4), Room: room}
	elsewhere := &Client{Hub: hub, Send: make(chan []byte, 4), Room: CompetitionRoom("c2")}
	hub.Register <- inRoom
	hub.Register <- elsewhere

	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom(room, WebSocketMessage{Type: MessageBracketUpdated, RoomID: room, Payload: "x"})

	select {
	case raw := <-inRoom.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, MessageBracketUpdated, msg.Type)
		assert.Equal(t, room, msg.RoomID)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
	assert.Empty(t, elsewhere.Send)

	hub.Unregister <- inRoom
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 0 }, time.Second, 10*time.Millisecond)
	assert.True(t, inRoom.IsClosed)
}

func TestHub_JoinAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	room := CompetitionRoom("c1")
	require.True(t, hub.Join(&Client{Hub: hub, Send: make(chan []byte, 1), Room: room}))
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	<-stopped

	joined := make(chan bool, 1)
	go func() { joined <- hub.Join(&Client{Hub: hub, Send: make(chan []byte, 1), Room: room}) }()
	select {
	case ok := <-joined:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Join blocked on a stopped hub")
	}
}

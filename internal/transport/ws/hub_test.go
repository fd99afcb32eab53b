package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id, playerID string) *Client {
	return &Client{
		id:       id,
		playerID: playerID,
		rooms:    make(map[string]struct{}),
		send:     make(chan []byte, 8),
	}
}

func drain(t *testing.T, c *Client) []Envelope {
	t.Helper()
	var out []Envelope
	for {
		select {
		case data := <-c.send:
			var env Envelope
			require.NoError(t, json.Unmarshal(data, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}

func TestHubRoomAddressing(t *testing.T) {
	hub := NewHub()
	a := newTestClient("conn-a", "player-a")
	b := newTestClient("conn-b", "player-b")
	other := newTestClient("conn-c", "player-c")

	hub.register(a)
	hub.register(b)
	hub.register(other)
	hub.joinRoom(a, "room-1")
	hub.joinRoom(b, "room-1")
	hub.joinRoom(other, "room-2")

	hub.ToRoom("room-1", "chat_message", map[string]string{"message": "hello"})

	assert.Len(t, drain(t, a), 1)
	assert.Len(t, drain(t, b), 1)
	assert.Empty(t, drain(t, other))
}

func TestHubRoomExceptSkipsSender(t *testing.T) {
	hub := NewHub()
	a := newTestClient("conn-a", "player-a")
	b := newTestClient("conn-b", "player-b")

	hub.register(a)
	hub.register(b)
	hub.joinRoom(a, "room-1")
	hub.joinRoom(b, "room-1")

	hub.ToRoomExcept("room-1", "conn-a", "player_action_analyzed", nil)

	assert.Empty(t, drain(t, a))
	events := drain(t, b)
	require.Len(t, events, 1)
	assert.Equal(t, "player_action_analyzed", events[0].Event)
}

func TestHubToClientByConnectionID(t *testing.T) {
	hub := NewHub()
	a := newTestClient("conn-a", "player-a")
	b := newTestClient("conn-b", "player-b")

	hub.register(a)
	hub.register(b)

	hub.ToClient("conn-a", "judgment_ready", nil)

	assert.Len(t, drain(t, a), 1)
	assert.Empty(t, drain(t, b))
}

func TestHubToClientByPlayerID(t *testing.T) {
	hub := NewHub()
	a := newTestClient("conn-a", "")
	hub.register(a)
	hub.setPlayer(a, "player-a")

	hub.ToClient("player-a", "narrative_error", nil)

	events := drain(t, a)
	require.Len(t, events, 1)
	assert.Equal(t, "narrative_error", events[0].Event)
}

func TestHubUnregisterReportsRemaining(t *testing.T) {
	hub := NewHub()
	a := newTestClient("conn-a", "player-a")
	b := newTestClient("conn-b", "player-b")

	hub.register(a)
	hub.register(b)
	hub.joinRoom(a, "room-1")
	hub.joinRoom(b, "room-1")

	left := hub.unregister(a)
	assert.Equal(t, map[string]int{"room-1": 1}, left)

	left = hub.unregister(b)
	assert.Equal(t, map[string]int{"room-1": 0}, left)
}

func TestHubLeaveRoomStopsDelivery(t *testing.T) {
	hub := NewHub()
	a := newTestClient("conn-a", "player-a")
	b := newTestClient("conn-b", "player-b")

	hub.register(a)
	hub.register(b)
	hub.joinRoom(a, "room-1")
	hub.joinRoom(b, "room-1")

	remaining := hub.leaveRoom(a, "room-1")
	assert.Equal(t, 1, remaining)

	hub.ToRoom("room-1", "chat_message", nil)
	assert.Empty(t, drain(t, a))
	assert.Len(t, drain(t, b), 1)
}

// Package ws is the websocket transport: a hub that tracks connections
// and room membership, and per-connection read/write pumps that bridge
// client messages into the coordinator.
package ws

import (
	"log/slog"
	"sync"

	"github.com/KirkDiggler/gm-api/internal/services/coordinator"
)

// Hub maintains the set of active clients and their room membership. It
// implements coordinator.Broadcaster: events can target one connection,
// a whole room, or a room minus the sender. ToClient also accepts a
// player ID, since some notifications address a person rather than a
// connection.
type Hub struct {
	mu sync.Mutex
	// conn ID -> client
	clients map[string]*Client
	// player ID -> that player's connections
	players map[string]map[*Client]struct{}
	// room ID -> clients joined to it
	rooms map[string]map[*Client]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		players: make(map[string]map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.id] = c
	if c.playerID != "" {
		if h.players[c.playerID] == nil {
			h.players[c.playerID] = make(map[*Client]struct{})
		}
		h.players[c.playerID][c] = struct{}{}
	}
}

// unregister removes the client everywhere and returns the rooms it was
// in, with the member count remaining in each
func (h *Hub) unregister(c *Client) map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, c.id)
	if conns := h.players[c.playerID]; conns != nil {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.players, c.playerID)
		}
	}

	left := make(map[string]int)
	for roomID := range c.rooms {
		if members := h.rooms[roomID]; members != nil {
			delete(members, c)
			left[roomID] = len(members)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}

	close(c.send)
	return left
}

func (h *Hub) joinRoom(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
	c.rooms[roomID] = struct{}{}
}

// leaveRoom removes the client from a room and returns how many members
// remain
func (h *Hub) leaveRoom(c *Client, roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(c.rooms, roomID)
	members := h.rooms[roomID]
	if members == nil {
		return 0
	}
	delete(members, c)
	remaining := len(members)
	if remaining == 0 {
		delete(h.rooms, roomID)
	}
	return remaining
}

// setPlayer binds the connection to a player once they join a room
func (h *Hub) setPlayer(c *Client, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.playerID == playerID {
		return
	}
	if conns := h.players[c.playerID]; conns != nil {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.players, c.playerID)
		}
	}
	c.playerID = playerID
	if h.players[playerID] == nil {
		h.players[playerID] = make(map[*Client]struct{})
	}
	h.players[playerID][c] = struct{}{}
}

// ToClient implements coordinator.Broadcaster. The ID may be a
// connection ID or a player ID.
func (h *Hub) ToClient(clientID, event string, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		slog.Error("failed to encode event", "event", event, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		c.enqueue(data)
		return
	}
	for c := range h.players[clientID] {
		c.enqueue(data)
	}
}

// ToRoom implements coordinator.Broadcaster
func (h *Hub) ToRoom(roomID, event string, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		slog.Error("failed to encode event", "event", event, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.rooms[roomID] {
		c.enqueue(data)
	}
}

// ToRoomExcept implements coordinator.Broadcaster
func (h *Hub) ToRoomExcept(roomID, exceptClientID, event string, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		slog.Error("failed to encode event", "event", event, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.rooms[roomID] {
		if c.id == exceptClientID {
			continue
		}
		c.enqueue(data)
	}
}

var _ coordinator.Broadcaster = (*Hub)(nil)

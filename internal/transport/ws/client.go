package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
	"github.com/KirkDiggler/gm-api/internal/orchestrators/turn"
	"github.com/KirkDiggler/gm-api/internal/services/coordinator"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outbound queue per connection. A client that cannot drain this
	// gets disconnected.
	sendBuffer = 256
)

// Client is one websocket connection. Its read pump dispatches inbound
// messages to the coordinator; its write pump drains the send queue.
type Client struct {
	id       string
	playerID string
	rooms    map[string]struct{}

	hub   *Hub
	coord *coordinator.Coordinator
	conn  *websocket.Conn
	send  chan []byte
}

func newClient(hub *Hub, coord *coordinator.Coordinator, conn *websocket.Conn) *Client {
	return &Client{
		id:    uuid.New().String(),
		rooms: make(map[string]struct{}),
		hub:   hub,
		coord: coord,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
	}
}

// enqueue queues an outbound frame. Callers hold the hub lock, so a
// full queue drops the frame rather than blocking the hub.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Warn("dropping event, client send queue full", "client_id", c.id)
	}
}

// readPump reads inbound messages until the connection drops, then
// tears the client down and tells the coordinator about every room it
// was still in
func (c *Client) readPump() {
	defer func() {
		left := c.hub.unregister(c)
		for roomID, remaining := range left {
			c.coord.LeaveRoom(context.Background(), roomID, c.playerID, remaining)
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket closed unexpectedly", "client_id", c.id, "error", err)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("", "malformed message")
			continue
		}
		c.dispatch(&msg)
	}
}

func (c *Client) dispatch(msg *inbound) {
	ctx := context.Background()

	switch msg.Type {
	case TypeJoinRoom:
		if msg.RoomID == "" || msg.PlayerID == "" {
			c.sendError(msg.RoomID, "join requires room_id and player_id")
			return
		}
		c.hub.setPlayer(c, msg.PlayerID)
		c.hub.joinRoom(c, msg.RoomID)
		if err := c.coord.JoinRoom(ctx, c.id, msg.RoomID, msg.PlayerID); err != nil {
			c.hub.leaveRoom(c, msg.RoomID)
		}

	case TypeLeaveRoom:
		remaining := c.hub.leaveRoom(c, msg.RoomID)
		c.coord.LeaveRoom(ctx, msg.RoomID, c.playerID, remaining)

	case TypeSubmitAction:
		actionType := game.ActionType(msg.ActionType)
		c.coord.SubmitAction(ctx, c.id, msg.RoomID, msg.ActorID, msg.ActionText, actionType, !msg.SkipPreRoll)

	case TypeCommitActions:
		submissions := make([]turn.ActionSubmission, 0, len(msg.Actions))
		for _, a := range msg.Actions {
			submissions = append(submissions, turn.ActionSubmission{
				ActorID:    a.ActorID,
				ActionText: a.ActionText,
				ActionType: game.ActionType(a.ActionType),
			})
		}
		c.coord.CommitActions(ctx, c.id, msg.RoomID, submissions)

	case TypeConfirmRoll:
		c.coord.ConfirmRoll(ctx, c.id, msg.RoomID, msg.ActorID)

	case TypeRollDie:
		c.coord.RollDie(ctx, c.id, msg.RoomID, msg.ActorID)

	case TypeTriggerNarrative:
		c.coord.TriggerNarration(ctx, c.id, msg.RoomID, c.playerID)

	case TypeChat:
		c.coord.Chat(msg.RoomID, c.playerID, msg.Message)

	default:
		c.sendError(msg.RoomID, "unknown message type: "+msg.Type)
	}
}

func (c *Client) sendError(roomID, message string) {
	data, err := encode(coordinator.EventError, coordinator.ErrorPayload{
		RoomID: roomID, Message: message,
	})
	if err != nil {
		return
	}
	c.enqueue(data)
}

// writePump drains the send queue to the peer and keeps the connection
// alive with pings. One writePump per connection; all writes go through
// it.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

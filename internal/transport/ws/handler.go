package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/KirkDiggler/gm-api/internal/services/coordinator"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Rooms are join-by-ID; origin policy is left to the deployment
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to websocket connections and attaches
// them to the hub
func Handler(hub *Hub, coord *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "error", err)
			return
		}

		client := newClient(hub, coord, conn)
		hub.register(client)
		slog.Debug("client connected", "client_id", client.id)

		go client.writePump()
		go client.readPump()
	}
}

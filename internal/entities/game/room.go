package game

import (
	"time"

	"github.com/KirkDiggler/rpg-toolkit/core"
)

// Room is one game session/table. A room goes inactive when its host
// disconnects or when no participants remain; inactive rooms are excluded
// from matchmaking and can be reactivated by the host.
type Room struct {
	ID          string    `json:"id"`
	HostID      string    `json:"host_id"`
	Title       string    `json:"title"`
	WorldPrompt string    `json:"world_prompt"`
	AISummary   string    `json:"ai_summary,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetID implements core.Entity
func (r *Room) GetID() string {
	return r.ID
}

// GetType implements core.Entity
func (r *Room) GetType() string {
	return "room"
}

var _ core.Entity = (*Room)(nil)

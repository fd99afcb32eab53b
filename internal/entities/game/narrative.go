package game

import "time"

// NarrativeRole tags who authored a narrative entry
type NarrativeRole string

// Narrative roles
const (
	// RoleUser marks a combined human-authored action log entry
	RoleUser NarrativeRole = "user"
	// RoleAI marks prose written by the narrator
	RoleAI NarrativeRole = "ai"
)

// NarrativeEntry is one turn's rendered prose, immutable after creation
// except for being referenced by judgments that it resolves.
type NarrativeEntry struct {
	ID        string        `json:"id"`
	RoomID    string        `json:"room_id"`
	Role      NarrativeRole `json:"role"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
}

package ws

import "encoding/json"

// Inbound message types
const (
	TypeJoinRoom         = "join_room"
	TypeLeaveRoom        = "leave_room"
	TypeSubmitAction     = "submit_action"
	TypeCommitActions    = "commit_actions"
	TypeConfirmRoll      = "confirm_roll"
	TypeRollDie          = "roll_die"
	TypeTriggerNarrative = "trigger_narrative"
	TypeChat             = "chat"
)

// inbound is the client-to-server message schema. Fields beyond Type are
// read per message type.
type inbound struct {
	Type       string          `json:"type"`
	RoomID     string          `json:"room_id"`
	PlayerID   string          `json:"player_id"`
	ActorID    string          `json:"actor_id"`
	ActionText string          `json:"action_text"`
	ActionType string          `json:"action_type"`
	// SkipPreRoll defers the die to an explicit roll_die instead of
	// drawing it at analysis time
	SkipPreRoll bool            `json:"skip_pre_roll,omitempty"`
	Actions     []inboundAction `json:"actions,omitempty"`
	Message     string          `json:"message"`
}

// inboundAction is one declared action in a commit_actions batch
type inboundAction struct {
	ActorID    string `json:"actor_id"`
	ActionText string `json:"action_text"`
	ActionType string `json:"action_type"`
}

// Envelope is the server-to-client message schema
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func encode(event string, payload any) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: payload})
}

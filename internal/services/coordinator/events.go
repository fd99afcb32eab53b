package coordinator

// Event names pushed to connected clients
const (
	EventJudgmentReady        = "judgment_ready"
	EventPlayerActionAnalyzed = "player_action_analyzed"
	EventActionAnalysisError  = "action_analysis_error"

	EventDiceRolled    = "dice_rolled"
	EventAllDiceRolled = "all_dice_rolled"
	EventDiceRollError = "dice_roll_error"

	EventNarrativeStreamStarted = "narrative_stream_started"
	EventNarrativeToken         = "narrative_token"
	EventNarrativeComplete      = "narrative_complete"
	EventNarrativeError         = "narrative_error"

	EventPlayerJoined = "player_joined"
	EventPlayerLeft   = "player_left"
	EventRoomClosed   = "room_closed"
	EventChatMessage  = "chat_message"
	EventError        = "error"
)

// JudgmentReadyPayload goes to the submitter only: the analysis without
// the pre-rolled die
type JudgmentReadyPayload struct {
	RoomID              string `json:"room_id"`
	ActorID             string `json:"actor_id"`
	JudgmentID          string `json:"judgment_id"`
	ActionText          string `json:"action_text"`
	Modifier            int32  `json:"modifier"`
	Difficulty          int32  `json:"difficulty"`
	DifficultyReasoning string `json:"difficulty_reasoning"`
}

// ActionAnalyzedPayload goes to the rest of the room
type ActionAnalyzedPayload struct {
	RoomID     string `json:"room_id"`
	ActorID    string `json:"actor_id"`
	ActorName  string `json:"actor_name"`
	JudgmentID string `json:"judgment_id"`
	ActionText string `json:"action_text"`
	Modifier   int32  `json:"modifier"`
	Difficulty int32  `json:"difficulty"`
}

// DiceRolledPayload reveals a confirmed roll to the whole room
type DiceRolledPayload struct {
	RoomID           string `json:"room_id"`
	ActorID          string `json:"actor_id"`
	ActorName        string `json:"actor_name"`
	JudgmentID       string `json:"judgment_id"`
	DieResult        int32  `json:"die_result"`
	Modifier         int32  `json:"modifier"`
	FinalValue       int32  `json:"final_value"`
	Difficulty       int32  `json:"difficulty"`
	Outcome          string `json:"outcome"`
	OutcomeReasoning string `json:"outcome_reasoning"`
}

// NarrativeTokenPayload carries one paced narration token
type NarrativeTokenPayload struct {
	RoomID string `json:"room_id"`
	Token  string `json:"token"`
}

// NarrativeCompletePayload announces the end of the round's prose
type NarrativeCompletePayload struct {
	RoomID      string `json:"room_id"`
	NarrativeID string `json:"narrative_id"`
	Truncated   bool   `json:"truncated,omitempty"`
}

// ErrorPayload carries a failure message for one flow
type ErrorPayload struct {
	RoomID  string `json:"room_id,omitempty"`
	Message string `json:"message"`
}

// PresencePayload announces joins and leaves
type PresencePayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	ActorID  string `json:"actor_id,omitempty"`
}

// RoomClosedPayload announces a room going inactive
type RoomClosedPayload struct {
	RoomID string `json:"room_id"`
	Reason string `json:"reason"`
}

// ChatPayload relays a table-talk message
type ChatPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Message  string `json:"message"`
}

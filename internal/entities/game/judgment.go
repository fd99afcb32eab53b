package game

import "time"

// Phase tracks how far an action judgment has progressed through the
// three-phase turn process. A judgment only moves forward, never back;
// superseding a stale judgment means creating a new one, not rewinding.
type Phase int32

// Judgment phases
const (
	// PhasePreRolled: die generated internally at analysis time, not yet
	// revealed to the player
	PhasePreRolled Phase = 0
	// PhaseAnalyzed: analysis only, no pre-rolled die (direct-generation path)
	PhaseAnalyzed Phase = 1
	// PhaseConfirmed: player has been shown their pre-rolled value
	PhaseConfirmed Phase = 2
	// PhaseNarrated: linked to a finished narrative entry; terminal
	PhaseNarrated Phase = 3
)

// Valid reports whether p is a known phase value
func (p Phase) Valid() bool {
	switch p {
	case PhasePreRolled, PhaseAnalyzed, PhaseConfirmed, PhaseNarrated:
		return true
	}
	return false
}

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhasePreRolled:
		return "pre_rolled"
	case PhaseAnalyzed:
		return "analyzed"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseNarrated:
		return "narrated"
	default:
		return "unknown"
	}
}

// Outcome is the categorical result of a resolved action
type Outcome string

// Outcomes, from worst to best
const (
	OutcomeCriticalFailure Outcome = "critical_failure"
	OutcomeFailure         Outcome = "failure"
	OutcomeSuccess         Outcome = "success"
	OutcomeCriticalSuccess Outcome = "critical_success"
)

// Judgment is the provisional-to-final record of one actor's turn action.
// Die, final value, and outcome are nil/empty until the pre-roll (or the
// direct path's roll) fills them in.
type Judgment struct {
	ID          string `json:"id"`
	RoomID      string `json:"room_id"`
	ActorID     string `json:"actor_id"`
	NarrativeID string `json:"narrative_id,omitempty"`

	ActionText string     `json:"action_text"`
	ActionType ActionType `json:"action_type"`

	DieResult           *int32  `json:"die_result,omitempty"`
	Modifier            int32   `json:"modifier"`
	FinalValue          *int32  `json:"final_value,omitempty"`
	Difficulty          int32   `json:"difficulty"`
	DifficultyReasoning string  `json:"difficulty_reasoning,omitempty"`
	Outcome             Outcome `json:"outcome,omitempty"`
	OutcomeReasoning    string  `json:"outcome_reasoning,omitempty"`

	Phase     Phase     `json:"phase"`
	CreatedAt time.Time `json:"created_at"`
}

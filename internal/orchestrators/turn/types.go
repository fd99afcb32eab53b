package turn

import (
	"github.com/KirkDiggler/gm-api/internal/entities/game"
)

// ActionSubmission is one actor's declared action for the round
type ActionSubmission struct {
	ActorID    string
	ActionText string
	ActionType game.ActionType
}

// AnalyzeActionsInput defines the input for analyzing a batch of actions
type AnalyzeActionsInput struct {
	RoomID  string
	Actions []ActionSubmission
	// PreRoll draws each actor's die at analysis time (the default
	// flow). When false, judgments stop at the analyzed phase and the
	// die is drawn later via RollDie.
	PreRoll bool
	// FreshRound opens a new round for the batch, replacing whatever
	// round was in flight. When false the actors join the current round.
	FreshRound bool
}

// AnalyzeActionsOutput defines the output for analyzing a batch of actions.
// Judgments carry pre-rolled results; callers decide what to reveal.
type AnalyzeActionsOutput struct {
	Judgments []*game.Judgment
}

// RollDieInput defines the input for rolling an analyzed judgment's die
type RollDieInput struct {
	RoomID  string
	ActorID string
}

// RollDieOutput defines the output for rolling an analyzed judgment's die
type RollDieOutput struct {
	Judgment *game.Judgment
	// AllReady reports whether every submitted actor has now confirmed
	AllReady bool
}

// ConfirmRollInput defines the input for confirming a pre-rolled judgment
type ConfirmRollInput struct {
	RoomID  string
	ActorID string
}

// ConfirmRollOutput defines the output for confirming a pre-rolled judgment
type ConfirmRollOutput struct {
	Judgment *game.Judgment
	// AllReady reports whether every submitted actor has now confirmed
	AllReady bool
}

// TokenSink receives paced narration tokens as they are released
type TokenSink func(token string) error

// StreamNarrativeInput defines the input for narrating a completed round
type StreamNarrativeInput struct {
	RoomID string
	// Sink receives each token at the pacing interval. Optional; a nil
	// sink still persists the narrative.
	Sink TokenSink
}

// StreamNarrativeOutput defines the output for narrating a completed round
type StreamNarrativeOutput struct {
	NarrativeID string
	Content     string
	// Persisted is false when narration succeeded but storing the entry
	// failed; the prose was already streamed and is returned in Content
	Persisted bool
	// Truncated is true when the stream hit the content cap
	Truncated bool
}

// DiscardActorInput defines the input for dropping an actor from the round
type DiscardActorInput struct {
	RoomID  string
	ActorID string
}

// DiscardActorOutput defines the output for dropping an actor from the round
type DiscardActorOutput struct {
	// AllReady reports whether the remaining actors are now all confirmed
	AllReady bool
}

// RoundStatusInput defines the input for inspecting a room's round
type RoundStatusInput struct {
	RoomID string
}

// RoundStatusOutput defines the output for inspecting a room's round
type RoundStatusOutput struct {
	RoundID   int64
	Submitted int
	Confirmed int
	AllReady  bool
}

// RestoreRoundInput defines the input for restoring a mirrored round
type RestoreRoundInput struct {
	RoomID string
}

// RestoreRoundOutput defines the output for restoring a mirrored round
type RestoreRoundOutput struct {
	Restored bool
}

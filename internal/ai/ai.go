// Package ai defines the interfaces to the language model: a judge that
// assigns difficulties to declared actions and a narrator that streams
// prose for resolved rolls.
package ai

//go:generate mockgen -destination=mock/mock_ai.go -package=aimock github.com/KirkDiggler/gm-api/internal/ai Judge,Narrator

import (
	"context"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
)

// ActionRequest is one actor's declared action, pending analysis
type ActionRequest struct {
	ActorID    string
	ActorName  string
	ActionText string
	ActionType game.ActionType
}

// Verdict is the judge's ruling for one action
type Verdict struct {
	ActorID    string
	Difficulty int32
	Reasoning  string
}

// JudgeInput carries the room context and the batch of actions to rule on
type JudgeInput struct {
	WorldPrompt string
	Actors      []*game.Actor
	// History holds recent narrative entries, oldest first
	History []string
	Actions []ActionRequest
}

// JudgeOutput maps actor ID to the judge's verdict. Actions the model
// failed to rule on are absent; callers apply the default difficulty.
type JudgeOutput struct {
	Verdicts map[string]Verdict
}

// Judge rules on a batch of declared actions in one model call
type Judge interface {
	// JudgeActions returns a difficulty and reasoning per action
	// Returns errors.Unavailable when the model cannot be reached
	JudgeActions(ctx context.Context, input *JudgeInput) (*JudgeOutput, error)
}

// ResolvedAction is one fully resolved roll, input to the narrator
type ResolvedAction struct {
	ActorName  string
	ActionText string
	DieResult  int32
	Modifier   int32
	FinalValue int32
	Difficulty int32
	Outcome    game.Outcome
	Reasoning  string
}

// NarrateInput carries everything the narrator needs for one round
type NarrateInput struct {
	WorldPrompt string
	History     []string
	Results     []ResolvedAction
}

// TokenSink receives tokens as the narrator produces them. Returning an
// error stops the stream.
type TokenSink func(token string) error

// Narrator turns resolved rolls into prose, streamed or whole
type Narrator interface {
	// StreamNarrative generates the round's narration, emitting each
	// token to sink as it arrives
	// Returns errors.Unavailable when the model cannot be reached
	StreamNarrative(ctx context.Context, input *NarrateInput, sink TokenSink) error

	// Narrate generates the round's narration as one block of text,
	// for callers that bypass the streaming path
	// Returns errors.Unavailable when the model cannot be reached
	Narrate(ctx context.Context, input *NarrateInput) (string, error)
}

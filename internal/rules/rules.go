// Package rules implements the deterministic table mechanics: ability
// modifiers, d20 resolution, and outcome classification.
package rules

import (
	"fmt"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
	"github.com/KirkDiggler/gm-api/internal/errors"
)

// Difficulty bounds. AI-suggested difficulties are clamped into this range.
const (
	MinDifficulty int32 = 5
	MaxDifficulty int32 = 30

	// DefaultDifficulty applies when analysis fails to produce a usable value
	DefaultDifficulty int32 = 15
)

// AbilityModifier converts a raw ability score to its modifier:
// floor((score-10)/2). The floor must round toward negative infinity,
// so a score of 7 gives -2, not -1.
func AbilityModifier(score int32) int32 {
	diff := score - 10
	if diff < 0 {
		return -((-diff + 1) / 2)
	}
	return diff / 2
}

// ActionModifier computes an actor's total modifier for an action: the
// ability modifier for the tested score plus all active status effect
// modifiers.
func ActionModifier(actor *game.Actor, actionType game.ActionType) int32 {
	mod := AbilityModifier(actor.Abilities.Score(actionType))
	for _, effect := range actor.StatusEffects {
		mod += effect.Modifier
	}
	return mod
}

// ClampDifficulty bounds an AI-suggested difficulty to the valid range
func ClampDifficulty(dc int32) int32 {
	if dc < MinDifficulty {
		return MinDifficulty
	}
	if dc > MaxDifficulty {
		return MaxDifficulty
	}
	return dc
}

// Resolution is a fully resolved roll
type Resolution struct {
	DieResult  int32
	Modifier   int32
	FinalValue int32
	Outcome    game.Outcome
}

// Resolve applies the outcome rules to a raw die result. Natural 1 and
// natural 20 override the difficulty comparison entirely; otherwise the
// outcome is success when die+modifier meets or beats the difficulty.
func Resolve(dieResult, modifier, difficulty int32) Resolution {
	res := Resolution{
		DieResult:  dieResult,
		Modifier:   modifier,
		FinalValue: dieResult + modifier,
	}

	switch {
	case dieResult == 1:
		res.Outcome = game.OutcomeCriticalFailure
	case dieResult == 20:
		res.Outcome = game.OutcomeCriticalSuccess
	case res.FinalValue >= difficulty:
		res.Outcome = game.OutcomeSuccess
	default:
		res.Outcome = game.OutcomeFailure
	}

	return res
}

// OutcomeReasoning renders a short mechanical explanation of a resolution,
// used in narrator prompts and surfaced to the host.
func OutcomeReasoning(res Resolution, difficulty int32) string {
	switch res.Outcome {
	case game.OutcomeCriticalFailure:
		return "Natural 1: automatic critical failure regardless of modifiers"
	case game.OutcomeCriticalSuccess:
		return "Natural 20: automatic critical success regardless of difficulty"
	case game.OutcomeSuccess:
		return fmt.Sprintf("Rolled %d + %d = %d vs DC %d: success",
			res.DieResult, res.Modifier, res.FinalValue, difficulty)
	default:
		return fmt.Sprintf("Rolled %d + %d = %d vs DC %d: failure",
			res.DieResult, res.Modifier, res.FinalValue, difficulty)
	}
}

//go:generate mockgen -destination=mock/mock_roller.go -package=rulesmock github.com/KirkDiggler/gm-api/internal/rules Roller

// Roller produces raw d20 results. Injected so tests can pin rolls.
type Roller interface {
	// RollD20 returns a value in [1,20]
	RollD20() (int32, error)
}

// ToolkitRoller rolls with rpg-toolkit dice
type ToolkitRoller struct{}

// NewToolkitRoller creates the production roller
func NewToolkitRoller() *ToolkitRoller {
	return &ToolkitRoller{}
}

// RollD20 implements Roller
func (r *ToolkitRoller) RollD20() (int32, error) {
	roll, err := dice.NewRoll(1, 20)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create d20 roll")
	}
	return int32(roll.GetValue()), nil
}

// SequenceRoller returns a fixed sequence of results, then wraps around.
// Test helper.
type SequenceRoller struct {
	results []int32
	idx     int
}

// NewSequenceRoller creates a roller that replays the given results
func NewSequenceRoller(results ...int32) *SequenceRoller {
	return &SequenceRoller{results: results}
}

// RollD20 implements Roller
func (r *SequenceRoller) RollD20() (int32, error) {
	if len(r.results) == 0 {
		return 0, errors.Internal("sequence roller has no results")
	}
	v := r.results[r.idx%len(r.results)]
	r.idx++
	return v, nil
}

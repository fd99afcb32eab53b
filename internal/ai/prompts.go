package ai

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/gm-api/internal/entities/game"
)

// recentHistoryLimit bounds how much story history goes into a prompt
const recentHistoryLimit = 5

const judgeSystemPrompt = `You are the game master's referee for a tabletop RPG.
For each declared action, decide how hard it is on a d20 scale.

Rules:
- Difficulty (DC) must be an integer from 5 (trivial) to 30 (nearly impossible).
- Judge the action against the world, the situation, and the recent story.
- Do not roll dice or decide outcomes; only set the difficulty.

Respond with ONLY a JSON array, one object per action:
[
  {"actor_id": "<id>", "difficulty": <int>, "reasoning": "<one sentence>"}
]`

const narratorSystemPrompt = `You are the game master narrating a tabletop RPG.
Weave every resolved action into one continuous scene, in order.

Rules:
- Honor each mechanical outcome exactly: a failure stays a failure.
- Make critical successes feel spectacular and critical failures costly.
- Write vivid second-person prose addressed to the party. No dice talk,
  no numbers, no meta commentary.`

// buildJudgeUserPrompt renders the room context and action batch for the judge
func buildJudgeUserPrompt(input *JudgeInput) string {
	var b strings.Builder

	if input.WorldPrompt != "" {
		fmt.Fprintf(&b, "## World\n\n%s\n\n", input.WorldPrompt)
	}

	if len(input.Actors) > 0 {
		b.WriteString("## Characters\n\n")
		for _, a := range input.Actors {
			fmt.Fprintf(&b, "- **%s** (ID: %s)\n", a.Name, a.ID)
			fmt.Fprintf(&b, "  - STR %d, DEX %d, CON %d, INT %d, WIS %d, CHA %d\n",
				a.Abilities.Strength, a.Abilities.Dexterity, a.Abilities.Constitution,
				a.Abilities.Intelligence, a.Abilities.Wisdom, a.Abilities.Charisma)
			for _, e := range a.StatusEffects {
				fmt.Fprintf(&b, "  - status: %s (%+d)\n", e.Name, e.Modifier)
			}
		}
		b.WriteString("\n")
	}

	writeHistory(&b, input.History)

	b.WriteString("## Actions to judge\n\n")
	for i, action := range input.Actions {
		fmt.Fprintf(&b, "%d. **%s** (actor_id: %s)\n   Action: %s\n   Tested ability: %s\n\n",
			i+1, action.ActorName, action.ActorID, action.ActionText, action.ActionType)
	}

	b.WriteString("Judge each action and return the JSON array.")
	return b.String()
}

// buildNarratorUserPrompt renders the resolved round for the narrator
func buildNarratorUserPrompt(input *NarrateInput) string {
	var b strings.Builder

	if input.WorldPrompt != "" {
		fmt.Fprintf(&b, "## World\n\n%s\n\n", input.WorldPrompt)
	}

	writeHistory(&b, input.History)

	b.WriteString("## Resolved actions\n\n")
	for i, res := range input.Results {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, res.ActorName)
		fmt.Fprintf(&b, "   - Action: %s\n", res.ActionText)
		fmt.Fprintf(&b, "   - Roll: %d %+d = %d vs DC %d\n",
			res.DieResult, res.Modifier, res.FinalValue, res.Difficulty)
		fmt.Fprintf(&b, "   - Outcome: %s\n", outcomeLabel(res.Outcome))
		if res.Reasoning != "" {
			fmt.Fprintf(&b, "   - Notes: %s\n", res.Reasoning)
		}
		b.WriteString("\n")
	}

	b.WriteString("Narrate the scene.")
	return b.String()
}

func writeHistory(b *strings.Builder, history []string) {
	if len(history) == 0 {
		return
	}
	recent := history
	if len(recent) > recentHistoryLimit {
		recent = recent[len(recent)-recentHistoryLimit:]
	}
	b.WriteString("## Recent story\n\n")
	b.WriteString(strings.Join(recent, "\n\n"))
	b.WriteString("\n\n")
}

func outcomeLabel(o game.Outcome) string {
	switch o {
	case game.OutcomeCriticalSuccess:
		return "CRITICAL SUCCESS"
	case game.OutcomeCriticalFailure:
		return "CRITICAL FAILURE"
	case game.OutcomeSuccess:
		return "success"
	default:
		return "failure"
	}
}

package ai

import (
	"encoding/json"
	"strings"

	"github.com/KirkDiggler/gm-api/internal/errors"
)

// verdictJSON matches the judge's expected response objects. Reasoning
// is accepted under either key the model tends to use.
type verdictJSON struct {
	ActorID             string `json:"actor_id"`
	Difficulty          int32  `json:"difficulty"`
	Reasoning           string `json:"reasoning"`
	DifficultyReasoning string `json:"difficulty_reasoning"`
}

// parseVerdicts extracts the JSON verdict array from a model response.
// Markdown code fences and surrounding prose are tolerated; anything
// without a recognizable array is an error.
func parseVerdicts(response string) (map[string]Verdict, error) {
	text := strings.TrimSpace(response)
	if strings.Contains(text, "```") {
		text = strings.ReplaceAll(text, "```json", "")
		text = strings.ReplaceAll(text, "```", "")
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end <= start {
		return nil, errors.Internalf("no JSON array in judge response: %.100s", text)
	}

	var raw []verdictJSON
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to parse judge response")
	}

	verdicts := make(map[string]Verdict, len(raw))
	for _, v := range raw {
		if v.ActorID == "" {
			continue
		}
		reasoning := v.Reasoning
		if reasoning == "" {
			reasoning = v.DifficultyReasoning
		}
		verdicts[v.ActorID] = Verdict{
			ActorID:    v.ActorID,
			Difficulty: v.Difficulty,
			Reasoning:  reasoning,
		}
	}

	return verdicts, nil
}

package narrator

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// StructuredStats is the machine-readable counterpart to Describe's prose
// summary: some narration prompts ask the model to close with a small JSON
// block (e.g. a sentiment/predictability score) that a caller wants to
// parse rather than display. LLM output is not guaranteed to be valid
// JSON even when asked for it, so the raw text is repaired before
// unmarshaling.
type StructuredStats struct {
	Predictability float64 `json:"predictability"`
	Summary        string  `json:"summary"`
}

// ParseStructuredStats extracts a StructuredStats value from raw narrator
// output, repairing common malformations (trailing commas, unbalanced
// braces, stray markdown fences) before decoding.
func ParseStructuredStats(raw string) (StructuredStats, error) {
	cleaned := removeMarkdownFences(removeThinkTags(raw))

	repaired, err := jsonrepair.RepairJSON(cleaned)
	if err != nil {
		return StructuredStats{}, fmt.Errorf("narrator: repair json: %w", err)
	}

	var stats StructuredStats
	if err := json.Unmarshal([]byte(repaired), &stats); err != nil {
		return StructuredStats{}, fmt.Errorf("narrator: unmarshal stats: %w", err)
	}

	return stats, nil
}

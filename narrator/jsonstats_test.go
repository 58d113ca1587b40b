package narrator_test

import (
	"testing"

	"github.com/brodiemilliken/LLMPress/narrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructuredStats_ValidJSON(t *testing.T) {
	raw := `{"predictability": 0.82, "summary": "mostly formulaic prose"}`

	stats, err := narrator.ParseStructuredStats(raw)
	require.NoError(t, err)
	assert.InDelta(t, 0.82, stats.Predictability, 0.001)
	assert.Equal(t, "mostly formulaic prose", stats.Summary)
}

func TestParseStructuredStats_RepairsTrailingComma(t *testing.T) {
	raw := "```json\n{\"predictability\": 0.5, \"summary\": \"average\",}\n```"

	stats, err := narrator.ParseStructuredStats(raw)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, stats.Predictability, 0.001)
	assert.Equal(t, "average", stats.Summary)
}

package narrator_test

import (
	"testing"

	"github.com/brodiemilliken/LLMPress/narrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Chat(messages []string) (string, error) {
	f.prompts = append(f.prompts, messages...)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestNarrator_Describe_StripsThinkTagsAndFences(t *testing.T) {
	llm := &fakeLLM{response: "<think>internal musing</think>```\nThis text was highly predictable.\n```"}
	n := narrator.New(llm)

	out, err := n.Describe(narrator.Stats{
		OriginalSize:   1000,
		CompressedSize: 250,
		LiteralCount:   10,
		RankCount:      90,
		BreakCount:     2,
	}, "Once upon a time")
	require.NoError(t, err)

	assert.NotContains(t, out, "<think>")
	assert.NotContains(t, out, "```")
	assert.Contains(t, out, "highly predictable")
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Original size: 1000 bytes")
}

func TestNarrator_Describe_PropagatesLLMError(t *testing.T) {
	llm := &fakeLLM{err: assertError{"boom"}}
	n := narrator.New(llm)

	_, err := n.Describe(narrator.Stats{}, "")
	require.Error(t, err)
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }

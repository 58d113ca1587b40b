// Package narrator turns a finished compression Result into a short prose
// summary by handing it to a chat-style LLM client, and provides the
// provider clients (Ollama, OpenAI, Anthropic, any OpenAI-compatible
// endpoint) that implement llmpress.LLM for that purpose.
package narrator

import (
	"regexp"
	"strings"
)

// rolesFor maps an alternating message history onto user/assistant roles,
// the convention every provider client below follows: narrator.go always
// sends a single user turn, but the role alternation is kept general so a
// future multi-turn narration (e.g. follow-up questions about a run) works
// without changing any client.
func rolesFor(messages []string) []string {
	roles := make([]string, len(messages))
	for i := range messages {
		if i%2 == 1 {
			roles[i] = "assistant"
		} else {
			roles[i] = "user"
		}
	}
	return roles
}

var thinkTagPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// removeThinkTags strips <think>...</think> spans some reasoning models
// prepend to their answer before the requested summary text.
func removeThinkTags(input string) string {
	return thinkTagPattern.ReplaceAllString(input, "")
}

// removeMarkdownFences drops lines that are themselves a fenced-code-block
// delimiter, so a narration response that wraps its JSON stats block in
// ```json fences can still be parsed as a single JSON document.
func removeMarkdownFences(input string) string {
	lines := strings.Split(input, "\n")
	var filtered []string
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "```") {
			filtered = append(filtered, line)
		}
	}
	return strings.Join(filtered, "\n")
}

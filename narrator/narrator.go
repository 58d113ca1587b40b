package narrator

import (
	"fmt"
	"strings"

	llmpress "github.com/brodiemilliken/LLMPress"
)

// Stats is the subset of a compression run a Narrator describes. It is
// deliberately decoupled from pipeline.Result so this package never imports
// pipeline (and, through it, the chunker, codec and rank packages).
type Stats struct {
	OriginalSize   int
	CompressedSize int
	LiteralCount   int
	RankCount      int
	BreakCount     int
}

// Narrator turns a finished run's Stats into a short, human-readable
// summary via an injected llmpress.LLM. It is purely additive: Compress and
// Decompress never depend on it, and a nil Narrator is never constructed by
// the CLI unless narration is requested.
type Narrator struct {
	LLM llmpress.LLM
}

// New builds a Narrator bound to client.
func New(client llmpress.LLM) Narrator {
	return Narrator{LLM: client}
}

// Describe asks the narrator's LLM for a short prose summary of a run,
// given its stats and the first part of the original text for context.
func (n Narrator) Describe(stats Stats, preview string) (string, error) {
	prompt := buildPrompt(stats, preview)

	raw, err := n.LLM.Chat([]string{prompt})
	if err != nil {
		return "", fmt.Errorf("narrator: chat: %w", err)
	}

	cleaned := removeMarkdownFences(removeThinkTags(raw))
	return strings.TrimSpace(cleaned), nil
}

func buildPrompt(s Stats, preview string) string {
	ratio := 0.0
	if s.OriginalSize > 0 {
		ratio = float64(s.CompressedSize) / float64(s.OriginalSize)
	}

	var b strings.Builder
	b.WriteString("A text document was compressed with a predictive, rank-based text compressor.\n")
	fmt.Fprintf(&b, "Original size: %d bytes\n", s.OriginalSize)
	fmt.Fprintf(&b, "Compressed size: %d bytes (ratio %.3f)\n", s.CompressedSize, ratio)
	fmt.Fprintf(&b, "Symbol breakdown: %d rank hits, %d literals, %d chunk breaks\n",
		s.RankCount, s.LiteralCount, s.BreakCount)
	if preview != "" {
		fmt.Fprintf(&b, "\nStart of the document:\n%s\n", preview)
	}
	b.WriteString("\nIn two or three sentences, describe how predictable this text was to the model and what that implies about the compression ratio achieved. Do not repeat the raw numbers back verbatim.")

	return b.String()
}

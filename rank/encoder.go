// Package rank implements the sliding-context rank-or-literal transform
// between a chunk's token sequence and its symbol sequence (§4.3, §4.4).
package rank

import (
	"context"
	"fmt"

	llmpress "github.com/brodiemilliken/LLMPress"
)

// Encoder turns chunk token sequences into a symbol sequence, querying a
// Predictor for each non-leading token's context.
type Encoder struct {
	Predictor llmpress.Predictor
	Window    int
}

// New builds an Encoder bound to predictor with the given window size.
func New(predictor llmpress.Predictor, window int) Encoder {
	return Encoder{Predictor: predictor, Window: window}
}

// Encode runs §4.3 over a single chunk's tokens: the leading token is always
// a Literal; each subsequent token becomes a Rank if it appears in the
// predictor's top-W list for its trailing context, otherwise a Literal.
func (e Encoder) Encode(ctx context.Context, tokens []uint32) ([]llmpress.Symbol, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	symbols := make([]llmpress.Symbol, 0, len(tokens))
	symbols = append(symbols, llmpress.NewLiteral(tokens[0]))

	for i := 1; i < len(tokens); i++ {
		start := i - e.Window
		if start < 0 {
			start = 0
		}
		window := tokens[start:i]

		ranks, err := e.Predictor.TopK(ctx, window, e.Window)
		if err != nil {
			return nil, fmt.Errorf("rank encode: top-k at token %d: %w", i, err)
		}

		if idx := indexOf(ranks, tokens[i]); idx >= 0 {
			symbols = append(symbols, llmpress.NewRank(idx))
		} else {
			symbols = append(symbols, llmpress.NewLiteral(tokens[i]))
		}
	}

	return symbols, nil
}

func indexOf(ids []uint32, target uint32) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}

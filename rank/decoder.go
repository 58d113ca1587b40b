package rank

import (
	"context"
	"fmt"

	llmpress "github.com/brodiemilliken/LLMPress"
)

// Decoder is the inverse of Encoder: it rebuilds a chunk's token sequence
// from its symbol sequence, re-querying the predictor with the same sliding
// context the encoder used.
type Decoder struct {
	Predictor llmpress.Predictor
	Window    int
}

// NewDecoder builds a Decoder bound to predictor with the given window
// size.
func NewDecoder(predictor llmpress.Predictor, window int) Decoder {
	return Decoder{Predictor: predictor, Window: window}
}

// Decode runs §4.4 over a single chunk's symbol run. The run's first symbol
// must be a Literal; a Rank there, or a Rank with r outside [0, Window), is
// a fatal decode error.
func (d Decoder) Decode(ctx context.Context, symbols []llmpress.Symbol) ([]uint32, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	if symbols[0].Kind != llmpress.SymbolLiteral {
		return nil, fmt.Errorf("rank decode: chunk run does not start with a literal: %w", llmpress.ErrDecoding)
	}

	tokens := make([]uint32, 0, len(symbols))
	tokens = append(tokens, symbols[0].Literal)

	for i := 1; i < len(symbols); i++ {
		s := symbols[i]
		switch s.Kind {
		case llmpress.SymbolLiteral:
			tokens = append(tokens, s.Literal)

		case llmpress.SymbolRank:
			if s.Rank < 0 || s.Rank >= d.Window {
				return nil, fmt.Errorf("rank decode: rank %d outside [0, %d) at token %d: %w", s.Rank, d.Window, i, llmpress.ErrDecoding)
			}

			start := len(tokens) - d.Window
			if start < 0 {
				start = 0
			}
			window := tokens[start:]

			ranks, err := d.Predictor.TopK(ctx, window, d.Window)
			if err != nil {
				return nil, fmt.Errorf("rank decode: top-k at token %d: %w", i, err)
			}
			if s.Rank >= len(ranks) {
				return nil, fmt.Errorf("rank decode: rank %d outside returned top-k of size %d at token %d: %w", s.Rank, len(ranks), i, llmpress.ErrDecoding)
			}
			tokens = append(tokens, ranks[s.Rank])

		default:
			return nil, fmt.Errorf("rank decode: unexpected %s symbol inside a chunk run: %w", s.Kind, llmpress.ErrDecoding)
		}
	}

	return tokens, nil
}

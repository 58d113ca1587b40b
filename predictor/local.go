package predictor

import (
	"context"
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// gpt4oVocabSize bounds the pseudo-random ids Local.TopK can return. It is
// smaller than the vocabulary of the GPT-4o (o200k_base) tokenizer that
// Tokenize uses, so real ids can lie above it; it only needs to keep
// Tokenize's real ids and TopK's synthetic ids in the same representable
// range for byte-format tests.
const gpt4oVocabSize = 100257

// Local is an in-process Predictor for tests and offline/dry-run
// compression: Tokenize and Detokenize use the real GPT-4o tiktoken
// tokenizer, but TopK is a deterministic pseudo-ranked list seeded by every
// token of the context window rather than a trained model's output. It exists so
// compress/decompress can round-trip without a live predictor service
// running; it is explicitly not meant for production compression ratios.
type Local struct {
	codec tokenizer.Codec
}

// NewLocal builds a Local predictor, loading the GPT-4o tokenizer.
func NewLocal() (Local, error) {
	codec, err := tokenizer.ForModel(tokenizer.GPT4o)
	if err != nil {
		return Local{}, fmt.Errorf("predictor local: load tokenizer: %w", err)
	}
	return Local{codec: codec}, nil
}

// Tokenize implements llmpress.Predictor.
func (l Local) Tokenize(_ context.Context, text string) ([]uint32, error) {
	ids, _, err := l.codec.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("predictor local: encode: %w", err)
	}
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out, nil
}

// Detokenize implements llmpress.Predictor.
func (l Local) Detokenize(_ context.Context, ids []uint32) (string, error) {
	uintIDs := make([]uint, len(ids))
	for i, id := range ids {
		uintIDs[i] = uint(id)
	}
	text, err := l.codec.Decode(uintIDs)
	if err != nil {
		return "", fmt.Errorf("predictor local: decode: %w", err)
	}
	return text, nil
}

// TopK implements llmpress.Predictor. It returns k distinct, deterministic
// ids derived from the whole context window: the same context and k
// always produce the same list, satisfying §4.2's determinism requirement,
// but the list carries no relation to actual token likelihood.
func (l Local) TopK(_ context.Context, ctxTokens []uint32, k int) ([]uint32, error) {
	if k <= 0 {
		return nil, nil
	}

	var seed uint32 = 0x9E3779B9
	for _, t := range ctxTokens {
		seed = seed*31 + t + 1
	}

	seen := make(map[uint32]bool, k)
	out := make([]uint32, 0, k)
	for len(out) < k {
		seed = seed*1103515245 + 12345
		id := seed % gpt4oVocabSize
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

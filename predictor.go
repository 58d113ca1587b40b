package llmpress

import "context"

// Predictor is the client contract to the remote language-model service
// (§4.2, §6.2). Tokenize and Detokenize must round-trip for any text made of
// tokenizable characters. TopK must return exactly k distinct ids in
// descending model probability, and must do so deterministically: the same
// (context, k) pair always yields the same list on a given deployment. The
// core assumes this and does not verify it: a violation makes decoding
// produce different tokens, and is reported as an error only when a rank
// falls beyond the length of the list TopK returned.
//
// Implementations are responsible for their own connection pooling and
// retries; callers see only these three operations.
type Predictor interface {
	Tokenize(ctx context.Context, text string) ([]uint32, error)
	Detokenize(ctx context.Context, ids []uint32) (string, error)
	TopK(ctx context.Context, context []uint32, k int) ([]uint32, error)
}

// LLM is a generic chat interface used by the optional narrator component.
// It never participates in compress/decompress correctness.
type LLM interface {
	Chat(messages []string) (string, error)
}

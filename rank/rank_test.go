package rank

import (
	"context"
	"reflect"
	"testing"

	llmpress "github.com/brodiemilliken/LLMPress"
)

// fakePredictor is a deterministic in-memory Predictor: TopK returns the
// next `k` ascending ids starting after the last context token, wrapping
// under a small vocabulary. This is enough to exercise both the Rank and
// Literal branches of the encoder/decoder without a real model.
type fakePredictor struct {
	vocab     uint32
	predicted map[uint32][]uint32 // context tail -> fixed top-k list
}

func (f fakePredictor) Tokenize(_ context.Context, text string) ([]uint32, error) {
	ids := make([]uint32, len(text))
	for i, r := range []byte(text) {
		ids[i] = uint32(r)
	}
	return ids, nil
}

func (f fakePredictor) Detokenize(_ context.Context, ids []uint32) (string, error) {
	b := make([]byte, len(ids))
	for i, id := range ids {
		b[i] = byte(id)
	}
	return string(b), nil
}

func (f fakePredictor) TopK(_ context.Context, ctxTokens []uint32, k int) ([]uint32, error) {
	var last uint32
	if len(ctxTokens) > 0 {
		last = ctxTokens[len(ctxTokens)-1]
	}
	if fixed, ok := f.predicted[last]; ok {
		return fixed, nil
	}
	out := make([]uint32, k)
	for i := 0; i < k; i++ {
		out[i] = (last + uint32(i) + 1) % f.vocab
	}
	return out, nil
}

func TestEncoderDecoder_RoundTrip(t *testing.T) {
	pred := fakePredictor{vocab: 50}
	tokens := []uint32{10, 11, 12, 13, 20, 21}

	enc := New(pred, 8)
	symbols, err := enc.Encode(context.Background(), tokens)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	dec := NewDecoder(pred, 8)
	got, err := dec.Decode(context.Background(), symbols)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if !reflect.DeepEqual(got, tokens) {
		t.Errorf("round-trip = %v, want %v", got, tokens)
	}
}

func TestEncode_LeadingTokenIsLiteral(t *testing.T) {
	pred := fakePredictor{vocab: 50}
	enc := New(pred, 8)

	symbols, err := enc.Encode(context.Background(), []uint32{7, 8})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if symbols[0].Kind != llmpress.SymbolLiteral {
		t.Fatalf("leading symbol kind = %v, want Literal", symbols[0].Kind)
	}
}

func TestDecode_RankAtChunkStartFails(t *testing.T) {
	pred := fakePredictor{vocab: 50}
	dec := NewDecoder(pred, 8)

	_, err := dec.Decode(context.Background(), []llmpress.Symbol{llmpress.NewRank(0)})
	if err == nil {
		t.Fatal("expected error when a chunk run starts with Rank")
	}
}

func TestDecode_RankOutOfWindowFails(t *testing.T) {
	pred := fakePredictor{vocab: 50}
	dec := NewDecoder(pred, 4)

	symbols := []llmpress.Symbol{llmpress.NewLiteral(1), llmpress.NewRank(9)}
	if _, err := dec.Decode(context.Background(), symbols); err == nil {
		t.Fatal("expected error for rank outside [0, window)")
	}
}

func TestEncode_EmptyTokensYieldsNoSymbols(t *testing.T) {
	pred := fakePredictor{vocab: 50}
	enc := New(pred, 8)

	symbols, err := enc.Encode(context.Background(), nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(symbols) != 0 {
		t.Fatalf("expected no symbols for an empty chunk, got %d", len(symbols))
	}
}

func TestSplitJoinRuns(t *testing.T) {
	stream := []llmpress.Symbol{
		llmpress.NewLiteral(1), llmpress.NewRank(0),
		llmpress.NewBreak(),
		llmpress.NewLiteral(2),
	}

	runs := SplitRuns(stream)
	if len(runs) != 2 {
		t.Fatalf("SplitRuns() len = %d, want 2", len(runs))
	}
	if runs[0][0].Kind != llmpress.SymbolLiteral || runs[1][0].Kind != llmpress.SymbolLiteral {
		t.Fatal("expected every run to begin with a Literal")
	}

	rejoined := JoinRuns(runs)
	if !reflect.DeepEqual(rejoined, stream) {
		t.Errorf("JoinRuns(SplitRuns(s)) = %+v, want %+v", rejoined, stream)
	}
}

func TestSplitRuns_EmptyStreamYieldsNoRuns(t *testing.T) {
	if runs := SplitRuns(nil); len(runs) != 0 {
		t.Fatalf("SplitRuns(nil) len = %d, want 0 (no phantom empty run)", len(runs))
	}
	if runs := SplitRuns([]llmpress.Symbol{}); len(runs) != 0 {
		t.Fatalf("SplitRuns([]) len = %d, want 0", len(runs))
	}
}

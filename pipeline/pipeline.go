// Package pipeline implements the compress/decompress facade of §4.7: it
// wires the chunker, predictor, rank encoder/decoder, and byte packer into
// the two public operations.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	llmpress "github.com/brodiemilliken/LLMPress"
	"github.com/brodiemilliken/LLMPress/chunker"
	"github.com/brodiemilliken/LLMPress/codec"
	"github.com/brodiemilliken/LLMPress/rank"
	"golang.org/x/sync/errgroup"
)

// Result is what Compress returns: the packed byte stream plus the
// statistics the original system logged per run (§12 of SPEC_FULL.md).
type Result struct {
	Bytes          []byte
	OriginalSize   int
	CompressedSize int

	LiteralCount int
	RankCount    int
	BreakCount   int
}

// Compress runs the full 1→2→3→4 pipeline of §2: chunk, tokenize, rank
// encode, byte pack. Independent chunks are tokenized and rank-encoded
// concurrently, bounded by cfg.Concurrency; within a chunk, predictor calls
// remain strictly sequential because each depends on the previous symbol's
// token (§5).
func Compress(ctx context.Context, cfg llmpress.Config, pred llmpress.Predictor, input string, obs llmpress.Observer) (Result, error) {
	cfg = cfg.WithDefaults()
	logger := slog.Default().With(slog.String("module", "pipeline"))

	chunks, err := chunker.New(cfg.MinChunk, cfg.MaxChunk, logger).Split(input)
	if err != nil {
		return Result{}, llmpress.NewError("compress", llmpress.KindChunking, err)
	}
	notify(obs, "chunk", len(chunks), len(chunks))

	runs := make([][]llmpress.Symbol, len(chunks))

	eg, groupCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, cfg.Concurrency)
	enc := rank.New(pred, cfg.Window)

	for i, chunkText := range chunks {
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			tokens, err := pred.Tokenize(groupCtx, chunkText)
			if err != nil {
				return llmpress.NewErrorAt("compress", llmpress.KindTokenization, i, err)
			}

			symbols, err := enc.Encode(groupCtx, tokens)
			if err != nil {
				return llmpress.NewErrorAt("compress", llmpress.KindTokenization, i, err)
			}

			runs[i] = symbols
			notify(obs, "encode", i+1, len(chunks))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Result{}, err
	}

	symbols := rank.JoinRuns(runs)

	packed, err := codec.Pack(cfg.Window, symbols)
	if err != nil {
		return Result{}, llmpress.NewError("compress", llmpress.KindEncoding, err)
	}
	notify(obs, "pack", 1, 1)

	result := Result{
		Bytes:          packed,
		OriginalSize:   len(input),
		CompressedSize: len(packed),
	}
	for _, s := range symbols {
		switch s.Kind {
		case llmpress.SymbolLiteral:
			result.LiteralCount++
		case llmpress.SymbolRank:
			result.RankCount++
		case llmpress.SymbolBreak:
			result.BreakCount++
		}
	}

	return result, nil
}

// Decompress runs the inverse 5→6→2→7 pipeline: byte unpack, rank decode,
// detokenize, join. It never requires the caller to supply the window
// size; it is recovered from the stream's leading literal.
func Decompress(ctx context.Context, pred llmpress.Predictor, data []byte, obs llmpress.Observer) (string, error) {
	w, symbols, err := codec.Unpack(data)
	if err != nil {
		return "", llmpress.NewError("decompress", llmpress.KindDecoding, err)
	}

	runs := rank.SplitRuns(symbols)
	notify(obs, "unpack", 1, 1)

	texts := make([]string, len(runs))

	eg, groupCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, llmpress.DefaultConcurrency)
	dec := rank.NewDecoder(pred, w)

	for i, run := range runs {
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			tokens, err := dec.Decode(groupCtx, run)
			if err != nil {
				return llmpress.NewErrorAt("decompress", llmpress.KindDecoding, i, err)
			}

			text, err := pred.Detokenize(groupCtx, tokens)
			if err != nil {
				return llmpress.NewErrorAt("decompress", llmpress.KindTokenization, i, err)
			}

			texts[i] = text
			notify(obs, "detokenize", i+1, len(runs))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", err
	}

	return strings.Join(texts, ""), nil
}

func notify(obs llmpress.Observer, stage string, index, total int) {
	if obs != nil {
		obs(stage, index, total)
	}
}

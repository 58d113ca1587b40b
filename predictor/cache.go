package predictor

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"

	llmpress "github.com/brodiemilliken/LLMPress"
	"github.com/cespare/xxhash"
	bolt "go.etcd.io/bbolt"
)

var (
	tokenizeBucket   = []byte("tokenize")
	detokenizeBucket = []byte("detokenize")
	topKBucket       = []byte("top_k")
)

// Cache wraps another Predictor with an on-disk memoization layer, keyed by
// a hash of the request. This is always safe: §4.2 requires TopK (and, by
// extension, Tokenize/Detokenize) to be deterministic for a given input, so
// memoizing an exact match can never return a stale answer. This is
// deliberately narrower than an approximate, similarity-based cache, which
// would violate that determinism requirement.
type Cache struct {
	db    *bolt.DB
	inner llmpress.Predictor

	logger *slog.Logger
}

// NewCache opens (or creates) a bbolt database at path and wraps inner.
func NewCache(path string, inner llmpress.Predictor, logger *slog.Logger) (Cache, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return Cache{}, fmt.Errorf("predictor cache: open bolt database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{tokenizeBucket, detokenizeBucket, topKBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return Cache{}, fmt.Errorf("predictor cache: create buckets: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return Cache{db: db, inner: inner, logger: logger.With(slog.String("module", "predictor.cache"))}, nil
}

// Close releases the underlying bbolt database.
func (c Cache) Close() error {
	return c.db.Close()
}

// Tokenize implements llmpress.Predictor.
func (c Cache) Tokenize(ctx context.Context, text string) ([]uint32, error) {
	key := hashKey(text)

	var cached []uint32
	if c.get(tokenizeBucket, key, &cached) {
		return cached, nil
	}

	ids, err := c.inner.Tokenize(ctx, text)
	if err != nil {
		return nil, err
	}
	c.put(tokenizeBucket, key, ids)
	return ids, nil
}

// Detokenize implements llmpress.Predictor.
func (c Cache) Detokenize(ctx context.Context, ids []uint32) (string, error) {
	key := hashKey(ids)

	var cached string
	if c.get(detokenizeBucket, key, &cached) {
		return cached, nil
	}

	text, err := c.inner.Detokenize(ctx, ids)
	if err != nil {
		return "", err
	}
	c.put(detokenizeBucket, key, text)
	return text, nil
}

type topKKey struct {
	Context []uint32 `json:"context"`
	K       int      `json:"k"`
}

// TopK implements llmpress.Predictor.
func (c Cache) TopK(ctx context.Context, ctxTokens []uint32, k int) ([]uint32, error) {
	key := hashKey(topKKey{Context: ctxTokens, K: k})

	var cached []uint32
	if c.get(topKBucket, key, &cached) {
		return cached, nil
	}

	ranks, err := c.inner.TopK(ctx, ctxTokens, k)
	if err != nil {
		return nil, err
	}
	c.put(topKBucket, key, ranks)
	return ranks, nil
}

func hashKey(v any) []byte {
	body, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	h := xxhash.Sum64(body)
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, h)
	return buf
}

func (c Cache) get(bucket, key []byte, out any) bool {
	var found bool
	_ = c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get(key)
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, out); err != nil {
			c.logger.Warn("discarding unreadable cache entry", slog.String("error", err.Error()))
			return nil
		}
		found = true
		return nil
	})
	return found
}

func (c Cache) put(bucket, key []byte, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(key, body)
	}); err != nil {
		c.logger.Warn("failed to persist cache entry", slog.String("error", err.Error()))
	}
}

package predictor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingPredictor wraps a Local predictor and counts calls, so tests can
// assert the cache actually avoids re-invoking the wrapped predictor.
type countingPredictor struct {
	Local
	topKCalls int
}

func (c *countingPredictor) TopK(ctx context.Context, ctxTokens []uint32, k int) ([]uint32, error) {
	c.topKCalls++
	return c.Local.TopK(ctx, ctxTokens, k)
}

func newTestCache(t *testing.T) (Cache, *countingPredictor) {
	t.Helper()

	local, err := NewLocal()
	require.NoError(t, err)
	inner := &countingPredictor{Local: local}

	cache, err := NewCache(filepath.Join(t.TempDir(), "predictor-cache.db"), inner, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	return cache, inner
}

func TestCache_TopK_MemoizesExactMatch(t *testing.T) {
	cache, inner := newTestCache(t)

	ctxTokens := []uint32{5, 6, 7}

	first, err := cache.TopK(context.Background(), ctxTokens, 16)
	require.NoError(t, err)
	second, err := cache.TopK(context.Background(), ctxTokens, 16)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.topKCalls, "second call with identical (context, k) should hit the cache")
}

func TestCache_TopK_DifferentKMissesCache(t *testing.T) {
	cache, inner := newTestCache(t)

	ctxTokens := []uint32{5, 6, 7}

	_, err := cache.TopK(context.Background(), ctxTokens, 16)
	require.NoError(t, err)
	_, err = cache.TopK(context.Background(), ctxTokens, 32)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.topKCalls)
}

func TestCache_Tokenize_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)

	text := "hello cache"
	ids, err := cache.Tokenize(context.Background(), text)
	require.NoError(t, err)

	got, err := cache.Detokenize(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

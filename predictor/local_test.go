package predictor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_TokenizeDetokenize_RoundTrip(t *testing.T) {
	local, err := NewLocal()
	require.NoError(t, err)

	text := "The quick brown fox jumps over the lazy dog."
	ids, err := local.Tokenize(context.Background(), text)
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	got, err := local.Detokenize(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestLocal_TopK_Deterministic(t *testing.T) {
	local, err := NewLocal()
	require.NoError(t, err)

	ctxTokens := []uint32{10, 20, 30}

	first, err := local.TopK(context.Background(), ctxTokens, 16)
	require.NoError(t, err)

	second, err := local.TopK(context.Background(), ctxTokens, 16)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 16)
}

func TestLocal_TopK_DistinctIDs(t *testing.T) {
	local, err := NewLocal()
	require.NoError(t, err)

	ranks, err := local.TopK(context.Background(), []uint32{1, 2, 3}, 32)
	require.NoError(t, err)

	seen := make(map[uint32]bool, len(ranks))
	for _, id := range ranks {
		assert.False(t, seen[id], "duplicate id %d in top-k list", id)
		seen[id] = true
	}
}

func TestLocal_TopK_DifferentContextDifferentList(t *testing.T) {
	local, err := NewLocal()
	require.NoError(t, err)

	a, err := local.TopK(context.Background(), []uint32{1}, 8)
	require.NoError(t, err)
	b, err := local.TopK(context.Background(), []uint32{2}, 8)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

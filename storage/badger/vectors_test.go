package badger

import (
	"context"
	"testing"

	"github.com/poiesic/faqmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVectors() []core.CachedVector {
	return []core.CachedVector{
		{Id: 1, Vector: []float32{0.1, 0.2, 0.3}},
		{Id: 2, Vector: []float32{0.4, 0.5, 0.6}},
		{Id: 3, Vector: []float32{0.7, 0.8, 0.9}},
	}
}

func TestVectorRepository_SaveAndLoad(t *testing.T) {
	store, err := NewMemoryVectorStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	const checksum = uint64(12345)

	require.NoError(t, store.SaveVectors(ctx, checksum, testVectors()))

	loaded, err := store.LoadVectors(ctx, checksum)
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	// BigEndian keys: iteration returns entry-id order.
	assert.Equal(t, core.ID(1), loaded[0].Id)
	assert.Equal(t, core.ID(2), loaded[1].Id)
	assert.Equal(t, core.ID(3), loaded[2].Id)
	assert.Equal(t, []float32{0.4, 0.5, 0.6}, loaded[1].Vector)
}

func TestVectorRepository_StaleChecksum(t *testing.T) {
	store, err := NewMemoryVectorStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SaveVectors(ctx, 111, testVectors()))

	// Corpus changed: stored tag no longer matches, nothing is returned.
	loaded, err := store.LoadVectors(ctx, 222)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestVectorRepository_EmptyStore(t *testing.T) {
	store, err := NewMemoryVectorStore()
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.LoadVectors(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestVectorRepository_SaveReplacesPrevious(t *testing.T) {
	store, err := NewMemoryVectorStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SaveVectors(ctx, 111, testVectors()))

	replacement := []core.CachedVector{{Id: 9, Vector: []float32{1}}}
	require.NoError(t, store.SaveVectors(ctx, 222, replacement))

	loaded, err := store.LoadVectors(ctx, 222)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, core.ID(9), loaded[0].Id)
}

func TestVectorRepository_Invalidate(t *testing.T) {
	store, err := NewMemoryVectorStore()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SaveVectors(ctx, 111, testVectors()))
	require.NoError(t, store.Invalidate(ctx))

	loaded, err := store.LoadVectors(ctx, 111)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

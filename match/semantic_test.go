package match

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/faqmatch/ai/mock"
	"github.com/poiesic/faqmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		v := []float32{0.5, 0.5, 0.5}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	})

	t.Run("zero norm never divides by zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
		assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 1}, []float32{0, 0}))
		assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 0}))
	})
}

func TestNewSemanticScorer(t *testing.T) {
	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSemanticScorer(nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("valid", func(t *testing.T) {
		scorer, err := NewSemanticScorer(mock.NewEmbedder())
		require.NoError(t, err)
		assert.NotNil(t, scorer)
	})
}

func TestSemanticScorer_PrepareAndScore(t *testing.T) {
	embedder := mock.NewEmbedder()
	scorer, err := NewSemanticScorer(embedder)
	require.NoError(t, err)

	entries := testEntries()
	require.NoError(t, scorer.Precompute(context.Background(), entries))

	prepared, err := scorer.Prepare(context.Background(), entries[0].Question)
	require.NoError(t, err)

	t.Run("identical text scores one", func(t *testing.T) {
		score, err := prepared.Score(context.Background(), "", entries[0])
		require.NoError(t, err)
		assert.InDelta(t, 1.0, score, 1e-5)
	})

	t.Run("scores full corpus without the index", func(t *testing.T) {
		ranked, err := RankAll(context.Background(), entries, prepared, entries[0].Question, DefaultTopK)
		require.NoError(t, err)
		require.Len(t, ranked, 3)
		assert.Equal(t, entries[0].Id, ranked[0].Entry.Id)
	})
}

func TestSemanticScorer_Precompute(t *testing.T) {
	embedder := mock.NewEmbedder()
	scorer, err := NewSemanticScorer(embedder, WithPoolSize(2))
	require.NoError(t, err)

	entries := testEntries()
	require.NoError(t, scorer.Precompute(context.Background(), entries))

	for _, entry := range entries {
		assert.True(t, scorer.Cached(entry.Id), "entry %d not cached", entry.Id)
	}

	t.Run("cached entries are skipped", func(t *testing.T) {
		before := embedder.CallCount()
		require.NoError(t, scorer.Precompute(context.Background(), entries))
		assert.Equal(t, before, embedder.CallCount())
	})

	t.Run("propagates provider failure", func(t *testing.T) {
		failing := mock.NewEmbedder()
		failing.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
			return nil, errors.New("provider down")
		}
		fresh, err := NewSemanticScorer(failing)
		require.NoError(t, err)
		assert.Error(t, fresh.Precompute(context.Background(), entries))
	})
}

func TestSemanticScorer_ExtendAndInvalidate(t *testing.T) {
	scorer, err := NewSemanticScorer(mock.NewEmbedder())
	require.NoError(t, err)

	entry := &core.Entry{Id: 7, Question: "Can I pay with a credit card?", Answer: "Yes.", Category: "billing"}
	require.NoError(t, scorer.Extend(context.Background(), entry))
	assert.True(t, scorer.Cached(entry.Id))

	scorer.Invalidate()
	assert.False(t, scorer.Cached(entry.Id))
}

func TestSemanticScorer_SeedAndSnapshot(t *testing.T) {
	scorer, err := NewSemanticScorer(mock.NewEmbedder())
	require.NoError(t, err)

	seeded := []core.CachedVector{
		{Id: 2, Vector: []float32{0, 1}},
		{Id: 1, Vector: []float32{1, 0}},
	}
	scorer.Seed(seeded)

	snapshot := scorer.Snapshot()
	require.Len(t, snapshot, 2)
	// Snapshot is ordered by entry id regardless of seed order.
	assert.Equal(t, core.ID(1), snapshot[0].Id)
	assert.Equal(t, core.ID(2), snapshot[1].Id)
}

func TestSemanticScorer_ScoreEncodesMissingEntryOnDemand(t *testing.T) {
	embedder := mock.NewEmbedder()
	scorer, err := NewSemanticScorer(embedder)
	require.NoError(t, err)

	prepared, err := scorer.Prepare(context.Background(), "credit card")
	require.NoError(t, err)

	entry := &core.Entry{Id: 9, Question: "Can I pay with a credit card?", Answer: "Yes.", Category: "billing"}
	require.False(t, scorer.Cached(entry.Id))

	_, err = prepared.Score(context.Background(), "", entry)
	require.NoError(t, err)
	assert.True(t, scorer.Cached(entry.Id))
}

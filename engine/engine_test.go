package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/faqmatch/ai/mock"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/session"
	storagebadger "github.com/poiesic/faqmatch/storage/badger"
)

func singleEntryCorpus() []core.Entry {
	return []core.Entry{
		{Id: 1, Question: "How do I reset my password?",
			Answer: "Click Forgot Password.", Category: "account"},
	}
}

func shopCorpus() []core.Entry {
	return []core.Entry{
		{Id: 1, Question: "What are your opening hours?",
			Answer: "We are open 9 to 5.", Category: core.DefaultCategory},
		{Id: 2, Question: "How long does shipping take?",
			Answer: "Three to five days.", Category: "shipping"},
	}
}

// axisEmbedder returns an embedder whose vectors are fixed per text, so
// cosine scores in tests are exact.
func axisEmbedder(vectors map[string][]float32) *mock.Embedder {
	lookup := func(text string) []float32 {
		if v, ok := vectors[text]; ok {
			return v
		}
		return []float32{0, 0, 1}
	}
	m := mock.NewEmbedder()
	m.Dim = 3
	m.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		return lookup(text), nil
	}
	m.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = lookup(text)
		}
		return out, nil
	}
	return m
}

func TestResolve_LexicalDirectHit(t *testing.T) {
	eng, err := NewEngine(singleEntryCorpus())
	require.NoError(t, err)

	resp, err := eng.Resolve(t.Context(), "reset password")
	require.NoError(t, err)

	assert.False(t, resp.Fallback)
	assert.Equal(t, core.ID(1), resp.Match.Entry.Id)
	assert.Equal(t, core.MethodLexical, resp.Match.Method)
	assert.Greater(t, resp.Match.Score, DefaultThreshold)
}

func TestResolve_NoOverlapFallsBack(t *testing.T) {
	eng, err := NewEngine(singleEntryCorpus())
	require.NoError(t, err)

	resp, err := eng.Resolve(t.Context(), "banana")
	require.NoError(t, err)

	assert.True(t, resp.Fallback)
	assert.Empty(t, resp.Alternatives)
	assert.Less(t, resp.Match.Score, DefaultThreshold)
}

func TestResolve_KeywordOverlapRanksFirst(t *testing.T) {
	corpus := []core.Entry{
		{Id: 1, Question: "What are your hours?",
			Answer: "We are open 9 to 5.", Category: core.DefaultCategory},
		{Id: 2, Question: "How long does shipping take?",
			Answer: "Three to five days.", Category: "shipping"},
	}
	eng, err := NewEngine(corpus)
	require.NoError(t, err)

	resp, err := eng.Resolve(t.Context(), "what time do you open")
	require.NoError(t, err)

	assert.Equal(t, core.ID(1), resp.Match.Entry.Id)
}

func TestResolve_EmptyQuery(t *testing.T) {
	log, err := session.NewLog()
	require.NoError(t, err)
	eng, err := NewEngine(singleEntryCorpus(), WithSessionLog(log))
	require.NoError(t, err)

	_, err = eng.Resolve(t.Context(), "   !!!  ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Zero(t, log.Len())
}

func TestResolve_EmptyCorpus(t *testing.T) {
	eng, err := NewEngine(nil)
	require.NoError(t, err)

	_, err = eng.Resolve(t.Context(), "anything")
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestResolve_SemanticWinsArbitration(t *testing.T) {
	corpus := shopCorpus()
	// The query shares no characters-in-order advantage with entry 2, but
	// its embedding is aligned with entry 2's axis.
	embedder := axisEmbedder(map[string][]float32{
		"when will my parcel arrive":   {1, 0, 0},
		"How long does shipping take?": {1, 0, 0},
		"What are your opening hours?": {0, 1, 0},
	})

	eng, err := NewEngine(corpus, WithEmbedder(embedder))
	require.NoError(t, err)
	require.NoError(t, eng.Warm(t.Context()))

	resp, err := eng.Resolve(t.Context(), "when will my parcel arrive")
	require.NoError(t, err)

	assert.Equal(t, core.MethodSemantic, resp.Match.Method)
	assert.Equal(t, core.ID(2), resp.Match.Entry.Id)
	// Raw cosine score, not the weighted selection value.
	assert.InDelta(t, 1.0, resp.Match.Score, 1e-6)
}

func TestResolve_SemanticErrorDegradesToLexical(t *testing.T) {
	embedder := mock.NewEmbedder()
	embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return nil, errors.New("provider down")
	}

	eng, err := NewEngine(singleEntryCorpus(), WithEmbedder(embedder))
	require.NoError(t, err)

	resp, err := eng.Resolve(t.Context(), "reset password")
	require.NoError(t, err)

	assert.Equal(t, core.MethodLexical, resp.Match.Method)
	assert.False(t, resp.Fallback)
}

func TestResolve_RecordsInteraction(t *testing.T) {
	log, err := session.NewLog()
	require.NoError(t, err)
	eng, err := NewEngine(singleEntryCorpus(), WithSessionLog(log))
	require.NoError(t, err)

	_, err = eng.Resolve(t.Context(), "reset password")
	require.NoError(t, err)
	_, err = eng.Resolve(t.Context(), "banana")
	require.NoError(t, err)

	records := log.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Click Forgot Password.", records[0].Answer)
	assert.Equal(t, "account", records[0].Category)
	assert.Equal(t, FallbackAnswer, records[1].Answer)
}

func TestAddEntry(t *testing.T) {
	eng, err := NewEngine(singleEntryCorpus())
	require.NoError(t, err)

	entry, err := eng.AddEntry(t.Context(),
		"Do you offer refunds?", "Yes, within 30 days.", "billing")
	require.NoError(t, err)
	assert.Equal(t, core.ID(2), entry.Id)
	assert.Equal(t, 2, eng.Len())

	resp, err := eng.Resolve(t.Context(), "refunds")
	require.NoError(t, err)
	assert.Equal(t, core.ID(2), resp.Match.Entry.Id)
}

func TestAddEntry_Invalid(t *testing.T) {
	eng, err := NewEngine(singleEntryCorpus())
	require.NoError(t, err)

	_, err = eng.AddEntry(t.Context(), "", "answer", "")
	assert.Error(t, err)
	assert.Equal(t, 1, eng.Len())
}

func TestReload(t *testing.T) {
	eng, err := NewEngine(singleEntryCorpus())
	require.NoError(t, err)

	eng.Reload(shopCorpus())

	assert.Equal(t, 2, eng.Len())
	resp, err := eng.Resolve(t.Context(), "shipping")
	require.NoError(t, err)
	assert.Equal(t, core.ID(2), resp.Match.Entry.Id)
}

func TestWarm_ReusesPersistedVectors(t *testing.T) {
	store, err := storagebadger.NewMemoryVectorStore()
	require.NoError(t, err)
	defer store.Close()

	corpus := shopCorpus()

	first, err := NewEngine(corpus,
		WithEmbedder(mock.NewEmbedder()), WithVectorStore(store))
	require.NoError(t, err)
	require.NoError(t, first.Warm(t.Context()))

	embedder := mock.NewEmbedder()
	second, err := NewEngine(corpus,
		WithEmbedder(embedder), WithVectorStore(store))
	require.NoError(t, err)
	require.NoError(t, second.Warm(t.Context()))

	// The persisted cache satisfied the warm; no embedding calls made.
	assert.Zero(t, embedder.CallCount())
}

func TestWarm_StaleCacheReembeds(t *testing.T) {
	store, err := storagebadger.NewMemoryVectorStore()
	require.NoError(t, err)
	defer store.Close()

	first, err := NewEngine(shopCorpus(),
		WithEmbedder(mock.NewEmbedder()), WithVectorStore(store))
	require.NoError(t, err)
	require.NoError(t, first.Warm(t.Context()))

	changed := shopCorpus()
	changed[0].Question = "What are your weekend hours?"

	embedder := mock.NewEmbedder()
	second, err := NewEngine(changed,
		WithEmbedder(embedder), WithVectorStore(store))
	require.NoError(t, err)
	require.NoError(t, second.Warm(t.Context()))

	assert.Positive(t, embedder.CallCount())
}

func TestHistoryAndAnalytics(t *testing.T) {
	log, err := session.NewLog()
	require.NoError(t, err)
	eng, err := NewEngine(singleEntryCorpus(), WithSessionLog(log))
	require.NoError(t, err)

	_, err = eng.Resolve(t.Context(), "reset password")
	require.NoError(t, err)

	require.Len(t, eng.History(), 1)

	analytics := eng.Analytics()
	require.NotNil(t, analytics)
	assert.Equal(t, 1, analytics.TotalInteractions)

	eng.ClearHistory()
	assert.Empty(t, eng.History())
}

func TestHybridSelection(t *testing.T) {
	lexOnly, err := NewEngine(singleEntryCorpus())
	require.NoError(t, err)
	assert.False(t, lexOnly.Hybrid())

	hybrid, err := NewEngine(singleEntryCorpus(), WithEmbedder(mock.NewEmbedder()))
	require.NoError(t, err)
	assert.True(t, hybrid.Hybrid())
}

type recordingMonitor struct {
	started  string
	lexical  int
	semantic int
	finished *Response
}

func (m *recordingMonitor) Start(query string)                            { m.started = query }
func (m *recordingMonitor) AfterLexicalRanking(c []core.ScoredCandidate)  { m.lexical = len(c) }
func (m *recordingMonitor) AfterSemanticRanking(c []core.ScoredCandidate) { m.semantic = len(c) }
func (m *recordingMonitor) SemanticUnavailable(error)                     {}
func (m *recordingMonitor) Finish(resp *Response)                         { m.finished = resp }

func TestResolve_MonitorCallbacks(t *testing.T) {
	monitor := &recordingMonitor{}
	eng, err := NewEngine(shopCorpus(), WithMonitor(monitor))
	require.NoError(t, err)

	resp, err := eng.Resolve(t.Context(), "shipping time")
	require.NoError(t, err)

	assert.Equal(t, "shipping time", monitor.started)
	assert.Positive(t, monitor.lexical)
	assert.Zero(t, monitor.semantic)
	assert.Same(t, resp, monitor.finished)
}

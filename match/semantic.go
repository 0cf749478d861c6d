package match

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/faqmatch/ai"
	"github.com/poiesic/faqmatch/core"
)

// precomputeBatchSize is the number of questions embedded per provider call
// during cache warmup.
const precomputeBatchSize = 32

// SemanticScorer ranks entries by cosine similarity between embedding
// vectors. It never computes embeddings itself: encoding is delegated to an
// ai.Embedder, and entry vectors are cached keyed by entry id. The cache is
// extended on corpus additions and invalidated on corpus replacement.
type SemanticScorer struct {
	embedder ai.Embedder
	logger   *slog.Logger
	poolSize int

	mu      sync.RWMutex
	vectors map[core.ID][]float32
}

// SemanticOption configures a SemanticScorer.
type SemanticOption func(*SemanticScorer)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) SemanticOption {
	return func(s *SemanticScorer) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithPoolSize sets the worker pool size used by Precompute.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) SemanticOption {
	return func(s *SemanticScorer) {
		if size < 1 {
			size = 1
		}
		s.poolSize = size
	}
}

// NewSemanticScorer creates a new semantic scorer backed by the given
// embedding provider.
func NewSemanticScorer(embedder ai.Embedder, opts ...SemanticOption) (*SemanticScorer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	s := &SemanticScorer{
		embedder: embedder,
		logger:   slog.Default(),
		poolSize: poolSize,
		vectors:  make(map[core.ID][]float32),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Prepare encodes the query once and returns a Scorer bound to the
// resulting vector. Callers pass the returned scorer to Rank or RankAll so
// the provider is hit once per query, not once per candidate.
func (s *SemanticScorer) Prepare(ctx context.Context, query string) (Scorer, error) {
	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	return &preparedQuery{scorer: s, vector: NormalizeVector(vector)}, nil
}

// Precompute embeds the questions of entries not yet in the cache, using a
// worker pool for batched provider calls. Entries already cached (for
// example seeded from persistent storage) are skipped.
func (s *SemanticScorer) Precompute(ctx context.Context, entries []*core.Entry) error {
	s.mu.RLock()
	pending := make([]*core.Entry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := s.vectors[entry.Id]; !ok {
			pending = append(pending, entry)
		}
	}
	s.mu.RUnlock()

	if len(pending) == 0 {
		return nil
	}

	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	recordErr := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	for start := 0; start < len(pending); start += precomputeBatchSize {
		end := start + precomputeBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		wg.Add(1)
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := s.embedBatch(ctx, batch); err != nil {
				recordErr(err)
			}
		}); submitErr != nil {
			wg.Done()
			recordErr(submitErr)
		}
	}

	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("precompute embeddings: %w", firstErr)
	}

	s.logger.Debug("embedding cache warmed", "entries", len(pending))
	return nil
}

// Extend encodes a single entry's question and adds it to the cache.
// Used for dynamic corpus additions.
func (s *SemanticScorer) Extend(ctx context.Context, entry *core.Entry) error {
	vector, err := s.embedder.EmbedText(ctx, entry.Question)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.vectors[entry.Id] = NormalizeVector(vector)
	s.mu.Unlock()
	return nil
}

// Seed loads previously persisted vectors into the cache.
func (s *SemanticScorer) Seed(vectors []core.CachedVector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		s.vectors[v.Id] = v.Vector
	}
}

// Snapshot returns the cached vectors sorted by entry id, for persistence.
func (s *SemanticScorer) Snapshot() []core.CachedVector {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]core.CachedVector, 0, len(s.vectors))
	for id, vector := range s.vectors {
		snapshot = append(snapshot, core.CachedVector{Id: id, Vector: vector})
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Id < snapshot[j].Id
	})
	return snapshot
}

// Invalidate discards every cached vector. Called when the corpus content
// changes out from under the cache.
func (s *SemanticScorer) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = make(map[core.ID][]float32)
}

// Cached reports whether a vector is cached for the given entry id.
func (s *SemanticScorer) Cached(id core.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.vectors[id]
	return ok
}

func (s *SemanticScorer) embedBatch(ctx context.Context, batch []*core.Entry) error {
	texts := make([]string, len(batch))
	for i, entry := range batch {
		texts[i] = entry.Question
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
	}

	s.mu.Lock()
	for i, entry := range batch {
		s.vectors[entry.Id] = NormalizeVector(vectors[i])
	}
	s.mu.Unlock()
	return nil
}

// entryVector returns the cached vector for an entry, encoding on demand
// when the cache has no vector yet.
func (s *SemanticScorer) entryVector(ctx context.Context, entry *core.Entry) ([]float32, error) {
	s.mu.RLock()
	vector, ok := s.vectors[entry.Id]
	s.mu.RUnlock()
	if ok {
		return vector, nil
	}

	if err := s.Extend(ctx, entry); err != nil {
		return nil, err
	}

	s.mu.RLock()
	vector = s.vectors[entry.Id]
	s.mu.RUnlock()
	return vector, nil
}

// preparedQuery is a Scorer bound to a single encoded query vector.
type preparedQuery struct {
	scorer *SemanticScorer
	vector []float32
}

var _ Scorer = (*preparedQuery)(nil)

// Score returns the cosine similarity between the prepared query vector and
// the entry's cached embedding. The query argument is ignored; the vector
// was fixed by Prepare.
func (q *preparedQuery) Score(ctx context.Context, _ string, entry *core.Entry) (float64, error) {
	entryVector, err := q.scorer.entryVector(ctx, entry)
	if err != nil {
		return 0, err
	}
	return CosineSimilarity(q.vector, entryVector), nil
}

package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/faqmatch/ai"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/match"
	"github.com/poiesic/faqmatch/session"
	"github.com/poiesic/faqmatch/storage"
)

// FallbackAnswer is the response text used when no candidate clears the
// confidence threshold.
const FallbackAnswer = "I'm sorry, I couldn't find a confident answer to that. Could you rephrase the question?"

// Engine resolves queries against an in-memory FAQ corpus using lexical
// and, optionally, semantic ranking.
type Engine struct {
	mu       sync.RWMutex
	entries  []*core.Entry
	index    *match.KeywordIndex
	lexical  *match.LexicalScorer
	semantic *match.SemanticScorer
	store    storage.VectorStore
	log      *session.Log

	embedder        ai.Embedder
	monitor         ResolveMonitor
	logger          *slog.Logger
	threshold       float64
	lexicalWeight   float64
	semanticWeight  float64
	topK            int
	semanticTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine) error

// WithEmbedder enables semantic ranking. Without it the engine resolves on
// lexical scores alone.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(e *Engine) error {
		e.embedder = embedder
		return nil
	}
}

// WithVectorStore attaches a persistent embedding cache, used by Warm to
// skip re-embedding an unchanged corpus.
func WithVectorStore(store storage.VectorStore) Option {
	return func(e *Engine) error {
		e.store = store
		return nil
	}
}

// WithSessionLog attaches an interaction log. Every resolved query is
// appended to it, fallbacks included.
func WithSessionLog(log *session.Log) Option {
	return func(e *Engine) error {
		e.log = log
		return nil
	}
}

// WithThreshold overrides the confidence threshold.
// Default is DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) error {
		e.threshold = threshold
		return nil
	}
}

// WithWeights overrides the arbitration weights.
func WithWeights(lexical, semantic float64) Option {
	return func(e *Engine) error {
		e.lexicalWeight = lexical
		e.semanticWeight = semantic
		return nil
	}
}

// WithSemanticTimeout bounds each semantic ranking. When the provider does
// not answer in time the lexical ranking decides alone.
func WithSemanticTimeout(timeout time.Duration) Option {
	return func(e *Engine) error {
		e.semanticTimeout = timeout
		return nil
	}
}

// WithMonitor sets a resolve monitor receiving callbacks at each stage.
func WithMonitor(monitor ResolveMonitor) Option {
	return func(e *Engine) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithTopK overrides how many candidates each ranking keeps.
// Default is match.DefaultTopK.
func WithTopK(topK int) Option {
	return func(e *Engine) error {
		if topK > 0 {
			e.topK = topK
		}
		return nil
	}
}

// NewEngine creates an engine over the given entries. The corpus may be
// empty; Resolve reports ErrEmptyCorpus until entries arrive via AddEntry
// or Reload.
func NewEngine(entries []core.Entry, opts ...Option) (*Engine, error) {
	e := &Engine{
		lexical:        match.NewLexicalScorer(),
		monitor:        &noopMonitor{},
		logger:         slog.Default(),
		threshold:      DefaultThreshold,
		lexicalWeight:  DefaultLexicalWeight,
		semanticWeight: DefaultSemanticWeight,
		topK:           match.DefaultTopK,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	e.entries = pointers(entries)
	e.index = match.BuildIndex(e.entries)

	if e.embedder != nil {
		semantic, err := match.NewSemanticScorer(e.embedder,
			match.WithLogger(e.logger))
		if err != nil {
			return nil, err
		}
		e.semantic = semantic
	}

	return e, nil
}

// Hybrid reports whether semantic ranking is enabled.
func (e *Engine) Hybrid() bool {
	return e.semantic != nil
}

// Len returns the corpus size.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entries)
}

// Entries returns a snapshot of the corpus.
func (e *Engine) Entries() []core.Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]core.Entry, len(e.entries))
	for i, entry := range e.entries {
		out[i] = *entry
	}
	return out
}

// Warm populates the semantic vector cache for the whole corpus. With a
// vector store attached it first tries the persisted cache; a checksum
// mismatch against the current corpus discards it and re-embeds. No-op for
// lexical-only engines.
func (e *Engine) Warm(ctx context.Context) error {
	if e.semantic == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.entries) == 0 {
		return nil
	}

	checksum := core.CorpusChecksum(e.entries)

	if e.store != nil {
		vectors, err := e.store.LoadVectors(ctx, checksum)
		if err != nil {
			return err
		}
		if vectors != nil {
			e.semantic.Seed(vectors)
			e.logger.Info("embedding cache restored",
				"vectors", len(vectors), "checksum", checksum)
			return nil
		}
	}

	start := time.Now()
	if err := e.semantic.Precompute(ctx, e.entries); err != nil {
		return err
	}
	e.logger.Info("corpus embedded",
		"entries", len(e.entries), "elapsed", time.Since(start))

	if e.store != nil {
		if err := e.store.SaveVectors(ctx, checksum, e.semantic.Snapshot()); err != nil {
			return err
		}
	}
	return nil
}

// Resolve answers a single query. The query must normalize to something
// non-empty and the corpus must be non-empty; those failures return
// sentinel errors and append nothing to the session log.
func (e *Engine) Resolve(ctx context.Context, query string) (*Response, error) {
	if match.Normalize(query) == "" {
		return nil, ErrEmptyQuery
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.entries) == 0 {
		return nil, ErrEmptyCorpus
	}

	e.monitor.Start(query)

	positions := e.index.Candidates(query)
	lexical, err := match.Rank(ctx, e.entries, positions, e.lexical, query, e.topK)
	if err != nil {
		return nil, err
	}
	e.monitor.AfterLexicalRanking(lexical)

	semantic := e.rankSemantic(ctx, query)

	v := arbitrate(lexical, semantic, e.lexicalWeight, e.semanticWeight)
	resp := buildResponse(v, e.threshold)
	e.monitor.Finish(resp)

	if e.log != nil {
		answer := resp.Match.Entry.Answer
		if resp.Fallback {
			answer = FallbackAnswer
		}
		e.log.Record(query, answer, resp.Match.Score, resp.Match.Method,
			resp.Match.Entry.Category)
	}
	return resp, nil
}

// rankSemantic runs the semantic ranking, or returns nil when it is
// disabled or the provider fails. Provider errors degrade the resolve to
// lexical-only rather than failing it.
func (e *Engine) rankSemantic(ctx context.Context, query string) []core.ScoredCandidate {
	if e.semantic == nil {
		return nil
	}

	if e.semanticTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.semanticTimeout)
		defer cancel()
	}

	prepared, err := e.semantic.Prepare(ctx, query)
	if err != nil {
		e.logger.Warn("semantic ranking unavailable, using lexical only",
			"query", query, "err", err)
		e.monitor.SemanticUnavailable(err)
		return nil
	}

	candidates, err := match.RankAll(ctx, e.entries, prepared, query, e.topK)
	if err != nil {
		e.logger.Warn("semantic ranking unavailable, using lexical only",
			"query", query, "err", err)
		e.monitor.SemanticUnavailable(err)
		return nil
	}

	e.monitor.AfterSemanticRanking(candidates)
	return candidates
}

// AddEntry validates and appends one entry, updating the keyword index
// incrementally and embedding only the new entry. With a vector store
// attached, the persisted cache is rewritten under the new corpus checksum.
func (e *Engine) AddEntry(ctx context.Context, question, answer, category string) (core.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, err := core.NewEntry(core.ID(len(e.entries)+1), question, answer, category)
	if err != nil {
		return core.Entry{}, err
	}

	pos := len(e.entries)
	e.entries = append(e.entries, entry)
	e.index.Update(pos, entry)

	if e.semantic != nil {
		if err := e.semantic.Extend(ctx, entry); err != nil {
			// The vector is computed on demand at the next resolve.
			e.logger.Warn("embedding new entry failed",
				"id", entry.Id, "err", err)
		} else if e.store != nil {
			checksum := core.CorpusChecksum(e.entries)
			if err := e.store.SaveVectors(ctx, checksum, e.semantic.Snapshot()); err != nil {
				e.logger.Warn("persisting embedding cache failed", "err", err)
			}
		}
	}

	e.logger.Info("entry added", "id", entry.Id, "category", entry.Category)
	return *entry, nil
}

// Reload swaps the corpus, rebuilds the keyword index and discards every
// cached vector. Callers that want the semantic cache hot again run Warm
// afterwards.
func (e *Engine) Reload(entries []core.Entry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.entries = pointers(entries)
	e.index = match.BuildIndex(e.entries)
	if e.semantic != nil {
		e.semantic.Invalidate()
	}
	e.logger.Info("corpus reloaded", "entries", len(e.entries))
}

// History returns the session log records, oldest first. Nil without an
// attached log.
func (e *Engine) History() []core.InteractionRecord {
	if e.log == nil {
		return nil
	}
	return e.log.Records()
}

// ClearHistory discards the in-memory session records.
func (e *Engine) ClearHistory() {
	if e.log != nil {
		e.log.Clear()
	}
}

// Analytics aggregates the session log. Nil without an attached log.
func (e *Engine) Analytics() *session.Analytics {
	if e.log == nil {
		return nil
	}
	return e.log.Analytics(e.threshold)
}

func pointers(entries []core.Entry) []*core.Entry {
	out := make([]*core.Entry, len(entries))
	for i := range entries {
		out[i] = &entries[i]
	}
	return out
}

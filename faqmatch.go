// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package faqmatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/faqmatch/ai"
	"github.com/poiesic/faqmatch/ai/openai"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/corpus"
	"github.com/poiesic/faqmatch/engine"
	"github.com/poiesic/faqmatch/session"
	"github.com/poiesic/faqmatch/storage"
	"github.com/poiesic/faqmatch/storage/badger"
)

// Bot is the assembled FAQ assistant: a loaded corpus, the resolution
// engine, the session log and, when configured, a persistent embedding
// cache.
type Bot struct {
	loader *corpus.Loader
	store  storage.VectorStore
	log    *session.Log
	engine *engine.Engine
	logger *slog.Logger
}

// BotOption configures a Bot.
type BotOption func(*botOptions)

type botOptions struct {
	aiConfig        *ai.Config
	lexicalOnly     bool
	vectorCachePath string
	interactionPath string
	threshold       float64
	semanticTimeout time.Duration
	logger          *slog.Logger
}

// WithAIConfig sets the embedding provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) BotOption {
	return func(o *botOptions) {
		o.aiConfig = config
	}
}

// LexicalOnly disables semantic matching entirely; queries resolve on
// keyword and sequence similarity alone.
func LexicalOnly() BotOption {
	return func(o *botOptions) {
		o.lexicalOnly = true
	}
}

// WithVectorCache persists entry embeddings to a badger database at the
// given path, so an unchanged corpus is not re-embedded on restart.
func WithVectorCache(path string) BotOption {
	return func(o *botOptions) {
		o.vectorCachePath = path
	}
}

// WithInteractionLog mirrors every interaction to a JSONL file.
func WithInteractionLog(path string) BotOption {
	return func(o *botOptions) {
		o.interactionPath = path
	}
}

// WithThreshold overrides the confidence threshold.
func WithThreshold(threshold float64) BotOption {
	return func(o *botOptions) {
		o.threshold = threshold
	}
}

// WithSemanticTimeout bounds each call to the embedding provider.
func WithSemanticTimeout(timeout time.Duration) BotOption {
	return func(o *botOptions) {
		o.semanticTimeout = timeout
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) BotOption {
	return func(o *botOptions) {
		o.logger = logger
	}
}

// NewBot assembles a bot around an already-loaded corpus.
func NewBot(loader *corpus.Loader, opts ...BotOption) (*Bot, error) {
	// Apply options
	options := &botOptions{
		aiConfig:  ai.DefaultConfig(),
		threshold: engine.DefaultThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	var logOpts []session.Option
	logOpts = append(logOpts, session.WithLogger(options.logger))
	if options.interactionPath != "" {
		logOpts = append(logOpts, session.WithFile(options.interactionPath))
	}
	log, err := session.NewLog(logOpts...)
	if err != nil {
		return nil, err
	}

	var store storage.VectorStore
	if options.vectorCachePath != "" {
		store, err = badger.NewVectorStore(options.vectorCachePath)
		if err != nil {
			log.Close()
			return nil, err
		}
	}

	engineOpts := []engine.Option{
		engine.WithSessionLog(log),
		engine.WithThreshold(options.threshold),
		engine.WithLogger(options.logger),
	}
	if !options.lexicalOnly {
		embedder, err := openai.NewEmbedder(options.aiConfig)
		if err != nil {
			if store != nil {
				store.Close()
			}
			log.Close()
			return nil, err
		}
		engineOpts = append(engineOpts, engine.WithEmbedder(embedder))
	}
	if store != nil {
		engineOpts = append(engineOpts, engine.WithVectorStore(store))
	}
	if options.semanticTimeout > 0 {
		engineOpts = append(engineOpts, engine.WithSemanticTimeout(options.semanticTimeout))
	}

	eng, err := engine.NewEngine(loader.Entries(), engineOpts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		log.Close()
		return nil, err
	}

	return &Bot{
		loader: loader,
		store:  store,
		log:    log,
		engine: eng,
		logger: options.logger,
	}, nil
}

// Warm populates the embedding cache for the loaded corpus.
func (b *Bot) Warm(ctx context.Context) error {
	return b.engine.Warm(ctx)
}

// Ask resolves one query.
func (b *Bot) Ask(ctx context.Context, query string) (*engine.Response, error) {
	return b.engine.Resolve(ctx, query)
}

// AddFAQ appends one entry to the live corpus and rewrites the local cache
// file so the addition survives a restart.
func (b *Bot) AddFAQ(ctx context.Context, question, answer, category string) error {
	entry, err := b.engine.AddEntry(ctx, question, answer, category)
	if err != nil {
		return err
	}
	if _, err := b.loader.Add(entry.Question, entry.Answer, entry.Category); err != nil {
		return err
	}
	return b.loader.SaveCache()
}

// ReloadFromFile re-reads the corpus file and swaps the live corpus. Used
// by the serve command's file watcher after the corpus file changes.
func (b *Bot) ReloadFromFile(ctx context.Context, path string) error {
	if err := b.loader.LoadFile(path); err != nil {
		return err
	}
	return b.Reload(ctx)
}

// Reload swaps the live corpus for the loader's current entries.
func (b *Bot) Reload(ctx context.Context) error {
	b.engine.Reload(b.loader.Entries())
	if b.store != nil {
		if err := b.store.Invalidate(ctx); err != nil {
			return err
		}
	}
	return b.engine.Warm(ctx)
}

// Hybrid reports whether semantic matching is enabled.
func (b *Bot) Hybrid() bool {
	return b.engine.Hybrid()
}

// SessionId returns this run's session identifier.
func (b *Bot) SessionId() string {
	return b.log.SessionId()
}

// Stats summarizes the corpus.
func (b *Bot) Stats() corpus.Stats {
	return b.loader.Stats()
}

// Categories returns the distinct corpus categories, sorted.
func (b *Bot) Categories() []string {
	return b.loader.Categories()
}

// History returns the session's interactions, oldest first.
func (b *Bot) History() []core.InteractionRecord {
	return b.engine.History()
}

// Analytics aggregates the session log.
func (b *Bot) Analytics() *session.Analytics {
	return b.engine.Analytics()
}

// ClearHistory discards the in-memory session records.
func (b *Bot) ClearHistory() {
	b.engine.ClearHistory()
}

// Close releases the vector store and the interaction log file.
func (b *Bot) Close() error {
	if b.store != nil {
		if err := b.store.Close(); err != nil {
			b.logger.Error("error closing vector store", "err", err)
			return err
		}
	}
	if err := b.log.Close(); err != nil {
		b.logger.Error("error closing interaction log", "err", err)
		return err
	}
	return nil
}

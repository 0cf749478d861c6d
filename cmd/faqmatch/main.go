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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	faqmatch "github.com/poiesic/faqmatch"
	"github.com/poiesic/faqmatch/ai"
	"github.com/poiesic/faqmatch/corpus"
)

func main() {
	app := &cli.App{
		Name:  "faqmatch",
		Usage: "FAQ assistant with hybrid lexical and semantic matching",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "chat",
				Usage:  "Start an interactive chat session",
				Action: chatCommand,
				Flags:  append(botFlags(), chatFlags()...),
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP JSON API",
				Action: serveCommand,
				Flags:  append(botFlags(), serveFlags()...),
			},
			{
				Name:   "download",
				Usage:  "Download the FAQ dataset and cache it locally",
				Action: downloadCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dataset",
						Usage: "Hugging Face dataset name",
						Value: corpus.DefaultDataset,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Cache file to write",
						Value:   corpus.DefaultCacheFile,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Overall download timeout",
						Value: 5 * time.Minute,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// botFlags are shared by every command that assembles a Bot.
func botFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "Corpus file to load (.json, .jsonl or .csv); defaults to the local cache",
		},
		&cli.StringFlag{
			Name:  "cache",
			Usage: "Local corpus cache file",
			Value: corpus.DefaultCacheFile,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: ai.DefaultEmbeddingHost,
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: ai.DefaultEmbeddingModel,
		},
		&cli.BoolFlag{
			Name:  "lexical-only",
			Usage: "Disable semantic matching",
		},
		&cli.Float64Flag{
			Name:  "threshold",
			Usage: "Minimum confidence for a direct answer",
			Value: 0.4,
		},
		&cli.StringFlag{
			Name:  "vector-db",
			Usage: "BadgerDB directory for the persistent embedding cache",
		},
		&cli.StringFlag{
			Name:  "interaction-log",
			Usage: "JSONL file to append interactions to",
		},
		&cli.DurationFlag{
			Name:  "semantic-timeout",
			Usage: "Per-query embedding provider timeout",
			Value: 10 * time.Second,
		},
	}
}

// buildBot loads the corpus and assembles a Bot from the shared flags.
func buildBot(c *cli.Context) (*faqmatch.Bot, error) {
	loader := corpus.NewLoader(corpus.WithCachePath(c.String("cache")))

	if dataPath := c.String("data"); dataPath != "" {
		if err := loader.LoadFile(dataPath); err != nil {
			return nil, err
		}
	} else if err := loader.LoadCache(); err != nil {
		return nil, fmt.Errorf("%w (run 'faqmatch download' or pass --data)", err)
	}

	opts := []faqmatch.BotOption{
		faqmatch.WithThreshold(c.Float64("threshold")),
		faqmatch.WithSemanticTimeout(c.Duration("semantic-timeout")),
	}
	if c.Bool("lexical-only") {
		opts = append(opts, faqmatch.LexicalOnly())
	} else {
		opts = append(opts, faqmatch.WithAIConfig(ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
		)))
	}
	if path := c.String("vector-db"); path != "" {
		opts = append(opts, faqmatch.WithVectorCache(path))
	}
	if path := c.String("interaction-log"); path != "" {
		opts = append(opts, faqmatch.WithInteractionLog(path))
	}

	return faqmatch.NewBot(loader, opts...)
}

func downloadCommand(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	defer cancel()

	downloader := corpus.NewDownloader(corpus.WithDataset(c.String("dataset")))

	fmt.Fprintf(os.Stderr, "Downloading %s...\n", c.String("dataset"))
	entries, err := downloader.Download(ctx)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	loader := corpus.NewLoader(corpus.WithCachePath(c.String("output")))
	loader.SetEntries(entries)
	if err := loader.SaveCache(); err != nil {
		return err
	}

	stats := loader.Stats()
	fmt.Fprintf(os.Stderr, "Saved %d entries to %s\n", stats.TotalEntries, c.String("output"))
	fmt.Fprintf(os.Stderr, "Categories: %s\n", strings.Join(stats.Categories, ", "))
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

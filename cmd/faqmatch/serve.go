package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	faqmatch "github.com/poiesic/faqmatch"
	"github.com/poiesic/faqmatch/engine"
)

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Usage: "Listen address",
			Value: ":8080",
		},
		&cli.BoolFlag{
			Name:  "watch",
			Usage: "Reload the corpus when the loaded file changes",
		},
	}
}

func serveCommand(c *cli.Context) error {
	bot, err := buildBot(c)
	if err != nil {
		return err
	}
	defer bot.Close()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if bot.Hybrid() {
		if err := bot.Warm(ctx); err != nil {
			slog.Warn("embedding warmup failed", "err", err)
		}
	}

	if c.Bool("watch") {
		watchPath := c.String("data")
		if watchPath == "" {
			watchPath = c.String("cache")
		}
		stopWatch, err := watchCorpus(ctx, bot, watchPath)
		if err != nil {
			return err
		}
		defer stopWatch()
	}

	server := &http.Server{
		Addr:         c.String("addr"),
		Handler:      newAPIHandler(bot),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// watchCorpus reloads the bot when the corpus file is rewritten. Editors
// and atomic-save tools often replace the file, so Create events on the
// same name count as changes too.
func watchCorpus(ctx context.Context, bot *faqmatch.Bot, path string) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	target := filepath.Clean(path)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				slog.Info("corpus file changed, reloading", "path", target)
				if err := bot.ReloadFromFile(ctx, target); err != nil {
					slog.Error("corpus reload failed", "path", target, "err", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("corpus watcher error", "err", err)
			}
		}
	}()

	return watcher.Close, nil
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Answer       string   `json:"answer"`
	Score        float64  `json:"score"`
	Method       string   `json:"method"`
	Category     string   `json:"category"`
	Fallback     bool     `json:"fallback"`
	Alternatives []string `json:"alternatives,omitempty"`
}

type addRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

func newAPIHandler(bot *faqmatch.Bot) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", handleChat(bot))
	mux.HandleFunc("POST /api/faqs", handleAddFAQ(bot))
	mux.HandleFunc("GET /api/stats", handleStats(bot))
	mux.HandleFunc("GET /api/analytics", handleAnalytics(bot))
	mux.HandleFunc("GET /api/history", handleHistory(bot))
	mux.HandleFunc("GET /api/categories", handleCategories(bot))
	mux.HandleFunc("POST /api/clear-history", handleClearHistory(bot))
	return mux
}

func handleChat(bot *faqmatch.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := bot.Ask(r.Context(), req.Query)
		switch {
		case errors.Is(err, engine.ErrEmptyQuery):
			writeError(w, http.StatusBadRequest, "query is empty")
			return
		case errors.Is(err, engine.ErrEmptyCorpus):
			writeError(w, http.StatusServiceUnavailable, "no FAQ data loaded")
			return
		case err != nil:
			slog.Error("resolve failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := chatResponse{
			Answer:       resp.Match.Entry.Answer,
			Score:        resp.Match.Score,
			Method:       string(resp.Match.Method),
			Category:     resp.Match.Entry.Category,
			Fallback:     resp.Fallback,
			Alternatives: resp.Alternatives,
		}
		if resp.Fallback {
			out.Answer = engine.FallbackAnswer
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleAddFAQ(bot *faqmatch.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := bot.AddFAQ(r.Context(), req.Question, req.Answer, req.Category); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
	}
}

func handleStats(bot *faqmatch.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, bot.Stats())
	}
}

func handleAnalytics(bot *faqmatch.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, bot.Analytics())
	}
}

func handleHistory(bot *faqmatch.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type historyEntry struct {
			Timestamp time.Time `json:"timestamp"`
			Query     string    `json:"query"`
			Answer    string    `json:"response"`
			Score     float64   `json:"score"`
			Method    string    `json:"method"`
			Category  string    `json:"category"`
		}
		records := bot.History()
		out := make([]historyEntry, len(records))
		for i, rec := range records {
			out[i] = historyEntry{
				Timestamp: rec.Timestamp,
				Query:     rec.Query,
				Answer:    rec.Answer,
				Score:     rec.Score,
				Method:    string(rec.Method),
				Category:  rec.Category,
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleCategories(bot *faqmatch.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, bot.Categories())
	}
}

func handleClearHistory(bot *faqmatch.Bot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bot.ClearHistory()
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}


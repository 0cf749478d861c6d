package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/faqmatch/core"
)

// Log is an append-only record of resolved queries for one session.
// Safe for concurrent use.
type Log struct {
	mu        sync.Mutex
	sessionId string
	records   []core.InteractionRecord
	file      *os.File
	logger    *slog.Logger
}

// Option configures a Log.
type Option func(*Log) error

// WithFile mirrors every appended record to a JSONL file, appending to it
// if it already exists.
func WithFile(path string) Option {
	return func(l *Log) error {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open session log file: %w", err)
		}
		l.file = f
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLog creates a session log with a fresh session identifier.
func NewLog(opts ...Option) (*Log, error) {
	l := &Log{
		sessionId: uuid.NewString(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// SessionId returns the identifier stamped on every record of this log.
func (l *Log) SessionId() string {
	return l.sessionId
}

// Record appends an interaction for the given match outcome. The record is
// timestamped here so ordering is always chronological.
func (l *Log) Record(query, answer string, score float64, method core.MatchMethod, category string) {
	rec := core.InteractionRecord{
		Timestamp: time.Now().UTC(),
		SessionId: l.sessionId,
		Query:     query,
		Answer:    answer,
		Score:     score,
		Method:    method,
		Category:  category,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, rec)

	if l.file != nil {
		if err := writeJSONL(l.file, &rec); err != nil {
			// The in-memory log stays authoritative; file mirroring is
			// best effort.
			l.logger.Warn("could not write to session log file", "err", err)
		}
	}
}

// Records returns a copy of the appended records in chronological order.
func (l *Log) Records() []core.InteractionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]core.InteractionRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of appended records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Clear discards the in-memory records. The JSONL file, if any, is left
/// untouched: it is the durable audit trail.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}

// Close closes the JSONL file if one is attached.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// jsonlRecord is the wire form of an InteractionRecord. The core type stays
// free of serialization tags.
type jsonlRecord struct {
	Timestamp string  `json:"timestamp"`
	SessionId string  `json:"session_id"`
	Query     string  `json:"query"`
	Answer    string  `json:"response"`
	Score     float64 `json:"score"`
	Method    string  `json:"method"`
	Category  string  `json:"category"`
}

func writeJSONL(f *os.File, rec *core.InteractionRecord) error {
	line, err := json.Marshal(jsonlRecord{
		Timestamp: rec.Timestamp.Format(time.RFC3339Nano),
		SessionId: rec.SessionId,
		Query:     rec.Query,
		Answer:    rec.Answer,
		Score:     rec.Score,
		Method:    string(rec.Method),
		Category:  rec.Category,
	})
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = f.Write(line)
	return err
}

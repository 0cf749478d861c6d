package corpus

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poiesic/faqmatch/core"
)

// DefaultCacheFile is the local JSON cache written after a download.
const DefaultCacheFile = "faq_data.json"

// fileEntry is the on-disk form of an entry. Ids are positional and never
// serialized.
type fileEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

// Stats summarizes the loaded corpus.
type Stats struct {
	TotalEntries   int            `json:"total_entries"`
	Categories     []string       `json:"categories"`
	CategoryCounts map[string]int `json:"category_counts"`
}

// Loader reads, caches and manages FAQ entries. Not safe for concurrent
// use; the engine serializes access behind its own lock.
type Loader struct {
	cachePath string
	entries   []core.Entry
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithCachePath overrides the local cache file location.
func WithCachePath(path string) Option {
	return func(l *Loader) {
		l.cachePath = path
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates an empty Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		cachePath: DefaultCacheFile,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CachePath returns the configured cache file location.
func (l *Loader) CachePath() string {
	return l.cachePath
}

// Entries returns the loaded entries. The slice is shared; callers must not
// mutate it.
func (l *Loader) Entries() []core.Entry {
	return l.entries
}

// Len returns the number of loaded entries.
func (l *Loader) Len() int {
	return len(l.entries)
}

// LoadFile reads entries from a JSON, JSONL or CSV file, replacing whatever
// was loaded before. The format is picked by extension.
func (l *Loader) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open corpus file: %w", err)
	}
	defer f.Close()

	var raw []fileEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		raw, err = readJSON(f)
	case ".jsonl":
		raw, err = readJSONL(f)
	case ".csv":
		raw, err = readCSV(f)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	l.entries = l.assign(raw)
	l.logger.Info("corpus loaded", "path", path, "entries", len(l.entries))
	return nil
}

// LoadCache reads entries from the local cache file. Returns ErrNoCache if
// the file does not exist.
func (l *Loader) LoadCache() error {
	f, err := os.Open(l.cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNoCache, l.cachePath)
		}
		return fmt.Errorf("open cache: %w", err)
	}
	defer f.Close()

	raw, err := readJSON(f)
	if err != nil {
		return fmt.Errorf("read cache %s: %w", l.cachePath, err)
	}

	l.entries = l.assign(raw)
	l.logger.Info("corpus loaded from cache", "path", l.cachePath,
		"entries", len(l.entries))
	return nil
}

// SaveCache writes the loaded entries to the cache file as indented JSON.
func (l *Loader) SaveCache() error {
	raw := make([]fileEntry, len(l.entries))
	for i, e := range l.entries {
		raw[i] = fileEntry{
			Question: e.Question,
			Answer:   e.Answer,
			Category: e.Category,
		}
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.WriteFile(l.cachePath, data, 0644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}

	l.logger.Info("corpus cached", "path", l.cachePath, "entries", len(l.entries))
	return nil
}

// SetEntries replaces the corpus, reassigning sequential ids.
func (l *Loader) SetEntries(entries []core.Entry) {
	raw := make([]fileEntry, len(entries))
	for i, e := range entries {
		raw[i] = fileEntry{Question: e.Question, Answer: e.Answer, Category: e.Category}
	}
	l.entries = l.assign(raw)
}

// Add validates and appends a single entry, assigning it the next id. The
// cache file is not touched; callers persist via SaveCache when they want
// the addition durable.
func (l *Loader) Add(question, answer, category string) (core.Entry, error) {
	entry, err := core.NewEntry(core.ID(len(l.entries)+1), question, answer, category)
	if err != nil {
		return core.Entry{}, err
	}
	l.entries = append(l.entries, *entry)
	return *entry, nil
}

// Categories returns the distinct categories in sorted order.
func (l *Loader) Categories() []string {
	seen := make(map[string]bool)
	for _, e := range l.entries {
		seen[e.Category] = true
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// ByCategory returns the entries whose category matches, case-insensitively.
func (l *Loader) ByCategory(category string) []core.Entry {
	var out []core.Entry
	for _, e := range l.entries {
		if strings.EqualFold(e.Category, category) {
			out = append(out, e)
		}
	}
	return out
}

// Stats summarizes the corpus.
func (l *Loader) Stats() Stats {
	counts := make(map[string]int)
	for _, e := range l.entries {
		counts[e.Category]++
	}
	return Stats{
		TotalEntries:   len(l.entries),
		Categories:     l.Categories(),
		CategoryCounts: counts,
	}
}

// assign converts raw file entries into core entries with sequential ids,
// skipping entries with a blank question or answer.
func (l *Loader) assign(raw []fileEntry) []core.Entry {
	entries := make([]core.Entry, 0, len(raw))
	for _, r := range raw {
		entry, err := core.NewEntry(core.ID(len(entries)+1), r.Question, r.Answer, r.Category)
		if err != nil {
			l.logger.Warn("skipping invalid corpus entry",
				"question", r.Question, "error", err)
			continue
		}
		entries = append(entries, *entry)
	}
	return entries
}

func readJSON(r io.Reader) ([]fileEntry, error) {
	var raw []fileEntry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func readJSONL(r io.Reader) ([]fileEntry, error) {
	var raw []fileEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry fileEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		raw = append(raw, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return raw, nil
}

func readCSV(r io.Reader) ([]fileEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var raw []fileEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		raw = append(raw, fileEntry{
			Question: field(record, "question"),
			Answer:   field(record, "answer"),
			Category: field(record, "category"),
		})
	}
	return raw, nil
}

package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for corpus entries.
// IDs are assigned sequentially in corpus order, starting at 1.
type ID uint64

// MatchMethod identifies which matcher produced a result.
type MatchMethod string

const (
	// MethodLexical marks results produced by keyword and sequence matching.
	MethodLexical MatchMethod = "lexical"
	// MethodSemantic marks results produced by embedding similarity.
	MethodSemantic MatchMethod = "semantic"
)

// DefaultCategory is assigned to entries loaded without an explicit category.
const DefaultCategory = "general"

// Entry is a single question/answer pair in the corpus.
// Entries are immutable once loaded; additions append new entries
// rather than mutating existing ones.
type Entry struct {
	Id       ID
	Question string
	Answer   string
	Category string
}

// ScoredCandidate pairs a corpus entry with a relevance score in [0,1].
// Candidates are transient, produced fresh for each query.
type ScoredCandidate struct {
	Entry *Entry
	Score float64
}

// Match is the top-ranked candidate for a query together with the
// method that produced it. Score is the raw (unweighted) score of
// the winning method.
type Match struct {
	Entry  *Entry
	Score  float64
	Method MatchMethod
}

// InteractionRecord is one resolved query in a session.
// Records are append-only and never mutated after creation.
type InteractionRecord struct {
	Timestamp time.Time
	SessionId string
	Query     string
	Answer    string
	Score     float64
	Method    MatchMethod
	Category  string
}

// CachedVector is the persisted form of one entry embedding.
type CachedVector struct {
	Id     ID
	Vector []float32
}

// CorpusChecksum generates a deterministic checksum over the ordered entry
// questions using BLAKE2b hashing. Cached embedding vectors are tagged with
// this value so stale caches are detected and rebuilt rather than reused.
// Only questions participate: they are the sole input to embedding.
func CorpusChecksum(entries []*Entry) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	for _, entry := range entries {
		h.Write([]byte(entry.Question))
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

package match

import (
	"sort"
	"sync"

	"github.com/poiesic/faqmatch/core"
)

// KeywordIndex is an inverted index from keyword to corpus positions,
// built once per corpus load and extended incrementally on additions.
//
// Positions, not entry IDs, are stored: candidate lists stay in corpus
// order, which is what the ranker's tie-break needs.
//
// Safe for concurrent use: lookups take a read lock, mutations a write
// lock, so an in-flight query never observes a partially updated index.
type KeywordIndex struct {
	mu       sync.RWMutex
	postings map[string][]int
	size     int
}

// NewKeywordIndex creates an empty index.
func NewKeywordIndex() *KeywordIndex {
	return &KeywordIndex{
		postings: make(map[string][]int),
	}
}

// BuildIndex builds an index over the given entries. For each entry, the
// keywords of its question are extracted and the entry's position is
// registered under every one of them.
func BuildIndex(entries []*core.Entry) *KeywordIndex {
	ix := NewKeywordIndex()
	for pos, entry := range entries {
		ix.register(pos, entry)
	}
	ix.size = len(entries)
	return ix
}

// Update registers a dynamically added entry at the given corpus position
// without requiring a full rebuild.
func (ix *KeywordIndex) Update(pos int, entry *core.Entry) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.registerLocked(pos, entry)
	if pos >= ix.size {
		ix.size = pos + 1
	}
}

// Candidates returns the union of corpus positions registered under any
// keyword of the query, in ascending corpus order.
//
// When the union is empty the FULL corpus is returned. This is a deliberate
// policy: an index miss must not silently produce "no results", it degrades
// to exhaustive scoring.
func (ix *KeywordIndex) Candidates(query string) []int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[int]bool)
	for keyword := range Keywords(query) {
		for _, pos := range ix.postings[keyword] {
			seen[pos] = true
		}
	}

	if len(seen) == 0 {
		// Full fallback scan.
		all := make([]int, ix.size)
		for i := range all {
			all[i] = i
		}
		return all
	}

	positions := make([]int, 0, len(seen))
	for pos := range seen {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions
}

// Len returns the number of indexed entries.
func (ix *KeywordIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.size
}

func (ix *KeywordIndex) register(pos int, entry *core.Entry) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.registerLocked(pos, entry)
}

func (ix *KeywordIndex) registerLocked(pos int, entry *core.Entry) {
	for keyword := range Keywords(entry.Question) {
		ix.postings[keyword] = append(ix.postings[keyword], pos)
	}
}

package storage

import (
	"context"

	"github.com/poiesic/faqmatch/core"
)

// VectorStore persists entry embedding vectors between runs.
// Implementations must be thread-safe and support concurrent access.
type VectorStore interface {
	// SaveVectors replaces the stored cache with the given vectors, tagged
	// with the corpus checksum they were computed against.
	SaveVectors(ctx context.Context, checksum uint64, vectors []core.CachedVector) error

	// LoadVectors returns the stored vectors if their tag matches checksum.
	// Returns nil with no error when the store is empty or the stored tag
	// differs (a stale cache), so callers re-embed instead of reusing.
	LoadVectors(ctx context.Context, checksum uint64) ([]core.CachedVector, error)

	// Invalidate removes every stored vector and the checksum tag.
	Invalidate(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}

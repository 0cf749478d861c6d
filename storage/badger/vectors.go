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


package badger

import (
	"context"
	"encoding/binary"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/storage"
)

// VectorRepository implements storage.VectorStore for BadgerDB.
type VectorRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.VectorStore = (*VectorRepository)(nil)

// NewVectorStore opens a BadgerDB-backed vector store at the given path.
//
// Returns storage.VectorStore interface to enforce abstraction.
func NewVectorStore(filePath string) (storage.VectorStore, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	return newVectorRepository(backend), nil
}

func newVectorRepository(backend *Backend) *VectorRepository {
	return &VectorRepository{
		backend: backend,
		logger:  slog.Default().With("component", "vector-store"),
	}
}

// SaveVectors replaces the stored cache with the given vectors, tagged with
// the corpus checksum. Existing vectors are dropped first so removals never
// leave orphans behind.
func (r *VectorRepository) SaveVectors(ctx context.Context, checksum uint64, vectors []core.CachedVector) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	if err := r.deleteAll(); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		sumBuf := make([]byte, 8)
		binary.BigEndian.PutUint64(sumBuf, checksum)
		if err := tx.Set(checksumKey(), sumBuf); err != nil {
			return err
		}

		for i := range vectors {
			key := makeVectorKey(vectors[i].Id)
			value := storage.MarshalCachedVector(&vectors[i])
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// LoadVectors returns the stored vectors when the stored checksum tag
// matches. A missing or mismatched tag yields nil, nil: the cache is stale
// and the caller must re-embed.
func (r *VectorRepository) LoadVectors(ctx context.Context, checksum uint64) ([]core.CachedVector, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var vectors []core.CachedVector
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(checksumKey())
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		var stored uint64
		if err := item.Value(func(val []byte) error {
			stored = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return err
		}

		if stored != checksum {
			r.logger.Info("stale vector cache detected, discarding",
				"stored", stored, "current", checksum)
			return nil
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var cached *core.CachedVector
			err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				cached, unmarshalErr = storage.UnmarshalCachedVector(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			vectors = append(vectors, *cached)
		}
		return nil
	}, false)

	return vectors, err
}

// Invalidate removes every stored vector and the checksum tag.
func (r *VectorRepository) Invalidate(ctx context.Context) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.deleteAll()
}

// Close closes the underlying backend.
func (r *VectorRepository) Close() error {
	return r.backend.Close()
}

func (r *VectorRepository) deleteAll() error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var keys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		if err := tx.Delete(checksumKey()); err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		return tx.Commit()
	}, true)
}

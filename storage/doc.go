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


// Package storage provides the persistence abstraction for the embedding
// vector cache.
//
// Embedding a full corpus is the slowest part of startup, so entry vectors
// are persisted between runs as binary blobs keyed by entry id. Every
// stored cache is tagged with a corpus checksum; a store opened against a
// corpus with a different checksum yields nothing, so stale vectors are
// re-embedded rather than silently reused.
//
// # Constructor Return Type Pattern
//
// Public constructors return the VectorStore interface to enforce
// abstraction and enable alternative backends:
//
//	store, err := badger.NewVectorStore("/path/to/db") // returns storage.VectorStore
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryVectorStore()
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage

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


// Package match implements the corpus matching primitives:
//
//   - Text normalization and stopword-filtered keyword extraction
//   - An inverted keyword index with incremental update and a deliberate
//     full-corpus fallback when no keyword overlaps
//   - A lexical scorer combining Jaccard keyword overlap with a
//     character-level sequence similarity ratio
//   - A semantic scorer delegating encoding to an ai.Embedder and ranking
//     by cosine similarity over cached entry vectors
//   - Ranking: score candidates, stable-sort descending, truncate to top-k
//
// All scores are in [0,1]. The index and the semantic vector cache are
// read-mostly shared state; mutations are serialized behind reader-writer
// locks so an in-flight query never observes a partial update.
package match

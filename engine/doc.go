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

// Package engine resolves free-text queries against a FAQ corpus.
//
// An Engine runs two independent rankings over the corpus. The lexical
// ranking scores the keyword-index candidates with Jaccard keyword overlap
// blended with a character sequence ratio. The semantic ranking, present
// when the engine was built with an embedder, scores the full corpus by
// embedding cosine similarity. An arbiter weighs the two winners against
// each other, selects on the weighted scores, and reports the winner's raw
// score. A raw score below the confidence threshold produces a fallback
// response carrying alternative question suggestions instead of an answer.
//
// The engine degrades rather than fails when the embedding provider is
// unreachable: a semantic ranking error is logged and the lexical ranking
// decides alone. Every resolved query is appended to the session log when
// one is attached.
//
// All methods are safe for concurrent use. Resolve takes a read lock;
// AddEntry and Reload take the write lock.
package engine

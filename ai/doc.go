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


// Package ai provides the embedding abstraction used by the semantic matcher.
//
// The engine never computes embeddings itself; it delegates text-to-vector
// encoding to an Embedder. This package defines that capability interface
// so matching logic depends on an abstraction rather than a concrete
// provider.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Deterministic test double, no external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewEmbedder) return the INTERFACE type to
// enforce abstraction and prevent accidental coupling to a concrete
// implementation.
//
//	embedder, err := openai.NewEmbedder(config) // returns ai.Embedder
//
// The test utility constructor (mock.NewEmbedder) returns the CONCRETE type
// to enable behavior injection and call-count assertions:
//
//	mockEmbed := mock.NewEmbedder()          // returns *mock.Embedder
//	mockEmbed.EmbedTextFunc = func(...) ...  // needs concrete type
//
// # Availability
//
// Embedding providers are optional collaborators. Callers construct the
// semantic matcher only when a provider is configured and available;
// provider failure at query time is treated as "semantic matcher
// unavailable for this call", never as a user-visible error.
package ai

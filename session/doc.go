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


// Package session records resolved queries and derives analytics from them.
//
// A Log is an append-only, chronologically ordered sequence of
// InteractionRecords for one session, optionally mirrored to a JSONL file.
// Appends are serialized independently of any index mutation; records are
// never mutated after append.
//
// Analytics (average confidence, per-method and per-category counts,
// low-confidence rate, most frequent queries) are purely derived from the
// record sequence and carry no state of their own.
package session

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

// Package corpus loads and manages the FAQ entry set.
//
// A Loader reads entries from JSON, JSONL or CSV files, keeps a local JSON
// cache, and can populate itself from the Hugging Face datasets-server API.
// Entries receive sequential ids in file order; ids are positions, not
// stable identifiers, and change when the corpus is reloaded.
//
// A Loader is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
package corpus

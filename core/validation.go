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


package core

import (
	"fmt"
	"strings"
)

// ValidateEntry validates an Entry according to domain rules.
//
// Validation rules:
//   - Question must not be blank
//   - Answer must not be blank
//
// NOT validated:
//   - Category (defaulted at construction, see NewEntry)
//   - ID (assigned by the loader)
func ValidateEntry(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if strings.TrimSpace(entry.Question) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyQuestion)
	}

	if strings.TrimSpace(entry.Answer) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyAnswer)
	}

	return nil
}

// NewEntry constructs a validated Entry. A blank category is replaced with
// DefaultCategory at construction so readers never have to handle the
// absent case.
func NewEntry(id ID, question, answer, category string) (*Entry, error) {
	if strings.TrimSpace(category) == "" {
		category = DefaultCategory
	}

	entry := &Entry{
		Id:       id,
		Question: question,
		Answer:   answer,
		Category: category,
	}

	if err := ValidateEntry(entry); err != nil {
		return nil, err
	}

	return entry, nil
}

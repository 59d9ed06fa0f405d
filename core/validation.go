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
	"time"
)

// ValidatePassage validates a Passage before it is stored.
//
// Validation rules:
//   - Text must not be blank
//   - Source must not be blank
//   - Vector must be present
//   - InsertedAt must not be in the future
//
// NOT validated:
//   - ID (derived from content on insert when zero)
//   - Article and ArticleNum (many passages are not article-scoped)
func ValidatePassage(passage *Passage) error {
	if passage == nil {
		return fmt.Errorf("%w: passage is nil", ErrInvalidPassage)
	}

	if strings.TrimSpace(passage.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrEmptyText)
	}

	if strings.TrimSpace(passage.Source) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrEmptySource)
	}

	if len(passage.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrMissingVector)
	}

	if !IsValidTimestamp(passage.InsertedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}

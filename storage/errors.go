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


package storage

import "errors"

// Errors shared by every passage store.
var (
	// ErrNotFound is returned when a passage ID is not stored.
	ErrNotFound = errors.New("passage not found")

	// ErrStorageClosed is returned by operations on a closed store.
	ErrStorageClosed = errors.New("passage store is closed")

	// ErrInvalidQuery rejects a search without a vector or with TopK < 1.
	ErrInvalidQuery = errors.New("invalid search request")

	// ErrSerializationFailed wraps codec failures on stored passages.
	ErrSerializationFailed = errors.New("passage serialization failed")
)

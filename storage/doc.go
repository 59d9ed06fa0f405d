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


// Package storage provides the passage store abstraction for juris.
//
// The retrieval pipeline only needs VectorSearcher. PassageRepository adds
// the write side used by the offline loader.
//
// # Backends
//
//   - storage/badger: embedded BadgerDB, brute-force cosine scan over
//     unit vectors. Good for a few hundred thousand passages and for tests
//     (in-memory mode).
//   - storage/postgres: PostgreSQL with the pgvector extension.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.PassageRepository interface:
//
//	repo, err := badger.NewPassageRepository(backend)
//
// # Usage
//
//	backend, err := badger.OpenBackend("/var/lib/juris", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	repo, _ := badger.NewPassageRepository(backend)
//	matches, err := repo.Search(ctx, core.SearchRequest{Vector: v, TopK: 20})
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage

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


// Package retrieval fuses the results of several vector searches into one
// bounded context.
//
// The Engine runs one search per expanded query on a shared worker pool and
// waits for all of them. Each search:
//   - Embeds the query
//   - Asks the index for the top 20 matches, filtered on article_num when the
//     query names an article
//   - Keeps matches scoring at least the minimum similarity
//
// Survivors are deduplicated by identity (first seen wins), sorted by score
// and serialized into text blocks until the character budget is reached.
// A failed query contributes nothing; fusion itself never fails.
package retrieval

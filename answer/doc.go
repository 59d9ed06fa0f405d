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


// Package answer is the single entry point of the question pipeline.
//
// Orchestrator.Query sequences the stages:
//
//	validate -> expand -> fuse -> (web fallback) -> synthesize -> cite
//
// A rejected question ends the pipeline with the rejection message. When
// neither the knowledge base nor the web yields context, a fixed not-found
// message is returned without calling the synthesis model. Every answer ends
// with the legal disclaimer, and Query never panics or returns an error:
// failures degrade to a fixed apology with QueryOutcome.Error set.
package answer

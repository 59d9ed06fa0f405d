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


// Package ai provides abstractions for the model services used by juris.
//
// The package defines the narrow capabilities the question pipeline consumes:
//
//   - Embedder: Generates vector embeddings from text
//   - Completer: Produces a text completion for a single prompt
//   - AIProvider: Aggregates the embedder and one completer per Purpose
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//     (OpenAI for embeddings, Groq or any compatible host for completions)
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, openai.NewCompleter)
// return INTERFACE types. Test constructors (mock.NewMockEmbedder,
// mock.NewMockCompleter) return CONCRETE types so tests can inject behavior
// and assert on call counts.
//
//	mockEmbed := mock.NewMockEmbedder()  // returns *mock.MockEmbedder
//	mockEmbed.WithEmbedTextFunc(...)     // needs concrete type
//	count := mockEmbed.CallCount()       // test assertion
//
// # Purposes
//
// Each completion purpose carries fixed sampling parameters:
// expansion runs at temperature 0.3, classification at 0 with a 50 token cap,
// synthesis at 0. The model per purpose comes from Config.
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.NewConfig(
//	    ai.WithEmbeddingAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    ai.WithCompletionAPIKey(os.Getenv("GROQ_API_KEY")),
//	))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "responsabilité civile")
//	verdict, err := provider.Completer(ai.PurposeClassification).Complete(ctx, prompt)
package ai

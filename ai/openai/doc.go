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


// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements the ai.AIProvider interface using the langchaingo
// library to communicate with OpenAI or OpenAI-compatible services (Groq,
// Ollama, LocalAI, vLLM). Embeddings and completions may live on different
// hosts: the default pairs OpenAI embeddings with Groq chat models.
//
// EmbedText is meant for search queries and EmbedTexts for passages; a
// response with missing vectors fails with ErrShortEmbeddingResponse rather
// than yielding an empty vector.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithEmbeddingAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    ai.WithCompletionAPIKey(os.Getenv("GROQ_API_KEY")),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "article 1457")
//	text, err := provider.Completer(ai.PurposeSynthesis).Complete(ctx, prompt)
package openai

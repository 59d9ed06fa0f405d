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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "https://api.openai.com/v1"
	EmbeddingHost string

	// CompletionHost is the base URL for the chat completion service API.
	// Example: "https://api.groq.com/openai/v1"
	CompletionHost string

	// EmbeddingAPIKey authenticates against EmbeddingHost.
	// Empty means "none", which local OpenAI-compatible servers accept.
	EmbeddingAPIKey string

	// CompletionAPIKey authenticates against CompletionHost.
	CompletionAPIKey string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Must match the model the knowledge base was indexed with.
	EmbeddingModel string

	// ExpansionModel rewrites questions into search queries.
	ExpansionModel string

	// ClassifierModel answers the domain relevance question.
	// A small, fast model is enough.
	ClassifierModel string

	// SynthesisModel writes the final answer.
	SynthesisModel string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithCompletionHost sets the completion service host URL.
func WithCompletionHost(host string) ConfigOption {
	return func(c *Config) {
		c.CompletionHost = host
	}
}

// WithHost sets both embedding and completion hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.CompletionHost = host
	}
}

// WithEmbeddingAPIKey sets the embedding service API key.
func WithEmbeddingAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingAPIKey = key
	}
}

// WithCompletionAPIKey sets the completion service API key.
func WithCompletionAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.CompletionAPIKey = key
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithExpansionModel sets the query expansion model identifier.
func WithExpansionModel(model string) ConfigOption {
	return func(c *Config) {
		c.ExpansionModel = model
	}
}

// WithClassifierModel sets the relevance classifier model identifier.
func WithClassifierModel(model string) ConfigOption {
	return func(c *Config) {
		c.ClassifierModel = model
	}
}

// WithSynthesisModel sets the answer synthesis model identifier.
func WithSynthesisModel(model string) ConfigOption {
	return func(c *Config) {
		c.SynthesisModel = model
	}
}

// DefaultConfig returns a Config pointing at OpenAI for embeddings and Groq for completions.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:   "https://api.openai.com/v1",
		CompletionHost:  "https://api.groq.com/openai/v1",
		EmbeddingModel:  "text-embedding-3-small",
		ExpansionModel:  "llama-3.3-70b-versatile",
		ClassifierModel: "llama-3.1-8b-instant",
		SynthesisModel:  "llama-3.3-70b-versatile",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434/v1"),
//       WithEmbeddingModel("nomic-embed-text"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ModelFor returns the completion model configured for purpose.
func (c *Config) ModelFor(p Purpose) string {
	switch p {
	case PurposeExpansion:
		return c.ExpansionModel
	case PurposeClassification:
		return c.ClassifierModel
	default:
		return c.SynthesisModel
	}
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.CompletionHost = normalizeHost(c.CompletionHost)
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	// Remove trailing slash if present before adding /v1
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.CompletionHost == "" {
		return errors.New("ai config: CompletionHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ExpansionModel == "" {
		return errors.New("ai config: ExpansionModel is required")
	}
	if c.ClassifierModel == "" {
		return errors.New("ai config: ClassifierModel is required")
	}
	if c.SynthesisModel == "" {
		return errors.New("ai config: SynthesisModel is required")
	}
	return nil
}

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


package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/juris/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Completer implements ai.Completer using OpenAI-compatible chat APIs.
type Completer struct {
	client   llms.Model
	purpose  ai.Purpose
	sampling ai.Sampling
	logger   *slog.Logger
}

// newCompleter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCompleter(config *ai.Config, purpose ai.Purpose) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.CompletionHost),
		openai.WithToken(tokenOrNone(config.CompletionAPIKey)),
		openai.WithModel(config.ModelFor(purpose)),
	)
	if err != nil {
		return nil, err
	}

	return &Completer{
		client:   client,
		purpose:  purpose,
		sampling: ai.SamplingFor(purpose),
		logger:   slog.Default().With("component", "openai-completer", "purpose", purpose.String()),
	}, nil
}

// NewCompleter creates a completer for purpose using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config, purpose ai.Purpose) (ai.Completer, error) {
	return newCompleter(config, purpose)
}

// Complete sends prompt as a single user message and returns the cleaned response.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(c.sampling.Temperature)}
	if c.sampling.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.sampling.MaxTokens))
	}

	c.logger.Debug("requesting completion", "prompt_length", len(prompt))

	response, err := llms.GenerateFromSinglePrompt(ctx, c.client, prompt, opts...)
	if err != nil {
		c.logger.Error("failed to generate completion", "err", err)
		return "", err
	}

	return cleanCompletion(response), nil
}

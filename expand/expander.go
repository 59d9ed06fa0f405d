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


package expand

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/core"
)

const (
	// MaxQueries caps the size of an expanded query set.
	MaxQueries = 10

	// DefaultTimeout bounds the completion call.
	DefaultTimeout = 30 * time.Second

	alternatives   = 5
	maxEntities    = 5
	minAltQueryLen = 10
)

var enumMarker = regexp.MustCompile(`^[\d\-\.\)]+\s*`)

// QueryExpander produces the search queries for a question.
type QueryExpander struct {
	completer ai.Completer
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures a QueryExpander.
type Option func(*QueryExpander) error

// WithTimeout bounds the completion call.
func WithTimeout(d time.Duration) Option {
	return func(e *QueryExpander) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		e.timeout = d
		return nil
	}
}

// WithLogger sets a custom logger. A nil logger selects the default.
func WithLogger(logger *slog.Logger) Option {
	return func(e *QueryExpander) error {
		if logger == nil {
			logger = slog.Default().With("component", "query-expander")
		}
		e.logger = logger
		return nil
	}
}

// NewQueryExpander creates an expander that rephrases with completer.
func NewQueryExpander(completer ai.Completer, opts ...Option) (*QueryExpander, error) {
	if completer == nil {
		return nil, fmt.Errorf("expand: completer is required")
	}
	e := &QueryExpander{
		completer: completer,
		timeout:   DefaultTimeout,
		logger:    slog.Default().With("component", "query-expander"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Expand returns between 1 and MaxQueries queries, the question first.
func (e *QueryExpander) Expand(ctx context.Context, question string) []string {
	var queries []string
	if num, ok := core.ArticleNumber(question); ok {
		e.logger.Debug("article reference detected", "article", num)
		queries = articleQueries(question, num)
	} else {
		var err error
		queries, err = e.rephrase(ctx, question)
		if err != nil {
			e.logger.Error("query expansion failed, using question only", "err", err)
			return []string{question}
		}
	}

	queries = dedupe(queries)
	if len(queries) > MaxQueries {
		queries = queries[:MaxQueries]
	}
	e.logger.Info("queries generated", "count", len(queries))
	return queries
}

func articleQueries(question, num string) []string {
	return []string{
		question,
		"article " + num,
		"art. " + num,
		"article " + num + " CCQ",
		"article " + num + " Code civil Québec",
		"responsabilité article " + num,
		"faute article " + num,
		"obligation article " + num,
		"dommages article " + num,
		"responsabilité civile extracontractuelle",
	}
}

func (e *QueryExpander) rephrase(ctx context.Context, question string) ([]string, error) {
	prompt, err := expansionPrompt.Format(map[string]any{"question": question})
	if err != nil {
		return nil, fmt.Errorf("render expansion prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	response, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	queries := append([]string{question}, parseAlternatives(response)...)
	entities := ExtractEntities(question)
	if len(entities) > 0 {
		if len(entities) > maxEntities {
			entities = entities[:maxEntities]
		}
		queries = append(queries, strings.Join(entities, " "))
	}
	return queries, nil
}

// parseAlternatives keeps the first few usable lines of a model response.
func parseAlternatives(response string) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= minAltQueryLen {
			continue
		}
		line = enumMarker.ReplaceAllString(line, "")
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == alternatives {
			break
		}
	}
	return out
}

// dedupe drops case-insensitive repeats, keeping the first occurrence.
func dedupe(queries []string) []string {
	seen := make(map[string]bool, len(queries))
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		key := strings.ToLower(q)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}

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


package web

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/poiesic/juris/core"
	"golang.org/x/time/rate"
)

// Fallback defaults.
const (
	DefaultMinContextLength = 100
	DefaultMaxQueries       = 2
	DefaultMaxResults       = 3
	DefaultContentLength    = 600
	DefaultTimeout          = 30 * time.Second

	// RegionSuffix is appended to every web query.
	RegionSuffix = " Québec Canada"

	separator    = "\n\n---\n\n"
	untitledPage = "Sans titre"
)

// FallbackDecider gates and runs the web search.
type FallbackDecider struct {
	searcher      Searcher
	minContext    int
	maxQueries    int
	maxResults    int
	contentLength int
	timeout       time.Duration
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// Option configures a FallbackDecider.
type Option func(*FallbackDecider) error

// WithMinContextLength sets the context length below which the web is searched.
func WithMinContextLength(n int) Option {
	return func(d *FallbackDecider) error {
		if n < 0 {
			return fmt.Errorf("min context length cannot be negative, got %d", n)
		}
		d.minContext = n
		return nil
	}
}

// WithMaxQueries sets how many expanded queries are sent to the web.
func WithMaxQueries(n int) Option {
	return func(d *FallbackDecider) error {
		if n < 1 {
			return fmt.Errorf("max queries must be positive, got %d", n)
		}
		d.maxQueries = n
		return nil
	}
}

// WithRateLimit throttles outbound searches across all requests.
// Default is one search per second with a burst of DefaultMaxQueries.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(d *FallbackDecider) error {
		if perSecond <= 0 || burst < 1 {
			return fmt.Errorf("invalid rate limit %v/%d", perSecond, burst)
		}
		d.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}

// WithTimeout bounds each search call.
func WithTimeout(t time.Duration) Option {
	return func(d *FallbackDecider) error {
		if t <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", t)
		}
		d.timeout = t
		return nil
	}
}

// WithLogger sets a custom logger. A nil logger selects the default.
func WithLogger(logger *slog.Logger) Option {
	return func(d *FallbackDecider) error {
		if logger == nil {
			logger = slog.Default().With("component", "web-fallback")
		}
		d.logger = logger
		return nil
	}
}

// NewFallbackDecider creates a decider that searches with searcher.
func NewFallbackDecider(searcher Searcher, opts ...Option) (*FallbackDecider, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	d := &FallbackDecider{
		searcher:      searcher,
		minContext:    DefaultMinContextLength,
		maxQueries:    DefaultMaxQueries,
		maxResults:    DefaultMaxResults,
		contentLength: DefaultContentLength,
		timeout:       DefaultTimeout,
		limiter:       rate.NewLimiter(rate.Limit(1), DefaultMaxQueries),
		logger:        slog.Default().With("component", "web-fallback"),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ShouldFallback reports whether the knowledge base context is too short.
func (d *FallbackDecider) ShouldFallback(contextText string) bool {
	return utf8.RuneCountInString(contextText) < d.minContext
}

// Search queries the web for the first few queries and returns the joined
// result blocks. Failed calls contribute nothing.
func (d *FallbackDecider) Search(ctx context.Context, queries []string) string {
	if len(queries) > d.maxQueries {
		queries = queries[:d.maxQueries]
	}

	var blocks []string
	for _, q := range queries {
		if err := d.limiter.Wait(ctx); err != nil {
			d.logger.Warn("web search throttled", "err", err)
			break
		}
		results, err := d.searchOne(ctx, q+RegionSuffix)
		if err != nil {
			d.logger.Error("web search failed", "query", q, "err", err)
			continue
		}
		for _, r := range results {
			blocks = append(blocks, d.format(r))
		}
	}
	d.logger.Info("web context gathered", "results", len(blocks))
	return strings.Join(blocks, separator)
}

func (d *FallbackDecider) searchOne(ctx context.Context, query string) ([]core.WebResult, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	results, err := d.searcher.Search(ctx, query, d.maxResults)
	if err != nil {
		return nil, err
	}
	if len(results) > d.maxResults {
		results = results[:d.maxResults]
	}
	return results, nil
}

func (d *FallbackDecider) format(r core.WebResult) string {
	content := r.Content
	if utf8.RuneCountInString(content) > d.contentLength {
		content = string([]rune(content)[:d.contentLength])
	}
	title := r.Title
	if title == "" {
		title = untitledPage
	}
	return fmt.Sprintf("Source: %s\nTitre: %s\nTexte: %s", r.URL, title, content)
}

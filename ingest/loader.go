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


package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/storage"
)

// DefaultBatchSize is the number of passages embedded per call.
const DefaultBatchSize = 100

const maxLineSize = 4 << 20

// Record is one line of the JSON Lines input.
type Record struct {
	Namespace  string            `json:"namespace,omitempty"`
	Source     string            `json:"source"`
	Article    string            `json:"article,omitempty"`
	ArticleNum string            `json:"article_num,omitempty"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Stats summarizes a load.
type Stats struct {
	Read    int
	Loaded  int
	Skipped int
	Batches int
}

// Loader reads passages and writes them to a repository.
type Loader struct {
	processor *BatchProcessor
	batchSize int
	policy    RetryPolicy
	namespace string
	progress  io.Writer
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithBatchSize sets the number of passages per embedding call.
func WithBatchSize(n int) Option {
	return func(l *Loader) error {
		if n < 1 {
			return fmt.Errorf("batch size must be positive, got %d", n)
		}
		l.batchSize = n
		return nil
	}
}

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(l *Loader) error {
		if p.MaxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		l.policy = p
		return nil
	}
}

// WithNamespace sets the namespace of records that do not name one.
func WithNamespace(ns string) Option {
	return func(l *Loader) error {
		l.namespace = ns
		return nil
	}
}

// WithProgress reports progress to w.
func WithProgress(w io.Writer) Option {
	return func(l *Loader) error {
		l.progress = w
		return nil
	}
}

// WithLogger sets a custom logger. A nil logger selects the default.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default().With("component", "ingest")
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a loader writing to repo.
func NewLoader(repo storage.PassageRepository, embedder ai.Embedder, opts ...Option) (*Loader, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	l := &Loader{
		batchSize: DefaultBatchSize,
		policy:    DefaultRetryPolicy,
		logger:    slog.Default().With("component", "ingest"),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	l.processor = NewBatchProcessor(repo, embedder, l.policy, l.logger)
	return l, nil
}

// Run loads every record read from r. Records without text or source are
// skipped. A failed batch aborts the load.
func (l *Loader) Run(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats
	records, err := ReadRecords(r)
	if err != nil {
		return stats, err
	}
	stats.Read = len(records)

	passages := make([]*core.Passage, 0, len(records))
	for _, rec := range records {
		p := l.toPassage(rec)
		if strings.TrimSpace(p.Text) == "" || strings.TrimSpace(p.Source) == "" {
			l.logger.Warn("skipping record without text or source", "source", p.Source, "article", p.Article)
			stats.Skipped++
			continue
		}
		passages = append(passages, p)
	}

	progress := NewProgress(l.progress, "passages", len(passages), l.batchSize)
	progress.Start()
	for start := 0; start < len(passages); start += l.batchSize {
		end := min(start+l.batchSize, len(passages))
		if err := l.processor.Process(ctx, passages[start:end]); err != nil {
			return stats, fmt.Errorf("batch starting at passage %d: %w", start, err)
		}
		stats.Batches++
		stats.Loaded += end - start
		progress.Add(end - start)
	}
	progress.Finish()

	l.logger.Info("load complete", "read", stats.Read, "loaded", stats.Loaded, "skipped", stats.Skipped, "elapsed", progress.Elapsed())
	return stats, nil
}

func (l *Loader) toPassage(rec Record) *core.Passage {
	ns := rec.Namespace
	if ns == "" {
		ns = l.namespace
	}
	num := rec.ArticleNum
	if num == "" {
		num, _ = core.ArticleNumber(rec.Article)
	}
	return &core.Passage{
		Namespace:  ns,
		Source:     rec.Source,
		Article:    rec.Article,
		ArticleNum: num,
		Text:       rec.Text,
		Metadata:   rec.Metadata,
	}
}

// ReadRecords decodes JSON Lines. Blank lines are ignored.
func ReadRecords(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []Record
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

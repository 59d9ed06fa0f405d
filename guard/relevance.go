package guard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/juris/ai"
)

// DefaultCallTimeout bounds each external call made by the guard.
const DefaultCallTimeout = 30 * time.Second

// RelevanceClassifier asks a completion model whether a question is about
// Quebec or Canadian law. It fails open: any error admits the query.
type RelevanceClassifier struct {
	completer ai.Completer
	timeout   time.Duration
	logger    *slog.Logger
}

// ClassifierOption configures a RelevanceClassifier.
type ClassifierOption func(*RelevanceClassifier) error

// WithClassifierTimeout bounds each classification call.
func WithClassifierTimeout(d time.Duration) ClassifierOption {
	return func(c *RelevanceClassifier) error {
		if d > 0 {
			c.timeout = d
		}
		return nil
	}
}

// WithClassifierLogger sets a custom logger. A nil logger selects the default.
func WithClassifierLogger(logger *slog.Logger) ClassifierOption {
	return func(c *RelevanceClassifier) error {
		if logger == nil {
			logger = slog.Default().With("component", "relevance-classifier")
		}
		c.logger = logger
		return nil
	}
}

// NewRelevanceClassifier creates a classifier over completer.
func NewRelevanceClassifier(completer ai.Completer, opts ...ClassifierOption) (*RelevanceClassifier, error) {
	c := &RelevanceClassifier{
		completer: completer,
		timeout:   DefaultCallTimeout,
		logger:    slog.Default().With("component", "relevance-classifier"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// IsInDomain reports whether the model answered OUI.
func (c *RelevanceClassifier) IsInDomain(ctx context.Context, query string) bool {
	prompt, err := relevancePrompt.Format(map[string]any{"query": query})
	if err != nil {
		c.logger.Error("failed to render relevance prompt, admitting query", "err", err)
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	answer, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		c.logger.Error("relevance classification failed, admitting query", "err", err)
		return true
	}

	if strings.Contains(strings.ToUpper(strings.TrimSpace(answer)), "OUI") {
		c.logger.Debug("query classified as legal", "query", truncateRunes(query, 100))
		return true
	}
	c.logger.Info("query classified as non-legal", "query", truncateRunes(query, 100))
	return false
}

package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/storage"
)

// BatchProcessor embeds and stores one batch of passages.
type BatchProcessor struct {
	repo     storage.PassageRepository
	embedder ai.Embedder
	policy   RetryPolicy
	logger   *slog.Logger
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(repo storage.PassageRepository, embedder ai.Embedder, policy RetryPolicy, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.Default().With("component", "ingest")
	}
	return &BatchProcessor{repo: repo, embedder: embedder, policy: policy, logger: logger}
}

// Process embeds the passage texts, normalizes the vectors and stores the passages.
func (bp *BatchProcessor) Process(ctx context.Context, passages []*core.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	var vectors [][]float32
	err := bp.policy.Retry(ctx, bp.logger, func(attempt int) error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.policy.MaxAttempts, err)
	}
	if len(vectors) != len(passages) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(passages), len(vectors))
	}

	for i := range passages {
		passages[i].Vector = core.NormalizeVector(vectors[i])
	}

	if _, err := bp.repo.AddPassages(ctx, passages...); err != nil {
		return fmt.Errorf("failed to store passages: %w", err)
	}
	return nil
}

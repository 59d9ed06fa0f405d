package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/juris/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// embedBatchSize caps the texts sent per request. Loader batches larger than
// this are split by langchaingo.
const embedBatchSize = 256

// Embedder implements ai.Embedder on an OpenAI-compatible embeddings endpoint.
// Search queries go through EmbedQuery, passages through EmbedDocuments.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
	logger   *slog.Logger
}

func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(tokenOrNone(config.EmbeddingAPIKey)),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(embedBatchSize),
	)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		model:    config.EmbeddingModel,
		logger:   slog.Default().With("component", "openai-embedder", "model", config.EmbeddingModel),
	}, nil
}

// NewEmbedder creates an embedder for config.EmbeddingModel.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText embeds one search query.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Error("failed to embed query", "err", err)
		return nil, err
	}
	if len(vec) == 0 {
		return nil, ErrShortEmbeddingResponse
	}
	e.logger.Debug("query embedded", "chars", len(text), "dim", len(vec), "took", time.Since(start))
	return vec, nil
}

// EmbedTexts embeds passages, preserving order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	start := time.Now()
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to embed passages", "count", len(texts), "err", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d for %d texts", ErrShortEmbeddingResponse, len(vectors), len(texts))
	}
	e.logger.Debug("passages embedded", "count", len(texts), "took", time.Since(start))
	return vectors, nil
}

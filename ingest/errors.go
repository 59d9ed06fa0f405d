package ingest

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when a retry policy allows no attempt.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrRepositoryRequired is returned when no passage repository is provided.
	ErrRepositoryRequired = errors.New("passage repository required")

	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmbeddingMismatch is returned when the embedder returns the wrong number of vectors.
	ErrEmbeddingMismatch = errors.New("embedding count mismatch")
)

package retrieval

import "errors"

var (
	// ErrSearcherRequired is returned when no vector searcher is provided.
	ErrSearcherRequired = errors.New("vector searcher required")

	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")
)

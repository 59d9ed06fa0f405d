package storage

import (
	"context"

	"github.com/poiesic/juris/core"
)

// VectorSearcher runs similarity queries against a passage index.
// Implementations must be thread-safe and support concurrent access.
type VectorSearcher interface {
	// Search returns up to req.TopK matches ordered by score (highest first).
	// Only passages in req.Namespace (when set) whose metadata equals every
	// entry of req.Filter are considered. Scores are cosine similarities.
	Search(ctx context.Context, req core.SearchRequest) ([]core.Match, error)
}

// PassageRepository provides operations for managing knowledge base passages.
type PassageRepository interface {
	VectorSearcher

	// AddPassages stores one or more passages, replacing any with the same ID.
	// Passages with ID=0 get a content-based ID.
	// Sets InsertedAt if not already set and normalizes vectors to unit length.
	// Returns the passages with IDs and timestamps populated.
	AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error)

	// GetPassage retrieves a single passage by ID.
	// Returns ErrNotFound if the passage doesn't exist.
	GetPassage(ctx context.Context, id core.ID) (*core.Passage, error)

	// DeletePassages removes passages by their IDs.
	// Returns ErrNotFound if any passage doesn't exist.
	DeletePassages(ctx context.Context, ids ...core.ID) error

	// CountPassages returns the number of stored passages in namespace.
	// An empty namespace counts every passage.
	CountPassages(ctx context.Context, namespace string) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

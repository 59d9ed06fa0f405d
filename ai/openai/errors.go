package openai

import "errors"

// ErrShortEmbeddingResponse is returned when the service answers with fewer
// vectors than texts sent, or with an empty vector.
var ErrShortEmbeddingResponse = errors.New("embedding service returned fewer vectors than requested")

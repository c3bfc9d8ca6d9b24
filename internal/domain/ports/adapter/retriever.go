package adapter

import (
	"context"

	"asklaw-backend/internal/domain/model"
)

// Retriever is the port for vector-index similarity search.
//
// Retrieve returns up to topK passages ordered most-relevant first. An empty
// index is not an error: implementations return an empty slice and the
// pipeline still runs generation with empty context. Unreachable backends
// wrap domain.ErrRetrievalUnavailable.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) ([]model.Passage, error)
}

// Embedder turns text into a query vector for the retrieval backend.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

package agentports

import "context"

// Embedder generates embeddings for text content.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Dimension() int
}

// SearchResult represents a vector search hit.
type SearchResult struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// VectorIndex manages vector storage and similarity search.
type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float64, metadata map[string]string) error
	Query(ctx context.Context, query []float64, k int) ([]SearchResult, error)
	Delete(ctx context.Context, id string) error
}

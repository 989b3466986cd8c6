package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

// SimilarityRetriever implements the Retriever port over the vector index:
// the query is embedded and matched against indexed product descriptions.
type SimilarityRetriever struct {
	embedder ports.Embedder
	index    ports.VectorIndex
	topK     int
}

// NewSimilarityRetriever creates a similarity retriever returning the top k
// matches per query.
func NewSimilarityRetriever(embedder ports.Embedder, index ports.VectorIndex, topK int) *SimilarityRetriever {
	if topK <= 0 {
		topK = 5
	}
	return &SimilarityRetriever{embedder: embedder, index: index, topK: topK}
}

// Retrieve embeds the query and returns the nearest products as snippets,
// best match first.
func (r *SimilarityRetriever) Retrieve(ctx context.Context, query string) ([]ports.Snippet, error) {
	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vectors))
	}

	hits, err := r.index.Query(ctx, vectors[0], r.topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	snippets := make([]ports.Snippet, 0, len(hits))
	for _, hit := range hits {
		var sb strings.Builder
		fmt.Fprintf(&sb, "Product: %s\n", hit.Metadata["name"])
		fmt.Fprintf(&sb, "Brand: %s\n", hit.Metadata["brand"])
		fmt.Fprintf(&sb, "Department: %s\n", hit.Metadata["department"])
		fmt.Fprintf(&sb, "Price: $%s\n", hit.Metadata["price"])
		if desc := hit.Metadata["description"]; desc != "" {
			fmt.Fprintf(&sb, "Description: %s\n", desc)
		}
		fmt.Fprintf(&sb, "Similarity score: %.2f\n", hit.Score)
		snippets = append(snippets, ports.Snippet{
			Text:   sb.String(),
			Source: "similarity",
			Score:  hit.Score,
		})
	}
	return snippets, nil
}

// CatalogLister is the slice of the catalog store the indexer needs.
type CatalogLister interface {
	ListAll(ctx context.Context) ([]Product, error)
}

// IndexCatalog embeds every product description and loads the vector index.
// Intended for startup seeding; re-running upserts in place.
func IndexCatalog(ctx context.Context, catalog CatalogLister, embedder ports.Embedder, index ports.VectorIndex, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 32
	}
	products, err := catalog.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list catalog: %w", err)
	}

	indexed := 0
	for start := 0; start < len(products); start += batchSize {
		end := start + batchSize
		if end > len(products) {
			end = len(products)
		}
		batch := products[start:end]
		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.Describe()
		}
		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("embed batch: %w", err)
		}
		for i, p := range batch {
			metadata := map[string]string{
				"name":        p.Name,
				"brand":       p.Brand,
				"department":  p.Department,
				"price":       strconv.FormatFloat(p.Price, 'f', 2, 64),
				"description": p.Description,
			}
			id := strconv.FormatInt(p.ID, 10)
			if err := index.Upsert(ctx, id, vectors[i], metadata); err != nil {
				return indexed, fmt.Errorf("index product %s: %w", id, err)
			}
			indexed++
		}
	}
	return indexed, nil
}

// Ensure SimilarityRetriever implements the Retriever interface.
var _ ports.Retriever = (*SimilarityRetriever)(nil)

package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

// FlatIndex is an exact cosine-similarity index held in memory. Catalog sizes
// here are small enough that brute-force scan beats the bookkeeping cost of an
// approximate structure.
type FlatIndex struct {
	mu        sync.RWMutex
	dimension int
	ids       []string
	vectors   [][]float64
	norms     []float64
	metadata  map[string]map[string]string
	position  map[string]int
}

// NewFlatIndex creates an empty flat index for vectors of the given dimension.
func NewFlatIndex(dimension int) *FlatIndex {
	return &FlatIndex{
		dimension: dimension,
		metadata:  make(map[string]map[string]string),
		position:  make(map[string]int),
	}
}

// Upsert inserts or replaces a vector.
func (idx *FlatIndex) Upsert(ctx context.Context, id string, vector []float64, metadata map[string]string) error {
	if len(vector) != idx.dimension {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vector), idx.dimension)
	}
	norm := floats.Norm(vector, 2)
	if norm == 0 {
		return fmt.Errorf("cannot index zero vector %q", id)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if pos, ok := idx.position[id]; ok {
		idx.vectors[pos] = vector
		idx.norms[pos] = norm
	} else {
		idx.position[id] = len(idx.ids)
		idx.ids = append(idx.ids, id)
		idx.vectors = append(idx.vectors, vector)
		idx.norms = append(idx.norms, norm)
	}
	idx.metadata[id] = metadata
	return nil
}

// Query returns the k nearest vectors by cosine similarity, best first.
func (idx *FlatIndex) Query(ctx context.Context, query []float64, k int) ([]ports.SearchResult, error) {
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), idx.dimension)
	}
	queryNorm := floats.Norm(query, 2)
	if queryNorm == 0 {
		return nil, fmt.Errorf("cannot search with zero vector")
	}
	if k <= 0 {
		k = 5
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]ports.SearchResult, 0, len(idx.ids))
	for i, id := range idx.ids {
		score := floats.Dot(query, idx.vectors[i]) / (queryNorm * idx.norms[i])
		results = append(results, ports.SearchResult{
			ID:       id,
			Score:    score,
			Metadata: idx.metadata[id],
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Delete removes a vector from the index.
func (idx *FlatIndex) Delete(ctx context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	pos, ok := idx.position[id]
	if !ok {
		return nil
	}
	last := len(idx.ids) - 1
	if pos != last {
		idx.ids[pos] = idx.ids[last]
		idx.vectors[pos] = idx.vectors[last]
		idx.norms[pos] = idx.norms[last]
		idx.position[idx.ids[pos]] = pos
	}
	idx.ids = idx.ids[:last]
	idx.vectors = idx.vectors[:last]
	idx.norms = idx.norms[:last]
	delete(idx.position, id)
	delete(idx.metadata, id)
	return nil
}

// Ensure FlatIndex implements the VectorIndex interface.
var _ ports.VectorIndex = (*FlatIndex)(nil)

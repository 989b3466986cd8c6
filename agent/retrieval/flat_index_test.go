package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatIndex_QueryOrdersByCosine(t *testing.T) {
	ctx := context.Background()
	idx := NewFlatIndex(3)
	require.NoError(t, idx.Upsert(ctx, "a", []float64{1, 0, 0}, map[string]string{"name": "A"}))
	require.NoError(t, idx.Upsert(ctx, "b", []float64{0, 1, 0}, map[string]string{"name": "B"}))
	require.NoError(t, idx.Upsert(ctx, "c", []float64{0.7, 0.7, 0}, nil))

	results, err := idx.Query(ctx, []float64{1, 0.2, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "c", results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Equal(t, "A", results[0].Metadata["name"])
}

func TestFlatIndex_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	idx := NewFlatIndex(2)
	require.NoError(t, idx.Upsert(ctx, "a", []float64{1, 0}, nil))
	require.NoError(t, idx.Upsert(ctx, "a", []float64{0, 1}, nil))

	results, err := idx.Query(ctx, []float64{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestFlatIndex_DeleteKeepsRemainingConsistent(t *testing.T) {
	ctx := context.Background()
	idx := NewFlatIndex(2)
	require.NoError(t, idx.Upsert(ctx, "a", []float64{1, 0}, nil))
	require.NoError(t, idx.Upsert(ctx, "b", []float64{0, 1}, nil))
	require.NoError(t, idx.Upsert(ctx, "c", []float64{1, 1}, nil))

	// Delete from the middle: the swap must not corrupt positions.
	require.NoError(t, idx.Delete(ctx, "b"))

	results, err := idx.Query(ctx, []float64{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c", results[0].ID)
	assert.Equal(t, "a", results[1].ID)

	// Deleting again is a no-op.
	assert.NoError(t, idx.Delete(ctx, "b"))
}

func TestFlatIndex_Validation(t *testing.T) {
	ctx := context.Background()
	idx := NewFlatIndex(2)

	assert.Error(t, idx.Upsert(ctx, "a", []float64{1, 2, 3}, nil), "dimension mismatch")
	assert.Error(t, idx.Upsert(ctx, "a", []float64{0, 0}, nil), "zero vector")

	_, err := idx.Query(ctx, []float64{1}, 5)
	assert.Error(t, err, "query dimension mismatch")
	_, err = idx.Query(ctx, []float64{0, 0}, 5)
	assert.Error(t, err, "zero query vector")
}

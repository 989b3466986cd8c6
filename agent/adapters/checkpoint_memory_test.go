package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

func TestMemoryCheckpointStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCheckpointStore()

	require.NoError(t, store.Save(ctx, "c1", []byte(`{"phase":"clarification"}`)))
	raw, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, `{"phase":"clarification"}`, string(raw))

	require.NoError(t, store.Delete(ctx, "c1"))
	_, err = store.Load(ctx, "c1")
	assert.ErrorIs(t, err, ports.ErrCheckpointNotFound)
}

func TestMemoryCheckpointStore_LoadUnknown(t *testing.T) {
	store := NewMemoryCheckpointStore()
	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrCheckpointNotFound)
}

func TestMemoryCheckpointStore_CopiesBuffers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCheckpointStore()

	state := []byte("original")
	require.NoError(t, store.Save(ctx, "c1", state))
	state[0] = 'X'

	raw, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "original", string(raw))

	// Mutating the loaded copy must not affect the stored state either.
	raw[0] = 'Y'
	again, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "original", string(again))
}

func TestMemoryCheckpointStore_DeleteMissingIsNoop(t *testing.T) {
	store := NewMemoryCheckpointStore()
	assert.NoError(t, store.Delete(context.Background(), "missing"))
}

package adapters

import (
	"context"
	"sync"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

// MemoryCheckpointStore keeps serialized turn state in process memory. Turn
// state is exclusively owned by one conversation, so a single lock over the
// map is sufficient; there is no cross-key coordination.
type MemoryCheckpointStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryCheckpointStore creates an empty in-memory checkpoint store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{items: make(map[string][]byte)}
}

// Save stores a copy of the serialized state under the conversation id.
func (s *MemoryCheckpointStore) Save(ctx context.Context, conversationID string, state []byte) error {
	buf := make([]byte, len(state))
	copy(buf, state)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[conversationID] = buf
	return nil
}

// Load returns the serialized state for the conversation id.
func (s *MemoryCheckpointStore) Load(ctx context.Context, conversationID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.items[conversationID]
	if !ok {
		return nil, ports.ErrCheckpointNotFound
	}
	buf := make([]byte, len(raw))
	copy(buf, raw)
	return buf, nil
}

// Delete removes the checkpoint for the conversation id, if present.
func (s *MemoryCheckpointStore) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, conversationID)
	return nil
}

// Ensure MemoryCheckpointStore implements the CheckpointStore interface.
var _ ports.CheckpointStore = (*MemoryCheckpointStore)(nil)

package agentports

import (
	"context"
	"errors"
)

// ErrCheckpointNotFound is returned by Load when no checkpoint exists for the
// given conversation id.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// CheckpointStore durably persists serialized turn state keyed by conversation
// id so a suspended turn can resume after an arbitrary real-world delay.
// Implementations must support concurrent turns under distinct keys.
type CheckpointStore interface {
	Save(ctx context.Context, conversationID string, state []byte) error
	Load(ctx context.Context, conversationID string) ([]byte, error)
	Delete(ctx context.Context, conversationID string) error
}

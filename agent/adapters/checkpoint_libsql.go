package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
)

// LibSQLCheckpointStore implements CheckpointStore on embedded libsql so a
// suspended turn survives process restarts.
type LibSQLCheckpointStore struct {
	db *sql.DB
}

// NewLibSQLCheckpointStore creates a new libsql checkpoint store. The
// turn_checkpoints table is created by the migrations in agent/db.
func NewLibSQLCheckpointStore(db *sql.DB) *LibSQLCheckpointStore {
	return &LibSQLCheckpointStore{db: db}
}

// Save upserts the serialized turn state for the conversation id.
func (s *LibSQLCheckpointStore) Save(ctx context.Context, conversationID string, state []byte) error {
	query := `
		INSERT INTO turn_checkpoints (conversation_id, state_data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
		  state_data = excluded.state_data,
		  updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, conversationID, string(state), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Load returns the serialized turn state for the conversation id.
func (s *LibSQLCheckpointStore) Load(ctx context.Context, conversationID string) ([]byte, error) {
	var stateData string
	err := s.db.QueryRowContext(ctx,
		`SELECT state_data FROM turn_checkpoints WHERE conversation_id = ?`,
		conversationID,
	).Scan(&stateData)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return []byte(stateData), nil
}

// Delete removes the checkpoint for the conversation id, if present.
func (s *LibSQLCheckpointStore) Delete(ctx context.Context, conversationID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM turn_checkpoints WHERE conversation_id = ?`,
		conversationID,
	); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// PruneOlderThan garbage-collects checkpoints of abandoned turns. Returns the
// number of checkpoints removed.
func (s *LibSQLCheckpointStore) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM turn_checkpoints WHERE updated_at < ?`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune checkpoints: %w", err)
	}
	return res.RowsAffected()
}

// Ensure LibSQLCheckpointStore implements the CheckpointStore interface.
var _ ports.CheckpointStore = (*LibSQLCheckpointStore)(nil)

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Agent.LogLevel)
	assert.Equal(t, 20, cfg.Agent.ConversationWindow)
	assert.Equal(t, 3, cfg.Workflow.MaxCycles)
	assert.Equal(t, 24*time.Hour, cfg.Workflow.CheckpointTTL)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 1536, cfg.LLM.EmbeddingDims)
	assert.Equal(t, "data/catalog-agent.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agent:
  log_level: debug
  conversation_window: 8
workflow:
  max_cycles: 5
llm:
  model: gpt-4o
retrieval:
  top_k: 3
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Agent.LogLevel)
	assert.Equal(t, 8, cfg.Agent.ConversationWindow)
	assert.Equal(t, 5, cfg.Workflow.MaxCycles)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	// Unset keys keep their defaults.
	assert.Equal(t, "text-embedding-3-small", cfg.LLM.EmbeddingModel)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workflow:\n  max_cycles: 0\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

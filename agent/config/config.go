package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Agent     AgentConfig     `mapstructure:"agent"`
	Workflow  WorkflowConfig  `mapstructure:"workflow"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
}

// AgentConfig stores application-level settings.
type AgentConfig struct {
	LogLevel           string `mapstructure:"log_level"`           // zerolog level name
	EnableTracing      bool   `mapstructure:"enable_tracing"`      // span/event tracing
	ConversationWindow int    `mapstructure:"conversation_window"` // messages fed to each turn
}

// WorkflowConfig stores turn engine settings.
type WorkflowConfig struct {
	MaxCycles            int           `mapstructure:"max_cycles"`             // reasoning/answer passes per turn
	CheckpointTTL        time.Duration `mapstructure:"checkpoint_ttl"`         // abandoned-turn garbage collection
	CheckpointPruneEvery time.Duration `mapstructure:"checkpoint_prune_every"` // prune interval, 0 disables
}

// LLMConfig stores provider settings for an OpenAI-compatible endpoint.
type LLMConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	EmbeddingDims  int           `mapstructure:"embedding_dims"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig stores embedded libsql settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"` // path to .db file
}

// RetrievalConfig stores retriever settings.
type RetrievalConfig struct {
	TopK           int `mapstructure:"top_k"`            // similarity results per query
	IndexBatchSize int `mapstructure:"index_batch_size"` // embedding batch size at startup
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("agent.log_level", "info")
	v.SetDefault("agent.enable_tracing", true)
	v.SetDefault("agent.conversation_window", 20)

	v.SetDefault("workflow.max_cycles", 3)
	v.SetDefault("workflow.checkpoint_ttl", "24h")
	v.SetDefault("workflow.checkpoint_prune_every", "1h")

	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.embedding_model", "text-embedding-3-small")
	v.SetDefault("llm.embedding_dims", 1536)
	v.SetDefault("llm.timeout", "60s")

	v.SetDefault("database.path", "data/catalog-agent.db")

	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.index_batch_size", 32)

	v.SetEnvPrefix("CATALOG_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Workflow.MaxCycles < 1 {
		return fmt.Errorf("workflow.max_cycles must be >= 1, got %d", c.Workflow.MaxCycles)
	}
	if c.Agent.ConversationWindow < 1 {
		return fmt.Errorf("agent.conversation_window must be >= 1, got %d", c.Agent.ConversationWindow)
	}
	if c.LLM.EmbeddingDims < 1 {
		return fmt.Errorf("llm.embedding_dims must be >= 1, got %d", c.LLM.EmbeddingDims)
	}
	return nil
}

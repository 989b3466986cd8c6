package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ZanzyTHEbar/catalog-agent/agent/adapters"
	"github.com/ZanzyTHEbar/catalog-agent/agent/config"
	"github.com/ZanzyTHEbar/catalog-agent/agent/db"
	ports "github.com/ZanzyTHEbar/catalog-agent/agent/ports"
	"github.com/ZanzyTHEbar/catalog-agent/agent/retrieval"
	"github.com/ZanzyTHEbar/catalog-agent/agent/workflow"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	showTrace := flag.Bool("trace", false, "print the reasoning trace after each answer")
	flag.Parse()

	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Agent.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	log.Logger = logger

	if err := run(cfg, logger, *showTrace); err != nil {
		logger.Fatal().Err(err).Msg("agent exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger, showTrace bool) error {
	ctx := context.Background()

	database, err := db.Connect(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := db.Migrate(database); err != nil {
		return err
	}

	catalog := retrieval.NewCatalogStore(database)
	seeded, err := retrieval.SeedIfEmpty(ctx, catalog)
	if err != nil {
		return err
	}
	if seeded > 0 {
		logger.Info().Int("products", seeded).Msg("seeded fixture catalog")
	}

	apiKey := cfg.LLM.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	providerCfg := adapters.OpenAIConfig{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         apiKey,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		EmbeddingDims:  cfg.LLM.EmbeddingDims,
		Timeout:        cfg.LLM.Timeout,
	}
	provider := adapters.NewOpenAIProvider(providerCfg)
	embedder := adapters.NewOpenAIEmbedder(providerCfg)

	index := retrieval.NewFlatIndex(embedder.Dimension())
	indexed, err := retrieval.IndexCatalog(ctx, catalog, embedder, index, cfg.Retrieval.IndexBatchSize)
	if err != nil {
		return fmt.Errorf("index catalog: %w", err)
	}
	logger.Info().Int("products", indexed).Msg("vector index ready")

	var tracer ports.Tracer = adapters.NopTracer{}
	if cfg.Agent.EnableTracing {
		tracer = adapters.NewZerologTracer(logger)
	}

	checkpoints := adapters.NewLibSQLCheckpointStore(database)
	if cfg.Workflow.CheckpointPruneEvery > 0 {
		go pruneLoop(ctx, checkpoints, cfg.Workflow.CheckpointTTL, cfg.Workflow.CheckpointPruneEvery, logger)
	}

	engine := workflow.NewEngine(
		adapters.NewLLMReasoner(provider),
		adapters.NewLLMGenerator(provider),
		adapters.NewLLMJudge(provider),
		retrieval.NewStructuredRetriever(provider, catalog),
		retrieval.NewSimilarityRetriever(embedder, index, cfg.Retrieval.TopK),
		checkpoints,
		tracer,
		&workflow.Policy{MaxCycles: cfg.Workflow.MaxCycles},
		logger,
	)

	return chatLoop(ctx, engine, cfg.Agent.ConversationWindow, showTrace)
}

// chatLoop reads queries from stdin and runs each through the engine,
// pausing for clarification input whenever a turn suspends.
func chatLoop(ctx context.Context, engine *workflow.Engine, window int, showTrace bool) error {
	scanner := bufio.NewScanner(os.Stdin)
	var history []string

	fmt.Println("catalog-agent ready. Ask about the product catalog (ctrl-d to exit).")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}

		history = append(history, "user: "+query)
		if len(history) > window {
			history = history[len(history)-window:]
		}

		conversationID := uuid.NewString()
		result, err := engine.StartTurn(ctx, conversationID, history)
		for err == nil && result.Status == workflow.StatusNeedsClarification {
			fmt.Printf("clarification needed: %s\n? ", result.ClarificationPrompt)
			if !scanner.Scan() {
				return scanner.Err()
			}
			reply := strings.TrimSpace(scanner.Text())
			result, err = engine.ResumeTurn(ctx, conversationID, reply)
		}
		if err != nil {
			if errors.Is(err, workflow.ErrCollaboratorFault) {
				fmt.Println("a backend call failed; please try again.")
				log.Error().Err(err).Msg("turn failed")
				continue
			}
			return err
		}

		fmt.Println(result.Answer)
		if !result.QualityConfirmed {
			fmt.Println("(note: answer quality could not be confirmed)")
		}
		if showTrace {
			for i, entry := range result.Trace {
				fmt.Printf("  [%d] %s\n", i+1, entry)
			}
		}
		history = append(history, "assistant: "+result.Answer)
	}
	return scanner.Err()
}

// pruneLoop garbage-collects checkpoints of abandoned turns.
func pruneLoop(ctx context.Context, store *adapters.LibSQLCheckpointStore, ttl, every time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned, err := store.PruneOlderThan(ctx, ttl)
			if err != nil {
				logger.Warn().Err(err).Msg("checkpoint prune failed")
				continue
			}
			if pruned > 0 {
				logger.Info().Int64("pruned", pruned).Msg("removed abandoned checkpoints")
			}
		}
	}
}

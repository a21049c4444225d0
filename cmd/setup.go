package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	openai "github.com/sashabaranov/go-openai"

	"github.com/docfox/docfox/internal/config"
	"github.com/docfox/docfox/internal/database"
	"github.com/docfox/docfox/internal/embedding"
	"github.com/docfox/docfox/internal/knowledge"
	"github.com/docfox/docfox/internal/log"
)

// setupStore wires config, database, and embedder into a knowledge store.
// The returned pool must be closed by the caller.
func setupStore(ctx context.Context, cfg *config.Config, logger log.Logger) (*knowledge.Store, *pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	embedder, err := embedding.NewOpenAI(cfg.OpenAIAPIKey(), openai.EmbeddingModel(cfg.EmbedderModel), logger)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	store := knowledge.New(knowledge.NewPostgresQuerier(pool), embedder, uuid.NewString, logger)
	return store, pool, nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docfox/docfox/internal/config"
	"github.com/docfox/docfox/internal/database"
	"github.com/docfox/docfox/internal/faq"
)

var seedFAQCmd = &cobra.Command{
	Use:   "seed-faq",
	Short: "Seed the FAQ table with the curated starter entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSeedFAQ(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(seedFAQCmd)
}

func runSeedFAQ(ctx context.Context) error {
	logger := initLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	cache := faq.NewCache(faq.NewPostgresQuerier(pool), logger)
	added, err := cache.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seeding faq: %w", err)
	}

	logger.Info("faq seeded", "added", added)
	return nil
}

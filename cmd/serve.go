package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docfox/docfox/api"
	"github.com/docfox/docfox/internal/changelog"
	"github.com/docfox/docfox/internal/config"
	"github.com/docfox/docfox/internal/faq"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	logger := initLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.ServerAddr
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, pool, err := setupStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	server := api.NewServer(api.ServerConfig{
		Pool:      pool,
		Store:     store,
		FAQ:       faq.NewCache(faq.NewPostgresQuerier(pool), logger),
		Changelog: changelog.NewFetcher(nil, logger),
		Logger:    logger,
	})

	logger.Info("HTTP server ready",
		"addr", addr,
		"api", "/api/*",
		"health", "/health, /ready",
	)
	return server.Run(ctx, addr)
}

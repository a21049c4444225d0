// Package cmd contains the docfox command line interface.
//
// Following the pattern used by kubectl, hugo, and other standard Go CLI
// tools, all application logic is contained in the cmd package, leaving
// main.go as a minimal entry point.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/docfox/docfox/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "docfox",
	Short: "docfox - documentation retrieval backend",
	Long: `docfox indexes documentation into a pgvector-backed knowledge base and
serves semantic search, FAQ lookup, and SDK changelogs over a REST API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initLogger builds the process logger. Level is controlled by the DEBUG
// environment variable; output goes to stderr.
func initLogger() log.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	logger := log.New(cfg)
	slog.SetDefault(logger)
	return logger
}

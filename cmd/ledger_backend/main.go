package main

import (
	"log/slog"
	"os"

	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// @title Ledger Core API
// @version 1.0
// @description Double-entry ledger: accounts, journal entries and derived balances.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand runs the API server by default; migrate is a subcommand.
func newRootCommand() *cobra.Command {
	serve := newServeCommand()
	rootCmd := &cobra.Command{
		Use:     "ledger_backend",
		Short:   "Double-entry ledger API",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	rootCmd.AddCommand(serve, newMigrateCommand())
	return rootCmd
}

// newLogger builds the JSON stdout logger and makes it the process default.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		return nil, nil, err
	}
	return cfg, newLogger(cfg.LogLevel), nil
}

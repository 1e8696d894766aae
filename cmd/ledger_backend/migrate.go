package main

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_core/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(database.Up), string(database.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("PGSQL_URL must be set to run migrations")
			}

			db, err := database.OpenSQL(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := db.PingContext(cmd.Context()); err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to ping database for migrations: %w", err)
			}

			logger.Info("Running database migrations...", slog.String("direction", args[0]), slog.String("path", cfg.MigrationsPath))
			return database.Migrate(db, cfg.MigrationsPath, database.Direction(args[0]), logger)
		},
	}
}

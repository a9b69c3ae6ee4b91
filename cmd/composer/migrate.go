package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tm-acme-shop/smartfold-composer/internal/config"
	"github.com/tm-acme-shop/smartfold-composer/internal/logging"
	"github.com/tm-acme-shop/smartfold-composer/internal/repository"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the Postgres snapshot schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := logging.Configure(cfg.Logging.Level, cfg.Logging.Development); err != nil {
			return err
		}
		defer logging.Sync()

		db, err := initDatabase(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		return repository.RunMigrations(db, logging.New("migrate"))
	},
}

var purgeOlderThan time.Duration

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete Postgres drafts not updated within --older-than",
	RunE: func(cmd *cobra.Command, args []string) error {
		if purgeOlderThan <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}

		cfg := config.Load()
		if err := logging.Configure(cfg.Logging.Level, cfg.Logging.Development); err != nil {
			return err
		}
		defer logging.Sync()

		db, err := initDatabase(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		store := repository.NewPostgresStore(db, logging.New("postgres"))
		n, err := store.PurgeDraftsOlderThan(cmd.Context(), time.Now().Add(-purgeOlderThan))
		if err != nil {
			return err
		}

		logging.New("purge").Info("Drafts purged", zap.Int64("rows", n))
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d drafts\n", n)
		return nil
	},
}

func init() {
	purgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 30*24*time.Hour, "age of drafts to delete")
}

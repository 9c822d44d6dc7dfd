package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/stride/backend/internal/config"
	"github.com/JonnyWalker81/stride/backend/internal/logger"
	"github.com/JonnyWalker81/stride/backend/internal/repository/gormstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update tables for the postgres and sqlite store drivers.
The supabase driver manages its schema with Supabase migrations instead.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := setupLogger(cfg)

	if cfg.Store.Driver == config.StoreSupabase {
		return fmt.Errorf("migrate is not supported for the %s driver", cfg.Store.Driver)
	}

	db, err := gormstore.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return err
	}
	if err := gormstore.Migrate(db); err != nil {
		return err
	}

	log.Info("migration complete", logger.String("driver", cfg.Store.Driver))
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending database migrations against the PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, nil)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return oops.Code("CONFIG_INVALID").Errorf("database.url is required (set DECKFORGE_DATABASE_URL)")
			}

			if down {
				cmd.Println("Rolling back all migrations...")
				if err := migrateDown(cfg.DatabaseURL); err != nil {
					return err
				}
				cmd.Println("Rollback completed")
				return nil
			}

			cmd.Println("Running migrations...")
			if err := migrateUp(cfg.DatabaseURL); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations (destructive)")

	return cmd
}

func migrateUp(databaseURL string) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // close error is secondary to the migration result

	return migrator.Up()
}

func migrateDown(databaseURL string) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // close error is secondary to the migration result

	return migrator.Down()
}

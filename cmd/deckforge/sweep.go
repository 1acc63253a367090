// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/auth"
	authpg "github.com/deckforge/deckforge/internal/auth/postgres"
	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/store"
)

// NewSweepSessionsCmd creates the sweep-sessions subcommand.
// Expired refresh tokens are already rejected at use; the sweep exists
// to keep the table small and is meant to run on a schedule.
func NewSweepSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-sessions",
		Short: "Delete expired refresh tokens",
		Long: `Delete refresh token rows that are past their expiry. Intended to
run periodically (for example from cron); a row's expiry is also
enforced at presentation time, so skipping a sweep is safe.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, nil)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()

			pool, err := store.NewPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			sessions, err := auth.NewService(
				authpg.NewUserRepository(pool),
				authpg.NewRefreshTokenRepository(pool),
				authpg.NewTransactor(pool),
				auth.NewArgon2idHasher(),
				cfg.JWTSecret,
			)
			if err != nil {
				return err
			}

			deleted, err := sessions.DeleteExpiredSessions(ctx)
			if err != nil {
				return err
			}

			cmd.Println(fmt.Sprintf("Swept %d expired session(s)", deleted))
			return nil
		},
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the DeckForge CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deckforge",
		Short: "DeckForge - deck building backend",
		Long: `DeckForge is the backend for a deck-building card game: account
registration, session management with rotating refresh tokens, and
per-user deck storage over PostgreSQL.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSweepSessionsCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}

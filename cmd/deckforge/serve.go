// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/auth"
	authpg "github.com/deckforge/deckforge/internal/auth/postgres"
	catalogpg "github.com/deckforge/deckforge/internal/catalog/postgres"
	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/httpapi"
	"github.com/deckforge/deckforge/internal/logging"
	"github.com/deckforge/deckforge/internal/observability"
	"github.com/deckforge/deckforge/internal/store"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the JSON API server together with the metrics/health
endpoint. Configuration comes from the config file, DECKFORGE_*
environment variables, and flags, in that order.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, autoMigrate, cmd)
		},
	}

	// Flag names double as config keys for the posflag provider.
	cmd.Flags().String("listen.addr", "127.0.0.1:8080", "API listen address")
	cmd.Flags().String("metrics.addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log.format", "json", "log format (json or text)")
	cmd.Flags().String("log.level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "apply pending migrations before serving")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, autoMigrate bool, cmd *cobra.Command) error {
	logging.SetDefault("deckforge", version, cfg.LogFormat, cfg.LogLevel)

	slog.Info("starting deckforge",
		"listen_addr", cfg.ListenAddr,
		"metrics_addr", cfg.MetricsAddr,
	)

	if autoMigrate {
		if err := migrateUp(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	slog.Info("connected to database")

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

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured
	var obsServer *observability.Server
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			return pool.Ping(ctx) == nil
		})
		metrics = obsServer.Metrics()

		obsErrChan, err := obsServer.Start()
		if err != nil {
			return err
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	apiServer, err := httpapi.NewServer(cfg.ListenAddr, sessions, catalogpg.NewDeckRepository(pool), metrics, slog.Default())
	if err != nil {
		return err
	}
	apiErrChan, err := apiServer.Start()
	if err != nil {
		if obsServer != nil {
			stopServer(obsServer.Stop, "observability")
		}
		return err
	}
	go monitorServerErrors(ctx, cancel, apiErrChan, "api")

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("DeckForge started on " + apiServer.Addr())
	slog.Info("deckforge ready", "addr", apiServer.Addr())

	// Wait for shutdown signal or server failure
	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down...")

	stopServer(apiServer.Stop, "api")
	if obsServer != nil {
		stopServer(obsServer.Stop, "observability")
	}

	slog.Info("shutdown complete")
	return nil
}

// stopServer stops a server with a bounded timeout, logging failures
// instead of aborting the rest of the shutdown.
func stopServer(stop func(context.Context) error, name string) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := stop(shutdownCtx); err != nil {
		slog.Warn("error stopping server", "server", name, "error", err)
	}
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// This ensures that server failures trigger graceful shutdown of the entire process.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
		// Context cancelled, exit monitoring
	}
}

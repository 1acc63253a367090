// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/store"
)

// ServiceStatus holds the reachability and schema state of the service.
type ServiceStatus struct {
	Live             bool   `json:"live"`
	Ready            bool   `json:"ready"`
	MigrationVersion uint   `json:"migration_version"`
	MigrationDirty   bool   `json:"migration_dirty"`
	Error            string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of a running DeckForge server",
		Long: `Query the health endpoints of a running server and report the
database migration version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, statusCfg *statusConfig) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	status := queryServiceStatus(cfg)

	if statusCfg.jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(formatStatusTable(status))
	return nil
}

// queryServiceStatus probes the health endpoints and the migration
// table. Probe failures are reported, not fatal: a stopped server is a
// valid answer.
func queryServiceStatus(cfg *config.Config) ServiceStatus {
	var status ServiceStatus

	client := &http.Client{Timeout: 2 * time.Second}
	status.Live = probe(client, "http://"+cfg.MetricsAddr+"/healthz/liveness")
	status.Ready = probe(client, "http://"+cfg.MetricsAddr+"/healthz/readiness")

	if cfg.DatabaseURL == "" {
		status.Error = "database.url not configured; migration version unknown"
		return status
	}

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer migrator.Close() //nolint:errcheck // read-only probe

	version, dirty, err := migrator.Version()
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.MigrationVersion = version
	status.MigrationDirty = dirty

	return status
}

func probe(client *http.Client, url string) bool {
	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status ServiceStatus) string {
	var buf []byte
	w := tabwriter.NewWriter((*byteWriter)(&buf), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "CHECK\tSTATE")
	_, _ = fmt.Fprintln(w, "-----\t-----")
	_, _ = fmt.Fprintf(w, "liveness\t%s\n", upDown(status.Live))
	_, _ = fmt.Fprintf(w, "readiness\t%s\n", upDown(status.Ready))
	_, _ = fmt.Fprintf(w, "migration version\t%d\n", status.MigrationVersion)
	if status.MigrationDirty {
		_, _ = fmt.Fprintln(w, "migration state\tDIRTY")
	}
	if status.Error != "" {
		_, _ = fmt.Fprintf(w, "error\t%s\n", status.Error)
	}

	_ = w.Flush()
	return string(buf)
}

func upDown(ok bool) string {
	if ok {
		return "ok"
	}
	return "unreachable"
}

// byteWriter is a simple writer that appends to a byte slice.
type byteWriter []byte

func (w *byteWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}

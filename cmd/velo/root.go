// ABOUTME: Root Cobra command for the velo CLI.
// ABOUTME: Loads configuration and opens storage via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/velolab/velo/internal/config"
	"github.com/velolab/velo/internal/storage"
)

var (
	cfg    *config.Config
	db     *storage.DB
	dbPath string
)

var rootCmd = &cobra.Command{
	Use:   "velo",
	Short: "Cyclist performance test tracker",
	Long: `Velo tracks cyclist performance tests: incremental, Wingate and lab
protocols, with raw per-second samples and derived metrics.

QUICK START:

  $ velo user add coach@example.com --password s3cret --staff
  $ velo serve                              # Start the HTTP API
  $ velo ingest <session-id> ride.csv       # Import a sample file
  $ velo export json                        # Dump all data

SERVER:

  The API is served over HTTP with bearer-token auth. Set VELO_TOKEN_SECRET
  (or token_secret in the config file) before running 'velo serve'.
  Prometheus metrics are exposed at /metrics.

DATA STORAGE:

  Data is stored in SQLite at ~/.local/share/velo/velo.db.
  Configuration is read from ~/.config/velo/config.yaml and VELO_* env vars.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}

		db, err = storage.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db != nil {
			return db.Close()
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default: XDG data dir)")
}

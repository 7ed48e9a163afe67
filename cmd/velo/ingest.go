// ABOUTME: CLI command importing a local CSV sample file into a session.
// ABOUTME: Reports accepted and skipped rows, recomputing metrics by default.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/velolab/velo/internal/ingest"
)

var ingestNoMetrics bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <session-id> <file.csv>",
	Short: "Import a CSV sample file into a session",
	Long: `Import raw performance samples from a CSV file.

The file must have a header row with the columns time, Power, Oxygen,
Cadence, HR and RF. Rows that fail to parse are skipped; the rest commit
as one batch. Session metrics are recomputed after import unless
--no-metrics is given.

EXAMPLES:

  velo ingest 6b79cd2e-... ride.csv
  velo ingest 6b79cd2e-... ride.csv --no-metrics`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid session id: %s", args[0])
		}

		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		pipeline := ingest.NewPipeline(db)
		result, err := pipeline.Ingest(sessionID, filepath.Base(args[1]), f, !ingestNoMetrics)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported %d sample(s)", result.AcceptedCount)
		if result.SkippedCount > 0 {
			color.Yellow("⚠ Skipped %d malformed row(s)", result.SkippedCount)
		}
		if result.MetricsComputed {
			fmt.Println("Metrics recomputed.")
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestNoMetrics, "no-metrics", false, "skip metric recomputation after import")
	rootCmd.AddCommand(ingestCmd)
}

// ABOUTME: CLI command exporting athletes, sessions and samples.
// ABOUTME: Supports JSON and YAML output, to stdout or a file.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export performance data",
	Long: `Export all athletes, sessions and samples.

FORMATS:

  json   Full JSON export (suitable for backup)
  yaml   YAML export (human-readable)

User accounts and password hashes are never exported.

EXAMPLES:

  velo export json                  # Export all data as JSON
  velo export json -o backup.json   # Save to file
  velo export yaml                  # Export as YAML`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml"},
	RunE: func(cmd *cobra.Command, args []string) error {
		export, err := db.GetAllData()
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		var data []byte
		switch args[0] {
		case "json":
			data, err = json.MarshalIndent(export, "", "  ")
		case "yaml":
			data, err = yaml.Marshal(export)
		default:
			return fmt.Errorf("unknown format: %s (use json or yaml)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

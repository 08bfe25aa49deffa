// migrate is the storage migration CLI: it repairs object keys written
// under legacy or malformed layouts and reclassifies files stuck under
// the unclassified marker.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env file if present; environment variables take precedence.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "err", err)
	}

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Repair and reclassify object keys in the label store",
		Long: `Repair object keys written under legacy or malformed layouts.

Pairs of image + annotation-JSON objects are moved to the canonical
{type}/{YYYY-MM}/{category1}/{category2}/{filename} layout, with the
category resolved from each pair's annotation labels.

ENVIRONMENT VARIABLES:
  CATEGORY_TABLE   Path to the label CSV (default: categories.csv)
  LABEL_ID_TABLE   Optional path to the numeric-ID JSON table
  STORAGE_URL      memory:// or s3://bucket?region=...&endpoint=...
  DATABASE_URL     Optional postgres URL checked by 'migrate check'

  Configuration can also be loaded from a .env file in the current
  directory; real environment variables override it.

Examples:
  # Preview a live-bucket migration without touching storage
  migrate scan --dry-run

  # Migrate pairs from a saved bucket listing
  migrate run --listing objects.ndjson

  # Re-run classification for pairs under the unclassified marker
  migrate reclassify

  # Group every non-canonical key by violation type
  migrate list --output objects.ndjson

  # Verify connectivity and category sources
  migrate check`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newScanCmd(),
		newReclassifyCmd(),
		newListCmd(),
		newCheckCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tendant/label-store/pkg/labelstore"
	"github.com/tendant/label-store/pkg/labelstore/category"
	"github.com/tendant/label-store/pkg/labelstore/config"
	"github.com/tendant/label-store/pkg/labelstore/metrics"
	"github.com/tendant/label-store/pkg/labelstore/migrate"
	"github.com/tendant/label-store/pkg/labelstore/objectkey"
	"github.com/tendant/label-store/pkg/labelstore/pairing"
)

// engine bundles the pieces every subcommand needs.
type engine struct {
	store labelstore.Store
	table *category.Table
	ids   category.IDTable
}

// newEngine loads configuration from the environment, loads the
// category sources, and probes store connectivity. Any failure here is
// fatal before a single pair is touched.
func newEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.Load(config.WithEnv(""))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	table, ids, err := cfg.BuildTables()
	if err != nil {
		return nil, fmt.Errorf("load category sources: %w", err)
	}

	store, err := cfg.BuildStore()
	if err != nil {
		return nil, fmt.Errorf("build store: %w", err)
	}
	if err := store.HeadBucket(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", labelstore.ErrStoreUnreachable, err)
	}

	return &engine{store: store, table: table, ids: ids}, nil
}

func (e *engine) orchestrator(dryRun bool) *migrate.Orchestrator {
	return migrate.New(e.store, e.table,
		migrate.WithIDTable(e.ids),
		migrate.WithDryRun(dryRun),
		migrate.WithMetrics(metrics.Init(nil)),
	)
}

func newRunCmd() *cobra.Command {
	var listingPath string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Migrate pairs from a saved bucket listing",
		Long: `Migrate file pairs taken from a saved bucket listing.

The listing is a JSON array of entries or one JSON object per line
('migrate list --output' produces this format). Entries already at
canonical keys are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listingPath == "" {
				return fmt.Errorf("--listing is required (use 'migrate scan' for a live-bucket run)")
			}
			data, err := os.ReadFile(listingPath)
			if err != nil {
				return fmt.Errorf("read listing: %w", err)
			}

			ctx := cmd.Context()
			eng, err := newEngine(ctx)
			if err != nil {
				return err
			}

			stats, err := eng.orchestrator(dryRun).RunListing(ctx, string(data))
			if err != nil {
				return err
			}
			fmt.Println(stats.Summary())
			return nil
		},
	}

	cmd.Flags().StringVar(&listingPath, "listing", "", "Path to the saved bucket listing")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log intended moves without touching storage")
	return cmd
}

func newScanCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the live bucket and migrate non-canonical pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := newEngine(ctx)
			if err != nil {
				return err
			}

			stats, err := eng.orchestrator(dryRun).RunScan(ctx)
			if err != nil {
				return err
			}
			fmt.Println(stats.Summary())
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log intended moves without touching storage")
	return cmd
}

func newReclassifyCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reclassify",
		Short: "Re-run classification for pairs under the unclassified marker",
		Long: `Reprocess file pairs currently stored under the unclassified
marker. Pairs whose labels now resolve to a category are moved; pairs
still unclassifiable are counted as skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := newEngine(ctx)
			if err != nil {
				return err
			}

			stats, err := eng.orchestrator(dryRun).RunReclassify(ctx)
			if err != nil {
				return err
			}
			fmt.Println(stats.Summary())
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log intended moves without touching storage")
	return cmd
}

func newListCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List non-canonical keys grouped by violation type",
		Long: `List every non-canonical key grouped by violation type without
mutating anything. With --output, keys are also written as one JSON
object per line, valid input for 'migrate run --listing'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := newEngine(ctx)
			if err != nil {
				return err
			}

			grouped, err := eng.orchestrator(false).ListViolations(ctx)
			if err != nil {
				return err
			}

			order := []objectkey.Violation{
				objectkey.ViolationOldTaskID,
				objectkey.ViolationOldFlat,
				objectkey.ViolationEncodedRoot,
				objectkey.ViolationUnknown,
			}
			total := 0
			for _, v := range order {
				keys := grouped[v]
				if len(keys) == 0 {
					continue
				}
				fmt.Printf("%s (%d):\n", v, len(keys))
				for _, key := range keys {
					fmt.Printf("  %s\n", key)
				}
				total += len(keys)
			}
			fmt.Printf("total non-canonical keys: %d\n", total)

			if outputPath == "" {
				return nil
			}
			return writeListing(outputPath, order, grouped)
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "Write keys as NDJSON to this file")
	return cmd
}

// writeListing emits one pairing.Entry JSON object per key so the file
// feeds directly into 'migrate run --listing'.
func writeListing(path string, order []objectkey.Violation, grouped map[objectkey.Violation][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, v := range order {
		for _, key := range grouped[v] {
			if err := enc.Encode(pairing.Entry{Key: key}); err != nil {
				return fmt.Errorf("write listing: %w", err)
			}
		}
	}
	return nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify category sources, store connectivity, and the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.WithEnv(""))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			table, ids, err := cfg.BuildTables()
			if err != nil {
				return fmt.Errorf("load category sources: %w", err)
			}
			fmt.Printf("category table: %d labels (%s)\n", table.Len(), cfg.CategoryTablePath)
			if cfg.LabelIDTablePath != "" {
				fmt.Printf("label-id table: %d entries (%s)\n", len(ids), cfg.LabelIDTablePath)
			}

			store, err := cfg.BuildStore()
			if err != nil {
				return fmt.Errorf("build store: %w", err)
			}
			ctx := cmd.Context()
			if err := store.HeadBucket(ctx); err != nil {
				return fmt.Errorf("object store unreachable: %w", err)
			}
			fmt.Printf("object store: ok (%s)\n", cfg.Storage.Type)

			if cfg.DatabaseType == "postgres" {
				if err := config.PingPostgres(cfg.DatabaseURL, cfg.DBSchema); err != nil {
					return fmt.Errorf("database unreachable: %w", err)
				}
				fmt.Println("database: ok (postgres)")
			}
			return nil
		},
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dbsmedya/goapriori/internal/database"
	"github.com/dbsmedya/goapriori/internal/lock"
	"github.com/dbsmedya/goapriori/internal/logger"
	"github.com/dbsmedya/goapriori/internal/store"
	"github.com/spf13/cobra"
)

var (
	loadJob   string
	loadTable string
	loadFile  string
	loadForce bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Import a CSV file into the dataset table",
	Long: `Load replaces a table with the contents of a CSV file. The header row
names the columns; every column is stored as text.

The load process follows these steps:
  1. Drop and recreate the table from the CSV header
  2. Insert rows in batches inside one transaction
  3. Skip rows with an empty cell or the wrong number of fields
     (or fail on them when load.skip_incomplete is false)
  4. Verify the stored row count matches the inserted rows

Example:
  goapriori load --config goapriori.yaml --job school --file INTEGRATED-DATASET.csv`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVarP(&loadJob, "job", "j", "",
		"Job whose table is loaded")
	loadCmd.Flags().StringVarP(&loadTable, "table", "t", "",
		"Table to load (overrides the job table)")
	loadCmd.Flags().StringVarP(&loadFile, "file", "f", "",
		"CSV file with a header row (required)")
	loadCmd.MarkFlagRequired("file")
	loadCmd.Flags().BoolVar(&loadForce, "force", false,
		"Load even if the table lock cannot be acquired (use with caution)")

	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	table := loadTable
	if table == "" {
		if loadJob == "" {
			return errors.New("either --job or --table is required")
		}
		job, err := cfg.GetJob(loadJob)
		if err != nil {
			return err
		}
		table = job.Table
	}

	f, err := os.Open(loadFile)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Infow("Starting load operation",
		"table", table,
		"file", loadFile,
	)

	ctx, stop := database.SignalContext(context.Background(), func(sig os.Signal) {
		log.Warnw("Received shutdown signal - rolling back load", "signal", sig.String())
	})
	defer stop()

	mgr, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer mgr.Close()

	loader, err := store.NewLoader(mgr.DB, mgr.Dialect, cfg.Load, log)
	if err != nil {
		return err
	}

	var stats *store.LoadStats
	err = withSnapshotLock(ctx, mgr, table, lock.TimeoutShort, loadForce, log, func() error {
		var loadErr error
		stats, loadErr = loader.Load(ctx, table, f)
		return loadErr
	})
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	// Display results
	cmd.Printf("\n=== Load Complete ===\n")
	cmd.Printf("Table: %s\n", stats.Table)
	cmd.Printf("Columns: %d\n", len(stats.Columns))
	cmd.Printf("Rows Read: %d\n", stats.RowsRead)
	cmd.Printf("Rows Inserted: %d\n", stats.RowsInserted)
	cmd.Printf("Rows Skipped: %d\n", stats.RowsSkipped)
	cmd.Printf("Duration: %s\n", stats.Duration)
	return nil
}

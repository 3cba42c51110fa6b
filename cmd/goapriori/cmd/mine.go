package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dbsmedya/goapriori/internal/database"
	"github.com/dbsmedya/goapriori/internal/lock"
	"github.com/dbsmedya/goapriori/internal/logger"
	"github.com/dbsmedya/goapriori/internal/metrics"
	"github.com/dbsmedya/goapriori/internal/report"
	"github.com/dbsmedya/goapriori/internal/runner"
	"github.com/spf13/cobra"
)

var (
	mineJob    string
	mineOutput string
	mineFormat string
	mineForce  bool
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine frequent itemsets and association rules for a job",
	Long: `Mine runs the level-wise Apriori search over the job's categories and
prints the frequent itemsets and the association rules above the
confidence threshold.

The mine process follows these steps:
  1. Build the category index from the distinct values of each column
  2. Count singletons, then join and prune candidates level by level
  3. Derive single-consequent rules from every frequent itemset
  4. Render both tables (or JSON) to stdout or --output

Example:
  goapriori mine --config goapriori.yaml --job school --support 0.07 --confidence 0.5`,
	RunE: runMine,
}

func init() {
	mineCmd.Flags().StringVarP(&mineJob, "job", "j", "",
		"Job name from configuration file (required)")
	mineCmd.MarkFlagRequired("job")

	mineCmd.Flags().StringVarP(&mineOutput, "output", "o", "",
		"Write the report to this file instead of stdout")
	mineCmd.Flags().StringVar(&mineFormat, "format", "",
		"Override output format (table, json)")
	mineCmd.Flags().BoolVar(&mineForce, "force", false,
		"Mine even if the table lock cannot be acquired (use with caution)")

	rootCmd.AddCommand(mineCmd)
}

func runMine(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	job, mining, err := jobSettings(cfg, mineJob)
	if err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Infow("Starting mine operation",
		"job", mineJob,
		"config", GetConfigFile(),
	)

	// Setup context with signal handling
	ctx, stop := database.SignalContext(context.Background(), func(sig os.Signal) {
		log.Warnw("Received shutdown signal - abandoning run", "signal", sig.String())
	})
	defer stop()

	mgr, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer mgr.Close()

	st, err := runner.OpenStore(mgr, mining.Engine, job.Table, log)
	if err != nil {
		return err
	}

	r, err := runner.New(mineJob, job, mining, st, log)
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	var collector *metrics.Collector
	if cfg.Metrics.Textfile != "" {
		collector = metrics.NewCollector(mineJob)
		r.SetMetrics(collector)
	}

	var result *runner.Result
	err = withSnapshotLock(ctx, mgr, job.Table, lock.TimeoutMedium, mineForce, log, func() error {
		var runErr error
		result, runErr = r.Run(ctx)
		return runErr
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Mining run cancelled by user")
			return nil
		}
		return err
	}

	opts := report.Options{Format: cfg.Output.Format, Color: cfg.Output.Color}
	if mineFormat != "" {
		opts.Format = mineFormat
	}
	path := cfg.Output.File
	if mineOutput != "" {
		path = mineOutput
	}

	rep := report.Build(result)
	if path != "" {
		opts.Color = false
		if err := report.WriteFile(path, rep, opts); err != nil {
			return err
		}
		cmd.Printf("Rules and frequent itemsets written to %s\n", path)
	} else if err := report.Write(outputWriter, rep, opts); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if collector != nil {
		if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warnw("Failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
		}
	}

	return nil
}

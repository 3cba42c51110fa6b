package cmd

import (
	"context"
	"fmt"

	"github.com/dbsmedya/goapriori/internal/logger"
	"github.com/dbsmedya/goapriori/internal/report"
	"github.com/dbsmedya/goapriori/internal/runner"
	"github.com/spf13/cobra"
)

var (
	inspectJob    string
	inspectFormat string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the category index and support count for a job",
	Long: `Inspect builds the category index for a job without mining it.

The output shows:
  - Total rows in the table
  - The absolute support count implied by the support threshold
  - Every category with its distinct values

Example:
  goapriori inspect --config goapriori.yaml --job school`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectJob, "job", "j", "",
		"Job name from configuration file (required)")
	inspectCmd.MarkFlagRequired("job")
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "",
		"Override output format (table, json)")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	job, mining, err := jobSettings(cfg, inspectJob)
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()
	mgr, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer mgr.Close()

	st, err := runner.OpenStore(mgr, mining.Engine, job.Table, log)
	if err != nil {
		return err
	}
	r, err := runner.New(inspectJob, job, mining, st, log)
	if err != nil {
		return err
	}

	insp, err := r.Inspect(ctx)
	if err != nil {
		return fmt.Errorf("inspection failed: %w", err)
	}

	opts := report.Options{Format: cfg.Output.Format, Color: cfg.Output.Color}
	if inspectFormat != "" {
		opts.Format = inspectFormat
	}
	return report.WriteInspection(outputWriter, report.BuildInspection(insp), opts)
}

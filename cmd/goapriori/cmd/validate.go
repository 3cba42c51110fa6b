package cmd

import (
	"context"
	"fmt"

	"github.com/dbsmedya/goapriori/internal/logger"
	"github.com/dbsmedya/goapriori/internal/runner"
	"github.com/spf13/cobra"
)

var validateSkipConnect bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and check every job against the database",
	Long: `Validate checks the configuration file and, unless --skip-connect is
given, checks every job against the source database.

Checks performed:
  - Configuration syntax, thresholds and required fields
  - Database connectivity
  - Table existence and that every category is a column
  - Each value belongs to exactly one category

Example:
  goapriori validate --config goapriori.yaml`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateSkipConnect, "skip-connect", false,
		"Only validate the configuration file")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	// Load and validate configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cmd.Printf("\n=== Configuration Validation ===\n")
	cmd.Printf("Config file: %s\n", configFile)
	cmd.Printf("Jobs found: %d\n\n", len(cfg.Jobs))

	if validateSkipConnect {
		cmd.Println("✅ Configuration is valid")
		return nil
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting validation checks...")

	ctx := context.Background()
	mgr, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer mgr.Close()

	// Validate each job
	hasErrors := false
	for _, jobName := range cfg.ListJobs() {
		job, mining, err := jobSettings(cfg, jobName)
		if err != nil {
			return err
		}
		cmd.Printf("--- Job: %s ---\n", jobName)
		cmd.Printf("Table: %s\n", job.Table)
		cmd.Printf("Categories: %d\n", len(job.Categories))

		st, err := runner.OpenStore(mgr, mining.Engine, job.Table, log)
		if err != nil {
			cmd.Printf("❌ Store setup failed: %v\n\n", err)
			hasErrors = true
			continue
		}
		r, err := runner.New(jobName, job, mining, st, log)
		if err != nil {
			cmd.Printf("❌ Job setup failed: %v\n\n", err)
			hasErrors = true
			continue
		}

		insp, err := r.Inspect(ctx)
		if err != nil {
			cmd.Printf("❌ Category index failed: %v\n\n", err)
			hasErrors = true
			continue
		}

		cmd.Printf("Rows: %d, distinct values: %d\n", insp.TotalRows, insp.Index.Size())
		cmd.Printf("✅ All checks passed\n\n")
	}

	if hasErrors {
		return fmt.Errorf("validation failed for one or more jobs")
	}

	cmd.Println("=== Validation Complete ===")
	cmd.Println("✅ All jobs validated successfully")
	return nil
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/goapriori/internal/config"
	"github.com/spf13/cobra"
)

var listJobsCmd = &cobra.Command{
	Use:   "list-jobs",
	Short: "List all jobs defined in configuration",
	Long: `List-jobs displays all mining jobs defined in the configuration file
along with their tables, categories and thresholds.

Example:
  goapriori list-jobs --config goapriori.yaml`,
	RunE: runListJobs,
}

func init() {
	rootCmd.AddCommand(listJobsCmd)
}

func runListJobs(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Job names are returned sorted
	jobNames := cfg.ListJobs()

	if len(jobNames) == 0 {
		cmd.Printf("No jobs defined in %s\n", configFile)
		return nil
	}

	cmd.Printf("Jobs defined in %s:\n\n", configFile)

	for i, jobName := range jobNames {
		job, err := cfg.GetJob(jobName)
		if err != nil {
			return fmt.Errorf("failed to get job %q: %w", jobName, err)
		}
		mining := job.GetJobMining(cfg.Mining)

		cmd.Printf("%d. %s\n", i+1, jobName)
		cmd.Printf("   Table:         %s\n", job.Table)
		cmd.Printf("   Categories:    %s (%d)\n", strings.Join(job.Categories, ", "), len(job.Categories))
		cmd.Printf("   Support:       %.2f%%\n", 100*mining.Support)
		cmd.Printf("   Confidence:    %.2f%%\n", 100*mining.Confidence)

		// Job-specific mining config
		if job.Mining != nil {
			cmd.Printf("   Mining:        Custom (engine=%s, cache_size=%d)\n",
				mining.Engine, mining.CacheSize)
		}

		// Add spacing between jobs
		if i < len(jobNames)-1 {
			cmd.Println()
		}
	}

	cmd.Printf("\nTotal: %d job(s)\n", len(jobNames))
	return nil
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile    string
	logLevel   string
	logFormat  string
	support    float64
	confidence float64
	cacheSize  int
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "goapriori",
	Short: "Frequent itemset and association rule miner for SQL tables",
	Long: `A CLI tool that mines frequent value combinations and high-confidence
association rules from the categorical columns of a single SQL table.

Features:
  - Level-wise Apriori search with at most one value per column in an itemset
  - Support counts answered by the database (MySQL, PostgreSQL, SQLite)
  - LRU cache for repeated support counts
  - CSV import with post-load row count verification
  - Table and JSON reports, Prometheus textfile metrics`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "goapriori.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Mining overrides
	rootCmd.PersistentFlags().Float64Var(&support, "support", 0,
		"Override minimum support as a fraction in (0,1]")
	rootCmd.PersistentFlags().Float64Var(&confidence, "confidence", 0,
		"Override minimum confidence as a fraction in (0,1]")
	rootCmd.PersistentFlags().IntVar(&cacheSize, "cache-size", -1,
		"Override support count cache entries (0 disables the cache)")

	// Output overrides
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored table headers")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel   string
	LogFormat  string
	Support    float64
	Confidence float64
	CacheSize  int
	NoColor    bool
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		Support:    support,
		Confidence: confidence,
		CacheSize:  cacheSize,
		NoColor:    noColor,
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dbsmedya/goapriori/internal/config"
	"github.com/dbsmedya/goapriori/internal/database"
	"github.com/dbsmedya/goapriori/internal/lock"
	"github.com/dbsmedya/goapriori/internal/logger"
)

// outputWriter is used for printing reports, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

// loadConfig reads the config file, applies CLI overrides and validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat, overrides.CacheSize, overrides.NoColor)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// jobSettings returns the job and its effective mining config. CLI flags win
// over the job override, which wins over the global mining section.
func jobSettings(cfg *config.Config, jobName string) (*config.JobConfig, config.MiningConfig, error) {
	job, err := cfg.GetJob(jobName)
	if err != nil {
		return nil, config.MiningConfig{}, err
	}

	overrides := GetCLIOverrides()
	mining := cfg.ApplyJobOverrides(jobName, overrides.Support, overrides.Confidence)
	if overrides.CacheSize >= 0 {
		mining.CacheSize = overrides.CacheSize
	}
	return job, mining, nil
}

// connect opens and pings the source database.
func connect(ctx context.Context, cfg *config.Config) (*database.Manager, error) {
	mgr := database.NewManager(cfg)
	if err := mgr.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := mgr.Ping(ctx); err != nil {
		mgr.Close()
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return mgr, nil
}

// withSnapshotLock runs fn while holding the advisory lock for table, so a
// load and a mining run never overlap on the same table.
func withSnapshotLock(ctx context.Context, mgr *database.Manager, table string, timeoutSeconds int, force bool, log *logger.Logger, fn func() error) error {
	if force {
		log.Warnw("Skipping advisory lock acquisition (--force flag used)", "table", table)
		return fn()
	}

	err := lock.WithTableLock(ctx, mgr.DB, mgr.Dialect, table, timeoutSeconds, func() error {
		log.Debugw("Acquired advisory lock for table", "table", table)
		return fn()
	})
	if errors.Is(err, lock.ErrLockTimeout) {
		return fmt.Errorf("table %q is in use by another goapriori instance (use --force to override)", table)
	}
	return err
}

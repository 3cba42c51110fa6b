// Package runner wires a mining job together: it builds the category index
// from the store, mines frequent itemsets, derives rules and records metrics.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dbsmedya/goapriori/internal/apriori"
	"github.com/dbsmedya/goapriori/internal/catindex"
	"github.com/dbsmedya/goapriori/internal/config"
	"github.com/dbsmedya/goapriori/internal/itemset"
	"github.com/dbsmedya/goapriori/internal/logger"
	"github.com/dbsmedya/goapriori/internal/metrics"
	"github.com/dbsmedya/goapriori/internal/oracle"
)

// Store is a dataset that can describe its columns and count rows.
// store.SQLStore, store.GormStore and oracle.Table all satisfy it.
type Store interface {
	catindex.Catalog
	oracle.Oracle
	Total(ctx context.Context) (int64, error)
}

// Result contains the outcome of one mining run.
type Result struct {
	RunID        string
	JobName      string
	Table        string
	StartedAt    time.Time
	CompletedAt  time.Time
	Duration     time.Duration
	Mining       config.MiningConfig
	Index        *catindex.Index
	Itemsets     *apriori.Result
	Rules        []apriori.Rule
	CacheEntries int
}

// Inspection describes a job's dataset without mining it.
type Inspection struct {
	JobName      string
	Table        string
	TotalRows    int64
	SupportCount int64
	Mining       config.MiningConfig
	Index        *catindex.Index
}

// Runner executes a single configured job against a store.
type Runner struct {
	jobName string
	job     config.JobConfig
	mining  config.MiningConfig
	store   Store
	metrics *metrics.Collector
	logger  *logger.Logger
}

// New creates a runner. mining is the effective configuration for the job
// (global, job override and CLI flags already merged).
func New(jobName string, job *config.JobConfig, mining config.MiningConfig, store Store, log *logger.Logger) (*Runner, error) {
	if job == nil {
		return nil, fmt.Errorf("job config is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if len(job.Categories) == 0 {
		return nil, fmt.Errorf("job %q: %w", jobName, catindex.ErrEmptyCategories)
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Runner{
		jobName: jobName,
		job:     *job,
		mining:  mining,
		store:   store,
		logger:  log.WithJob(jobName).WithTable(job.Table),
	}, nil
}

// SetMetrics attaches a collector. Without one, nothing is recorded.
func (r *Runner) SetMetrics(c *metrics.Collector) {
	r.metrics = c
}

func (r *Runner) categories() []itemset.Category {
	out := make([]itemset.Category, len(r.job.Categories))
	for i, c := range r.job.Categories {
		out[i] = itemset.Category(c)
	}
	return out
}

// Inspect loads the category index and the row count.
func (r *Runner) Inspect(ctx context.Context) (*Inspection, error) {
	idx, err := catindex.Load(ctx, r.store, r.categories())
	if err != nil {
		return nil, fmt.Errorf("failed to build category index: %w", err)
	}

	total, err := r.store.Total(ctx)
	if err != nil {
		return nil, err
	}

	return &Inspection{
		JobName:      r.jobName,
		Table:        r.job.Table,
		TotalRows:    total,
		SupportCount: apriori.SupportCount(r.mining.Support, total),
		Mining:       r.mining,
		Index:        idx,
	}, nil
}

// Run mines frequent itemsets and association rules for the job.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		JobName:   r.jobName,
		Table:     r.job.Table,
		StartedAt: time.Now(),
		Mining:    r.mining,
	}
	log := r.logger.WithRun(result.RunID)

	log.Infow("Starting mining run",
		"categories", r.job.Categories,
		"support", r.mining.Support,
		"confidence", r.mining.Confidence,
		"cache_size", r.mining.CacheSize,
	)

	insp, err := r.Inspect(ctx)
	if err != nil {
		return nil, err
	}
	result.Index = insp.Index
	log.Infow("Category index built",
		"values", insp.Index.Size(),
		"total_rows", insp.TotalRows,
		"support_count", insp.SupportCount,
	)

	counts, cache, err := r.oracleChain()
	if err != nil {
		return nil, err
	}

	miner, err := apriori.NewMiner(insp.Index, counts, insp.TotalRows, r.mining.Support, log)
	if err != nil {
		return nil, err
	}
	rules, err := apriori.NewRuleGenerator(insp.Index, counts, r.mining.Confidence, log)
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		miner.SetObserver(r.metrics)
		rules.SetObserver(r.metrics)
	}

	result.Itemsets, err = miner.Mine(ctx)
	if err != nil {
		return nil, fmt.Errorf("mining failed: %w", err)
	}

	result.Rules, err = rules.Generate(ctx, result.Itemsets)
	if err != nil {
		return nil, fmt.Errorf("rule generation failed: %w", err)
	}

	if cache != nil {
		result.CacheEntries = cache.Len()
	}
	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)
	r.metrics.RunObserved(insp.TotalRows, result.Duration)

	log.Infow("Mining run complete",
		"frequent_itemsets", result.Itemsets.Len(),
		"rules", len(result.Rules),
		"levels", len(result.Itemsets.Levels),
		"cached_counts", result.CacheEntries,
		"duration", result.Duration,
	)
	return result, nil
}

// oracleChain wraps the store with instrumentation and, when enabled, the
// count cache. The cache sits outermost so hits never reach the store.
func (r *Runner) oracleChain() (oracle.Oracle, *oracle.Cached, error) {
	var observer oracle.Observer
	if r.metrics != nil {
		observer = r.metrics
	}

	var counts oracle.Oracle = oracle.NewInstrumented(r.store, observer)
	if r.mining.CacheSize <= 0 {
		return counts, nil, nil
	}

	cache, err := oracle.NewCached(counts, r.mining.CacheSize, observer)
	if err != nil {
		return nil, nil, err
	}
	return cache, cache, nil
}

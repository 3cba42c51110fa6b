package apriori

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dbsmedya/goapriori/internal/catindex"
	"github.com/dbsmedya/goapriori/internal/itemset"
	"github.com/dbsmedya/goapriori/internal/logger"
	"github.com/dbsmedya/goapriori/internal/oracle"
)

// Observer receives per-level and rule telemetry. metrics.Collector
// implements it.
type Observer interface {
	LevelObserved(level, candidates, frequent int)
	RulesObserved(n int)
}

// Miner drives the level-wise search. It is single-threaded: level k+1 is
// generated only after every level k candidate has been counted.
type Miner struct {
	index     *catindex.Index
	oracle    oracle.Oracle
	generator *CandidateGenerator
	totalRows int64
	threshold float64
	support   int64
	logger    *logger.Logger
	observer  Observer
}

// NewMiner creates a miner for a dataset snapshot of totalRows rows. The
// absolute support count floor(threshold * totalRows) is fixed here.
func NewMiner(idx *catindex.Index, o oracle.Oracle, totalRows int64, threshold float64, log *logger.Logger) (*Miner, error) {
	if idx == nil {
		return nil, fmt.Errorf("category index is nil")
	}
	if o == nil {
		return nil, fmt.Errorf("oracle is nil")
	}
	if totalRows < 0 {
		return nil, fmt.Errorf("total rows cannot be negative: %d", totalRows)
	}
	if err := validateFraction("support threshold", threshold); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &Miner{
		index:     idx,
		oracle:    o,
		generator: NewCandidateGenerator(idx),
		totalRows: totalRows,
		threshold: threshold,
		support:   SupportCount(threshold, totalRows),
		logger:    log,
	}, nil
}

// SupportCount converts a support fraction into the minimum row count.
func SupportCount(threshold float64, totalRows int64) int64 {
	return int64(math.Floor(threshold * float64(totalRows)))
}

// SetObserver attaches a telemetry observer.
func (m *Miner) SetObserver(obs Observer) {
	m.observer = obs
}

// Support returns the absolute minimum count.
func (m *Miner) Support() int64 {
	return m.support
}

// Mine runs the level-wise loop until a level produces no candidates or no
// frequent itemsets.
func (m *Miner) Mine(ctx context.Context) (*Result, error) {
	result := newResult(m.totalRows, m.support, m.threshold)
	candidates := m.generator.Seed()

	m.logger.Infow("Starting frequent itemset search",
		"total_rows", m.totalRows,
		"threshold", m.threshold,
		"support_count", m.support,
		"values", len(candidates),
	)

	for level := 1; len(candidates) > 0; level++ {
		start := time.Now()
		levelLog := m.logger.WithLevel(level)

		frequent, err := m.filter(ctx, candidates, levelLog)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", level, err)
		}

		sets := make([]itemset.ItemSet, len(frequent))
		for i, fs := range frequent {
			sets[i] = fs.Items
			result.add(fs)
		}

		stats := LevelStats{
			Level:      level,
			Candidates: len(candidates),
			Frequent:   len(frequent),
			Duration:   time.Since(start),
		}
		result.Levels = append(result.Levels, stats)
		if m.observer != nil {
			m.observer.LevelObserved(level, stats.Candidates, stats.Frequent)
		}
		levelLog.Infow("Level complete",
			"candidates", stats.Candidates,
			"frequent", stats.Frequent,
			"duration", stats.Duration,
		)

		if len(frequent) == 0 {
			break
		}
		candidates = m.generator.Next(sets, level+1)
	}

	m.logger.Infow("Frequent itemset search complete",
		"frequent_itemsets", result.Len(),
		"levels", len(result.Levels),
	)
	return result, nil
}

// filter counts each candidate and keeps those meeting the support count.
// A kept itemset must also be backed by at least one row.
func (m *Miner) filter(ctx context.Context, candidates []itemset.ItemSet, log *logger.Logger) ([]FrequentItemSet, error) {
	var frequent []FrequentItemSet

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pred, err := m.index.Predicate(c)
		if err != nil {
			return nil, fmt.Errorf("invalid candidate: %w", err)
		}

		count, err := m.oracle.Count(ctx, pred)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c, err)
		}

		// Frequent itemsets must match at least one row, even when a tiny
		// threshold floors the support count to 0.
		if count >= m.support && count > 0 {
			frequent = append(frequent, FrequentItemSet{Items: c, Count: count})
			log.Debugw("Frequent", "itemset", c.String(), "count", count)
		} else {
			log.Debugw("Below support", "itemset", c.String(), "count", count)
		}
	}
	return frequent, nil
}

package apriori

import (
	"time"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/goapriori/internal/itemset"
)

// FrequentItemSet is an itemset with its exact row count.
type FrequentItemSet struct {
	Items itemset.ItemSet
	Count int64
}

// LevelStats describes one iteration of the level-wise loop.
type LevelStats struct {
	Level      int
	Candidates int
	Frequent   int
	Duration   time.Duration
}

// Result is the cumulative output of a mining run. Itemsets are keyed by
// content, so each is stored at most once, and iterate in the order they
// were found.
type Result struct {
	TotalRows int64
	Support   int64
	Threshold float64
	Levels    []LevelStats

	sets *orderedmap.OrderedMap[string, FrequentItemSet]
}

func newResult(totalRows, support int64, threshold float64) *Result {
	return &Result{
		TotalRows: totalRows,
		Support:   support,
		Threshold: threshold,
		sets:      orderedmap.NewOrderedMap[string, FrequentItemSet](),
	}
}

// add stores fs unless an equal itemset is already present.
func (r *Result) add(fs FrequentItemSet) bool {
	key := fs.Items.Key()
	if _, exists := r.sets.Get(key); exists {
		return false
	}
	r.sets.Set(key, fs)
	return true
}

// Len returns the number of frequent itemsets.
func (r *Result) Len() int {
	return r.sets.Len()
}

// Get returns the recorded entry for s.
func (r *Result) Get(s itemset.ItemSet) (FrequentItemSet, bool) {
	return r.sets.Get(s.Key())
}

// Contains reports whether s is frequent.
func (r *Result) Contains(s itemset.ItemSet) bool {
	_, ok := r.sets.Get(s.Key())
	return ok
}

// All returns every frequent itemset in discovery order.
func (r *Result) All() []FrequentItemSet {
	out := make([]FrequentItemSet, 0, r.sets.Len())
	for el := r.sets.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// OfSize returns the frequent itemsets with exactly k members.
func (r *Result) OfSize(k int) []FrequentItemSet {
	var out []FrequentItemSet
	for el := r.sets.Front(); el != nil; el = el.Next() {
		if el.Value.Items.Len() == k {
			out = append(out, el.Value)
		}
	}
	return out
}

// SupportFraction returns count / TotalRows, or 0 for an empty snapshot.
func (r *Result) SupportFraction(count int64) float64 {
	if r.TotalRows <= 0 {
		return 0
	}
	return float64(count) / float64(r.TotalRows)
}

// Package apriori implements level-wise frequent itemset mining over the
// columns of one table, and association rule induction from the result.
//
// Every itemset holds at most one value per category. Level k+1 candidates
// are produced from the frequent itemsets of level k by a join step
// (pairwise unions of size k+1 with unique categories) followed by a prune
// step (every k-subset must itself be frequent).
package apriori

import (
	"github.com/dbsmedya/goapriori/internal/catindex"
	"github.com/dbsmedya/goapriori/internal/itemset"
)

// CandidateGenerator implements the join and prune steps.
type CandidateGenerator struct {
	index *catindex.Index
}

// NewCandidateGenerator creates a generator that checks category
// uniqueness against idx.
func NewCandidateGenerator(idx *catindex.Index) *CandidateGenerator {
	return &CandidateGenerator{index: idx}
}

// Seed returns the level 1 candidates: one singleton per indexed value.
func (g *CandidateGenerator) Seed() []itemset.ItemSet {
	values := g.index.AllValues()
	seeds := make([]itemset.ItemSet, len(values))
	for i, v := range values {
		seeds[i] = itemset.New(v)
	}
	return seeds
}

// Join unions every unordered pair of frequent itemsets and keeps the
// unions of exactly size that have unique categories. Results are
// deduplicated and keep first-seen order.
func (g *CandidateGenerator) Join(frequent []itemset.ItemSet, size int) []itemset.ItemSet {
	seen := make(map[string]bool)
	var joined []itemset.ItemSet

	for i := 0; i < len(frequent); i++ {
		for j := i + 1; j < len(frequent); j++ {
			u := frequent[i].Union(frequent[j])
			if u.Len() != size || !g.index.HasUniqueCategories(u) {
				continue
			}
			key := u.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			joined = append(joined, u)
		}
	}
	return joined
}

// Prune drops every candidate that has a (size-1)-subset missing from
// frequent.
func (g *CandidateGenerator) Prune(candidates, frequent []itemset.ItemSet) []itemset.ItemSet {
	known := make(map[string]bool, len(frequent))
	for _, s := range frequent {
		known[s.Key()] = true
	}

	kept := make([]itemset.ItemSet, 0, len(candidates))
	for _, c := range candidates {
		if allSubsetsFrequent(c, known) {
			kept = append(kept, c)
		}
	}
	return kept
}

// Next produces the level size candidates from the frequent itemsets of
// level size-1. An empty result ends mining.
func (g *CandidateGenerator) Next(frequent []itemset.ItemSet, size int) []itemset.ItemSet {
	return g.Prune(g.Join(frequent, size), frequent)
}

func allSubsetsFrequent(c itemset.ItemSet, known map[string]bool) bool {
	for _, sub := range c.MaximalSubsets() {
		if !known[sub.Key()] {
			return false
		}
	}
	return true
}

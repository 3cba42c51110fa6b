// Package catindex maps every distinct value of the mined columns to the
// column it belongs to, and every column to its distinct values.
//
// The index is built once per mining run and is read-only afterwards.
package catindex

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dbsmedya/goapriori/internal/itemset"
)

// ErrUnknownCategory is returned when a requested category is not a column
// of the dataset.
var ErrUnknownCategory = errors.New("unknown category")

// ErrValueConflict is returned when the same value occurs in two categories.
var ErrValueConflict = errors.New("value belongs to more than one category")

// ErrEmptyCategories is returned when no category was requested.
var ErrEmptyCategories = errors.New("no categories requested")

// ConflictError describes a value observed in two different categories.
type ConflictError struct {
	Value  itemset.Value
	First  itemset.Category
	Second itemset.Category
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("value %q occurs in both %q and %q", e.Value, e.First, e.Second)
}

// Unwrap lets callers match ErrValueConflict with errors.Is.
func (e *ConflictError) Unwrap() error {
	return ErrValueConflict
}

// Catalog exposes the dataset metadata the index is built from.
type Catalog interface {
	Columns(ctx context.Context) ([]string, error)
	DistinctValues(ctx context.Context, category itemset.Category) ([]itemset.Value, error)
}

// Index is the bidirectional category/value association.
type Index struct {
	categories []itemset.Category
	values     map[itemset.Category][]itemset.Value
	owner      map[itemset.Value]itemset.Category
}

// Build creates an index from the distinct values observed per category.
// Categories keep the given order; values are sorted within a category.
func Build(categories []itemset.Category, observed map[itemset.Category][]itemset.Value) (*Index, error) {
	if len(categories) == 0 {
		return nil, ErrEmptyCategories
	}

	idx := &Index{
		categories: make([]itemset.Category, 0, len(categories)),
		values:     make(map[itemset.Category][]itemset.Value, len(categories)),
		owner:      make(map[itemset.Value]itemset.Category),
	}

	for _, cat := range categories {
		if _, dup := idx.values[cat]; dup {
			return nil, fmt.Errorf("category %q requested twice", cat)
		}

		distinct := itemset.New(observed[cat]...).Values()
		for _, v := range distinct {
			if prev, exists := idx.owner[v]; exists {
				return nil, &ConflictError{Value: v, First: prev, Second: cat}
			}
			idx.owner[v] = cat
		}

		idx.categories = append(idx.categories, cat)
		idx.values[cat] = distinct
	}

	return idx, nil
}

// Load queries the catalog for the distinct values of each category and
// builds the index. Categories that are not columns of the dataset fail
// with ErrUnknownCategory before any distinct query runs.
func Load(ctx context.Context, catalog Catalog, categories []itemset.Category) (*Index, error) {
	if len(categories) == 0 {
		return nil, ErrEmptyCategories
	}

	columns, err := catalog.Columns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset columns: %w", err)
	}
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	for _, cat := range categories {
		if !known[string(cat)] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
		}
	}

	observed := make(map[itemset.Category][]itemset.Value, len(categories))
	for _, cat := range categories {
		values, err := catalog.DistinctValues(ctx, cat)
		if err != nil {
			return nil, fmt.Errorf("failed to read distinct values of %q: %w", cat, err)
		}
		observed[cat] = values
	}

	return Build(categories, observed)
}

// Categories returns the indexed categories in their configured order.
func (idx *Index) Categories() []itemset.Category {
	out := make([]itemset.Category, len(idx.categories))
	copy(out, idx.categories)
	return out
}

// Values returns the distinct values of a category, sorted.
func (idx *Index) Values(cat itemset.Category) []itemset.Value {
	vals := idx.values[cat]
	out := make([]itemset.Value, len(vals))
	copy(out, vals)
	return out
}

// AllValues returns every indexed value, grouped by category in configured
// order and sorted within each category.
func (idx *Index) AllValues() []itemset.Value {
	out := make([]itemset.Value, 0, len(idx.owner))
	for _, cat := range idx.categories {
		out = append(out, idx.values[cat]...)
	}
	return out
}

// CategoryOf returns the owning category of a value.
func (idx *Index) CategoryOf(v itemset.Value) (itemset.Category, bool) {
	cat, ok := idx.owner[v]
	return cat, ok
}

// Size returns the number of distinct indexed values.
func (idx *Index) Size() int {
	return len(idx.owner)
}

// HasUniqueCategories reports whether no two members of s share a category.
// Members missing from the index make the itemset invalid.
func (idx *Index) HasUniqueCategories(s itemset.ItemSet) bool {
	seen := make(map[itemset.Category]bool, s.Len())
	for _, v := range s.Values() {
		cat, ok := idx.owner[v]
		if !ok || seen[cat] {
			return false
		}
		seen[cat] = true
	}
	return true
}

// Predicate converts an itemset into the equality conjunction the oracle
// evaluates.
func (idx *Index) Predicate(s itemset.ItemSet) (itemset.Predicate, error) {
	p := make(itemset.Predicate, s.Len())
	for _, v := range s.Values() {
		cat, ok := idx.owner[v]
		if !ok {
			return nil, fmt.Errorf("value %q is not indexed", v)
		}
		if prev, dup := p[cat]; dup {
			return nil, fmt.Errorf("itemset %s holds %q and %q for category %q", s, prev, v, cat)
		}
		p[cat] = v
	}
	return p, nil
}

// Describe renders a value as "category = value".
func (idx *Index) Describe(v itemset.Value) string {
	if cat, ok := idx.owner[v]; ok {
		return string(cat) + " = " + string(v)
	}
	return string(v)
}

// DescribeSet renders every member with Describe, ordered by category.
func (idx *Index) DescribeSet(s itemset.ItemSet) []string {
	vals := s.Values()
	sort.SliceStable(vals, func(i, j int) bool {
		return idx.position(vals[i]) < idx.position(vals[j])
	})
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = idx.Describe(v)
	}
	return out
}

// position is the configured rank of a value's category.
func (idx *Index) position(v itemset.Value) int {
	cat := idx.owner[v]
	for i, c := range idx.categories {
		if c == cat {
			return i
		}
	}
	return len(idx.categories)
}

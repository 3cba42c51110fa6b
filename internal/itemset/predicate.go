package itemset

import (
	"sort"
	"strings"
)

// Predicate is a conjunction of category = value equalities, one per
// category. The empty predicate matches every row.
type Predicate map[Category]Value

// Categories returns the constrained categories in ascending order.
func (p Predicate) Categories() []Category {
	cats := make([]Category, 0, len(p))
	for c := range p {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// Key returns a canonical string for the predicate, stable across map
// iteration order. It is used as a cache key.
func (p Predicate) Key() string {
	cats := p.Categories()
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c) + "=" + string(p[c])
	}
	return strings.Join(parts, keySeparator)
}

// String renders the predicate as "a = x AND b = y".
func (p Predicate) String() string {
	if len(p) == 0 {
		return "(all rows)"
	}
	cats := p.Categories()
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c) + " = " + string(p[c])
	}
	return strings.Join(parts, " AND ")
}

// Columns returns the categories as plain strings, ascending, together with
// their values in the same order. SQL backends use it to build statements.
func (p Predicate) Columns() ([]string, []interface{}) {
	cats := p.Categories()
	cols := make([]string, len(cats))
	args := make([]interface{}, len(cats))
	for i, c := range cats {
		cols[i] = string(c)
		args[i] = string(p[c])
	}
	return cols, args
}

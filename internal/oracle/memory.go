package oracle

import (
	"context"
	"fmt"

	"github.com/dbsmedya/goapriori/internal/itemset"
)

// Table is an in-memory dataset. It serves as both catalog and oracle and
// is used for small datasets and tests.
type Table struct {
	columns []string
	pos     map[itemset.Category]int
	rows    [][]itemset.Value
}

// NewTable creates an empty table with the given column names.
func NewTable(columns ...string) (*Table, error) {
	pos := make(map[itemset.Category]int, len(columns))
	for i, c := range columns {
		if _, dup := pos[itemset.Category(c)]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		pos[itemset.Category(c)] = i
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols, pos: pos}, nil
}

// Append adds one row. The number of values must match the columns.
func (t *Table) Append(values ...string) error {
	return t.AppendN(1, values...)
}

// AppendN adds the same row n times.
func (t *Table) AppendN(n int, values ...string) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	row := make([]itemset.Value, len(values))
	for i, v := range values {
		row[i] = itemset.Value(v)
	}
	for i := 0; i < n; i++ {
		t.rows = append(t.rows, row)
	}
	return nil
}

// Columns returns the column names.
func (t *Table) Columns(ctx context.Context) ([]string, error) {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out, nil
}

// DistinctValues returns the distinct non-empty values of a column, sorted.
func (t *Table) DistinctValues(ctx context.Context, c itemset.Category) ([]itemset.Value, error) {
	i, ok := t.pos[c]
	if !ok {
		return nil, fmt.Errorf("no such column %q", c)
	}
	seen := make([]itemset.Value, 0)
	for _, row := range t.rows {
		if row[i] != "" {
			seen = append(seen, row[i])
		}
	}
	return itemset.New(seen...).Values(), nil
}

// Total returns the number of rows.
func (t *Table) Total(ctx context.Context) (int64, error) {
	return int64(len(t.rows)), nil
}

// Count returns the number of rows matching every equality in p.
func (t *Table) Count(ctx context.Context, p itemset.Predicate) (int64, error) {
	type cond struct {
		col int
		val itemset.Value
	}
	conds := make([]cond, 0, len(p))
	for c, v := range p {
		i, ok := t.pos[c]
		if !ok {
			return 0, &QueryError{Predicate: p, Err: fmt.Errorf("no such column %q", c)}
		}
		conds = append(conds, cond{col: i, val: v})
	}

	var n int64
	for _, row := range t.rows {
		match := true
		for _, c := range conds {
			if row[c.col] != c.val {
				match = false
				break
			}
		}
		if match {
			n++
		}
	}
	return n, nil
}

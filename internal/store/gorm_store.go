package store

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"github.com/dbsmedya/goapriori/internal/itemset"
	"github.com/dbsmedya/goapriori/internal/oracle"
	"github.com/dbsmedya/goapriori/internal/sqlutil"
	"github.com/dbsmedya/goapriori/internal/types"
)

// GormStore answers the same queries as SQLStore through a gorm session.
// Predicates become gorm map conditions, so gorm does the quoting and binding.
type GormStore struct {
	db    *gorm.DB
	table string
}

// NewGormStore creates a store over table.
func NewGormStore(db *gorm.DB, table string) (*GormStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm session is nil")
	}
	if !sqlutil.IsValidIdentifier(table) {
		return nil, &sqlutil.InvalidIdentifierError{Name: table}
	}
	return &GormStore{db: db, table: table}, nil
}

// Columns returns the table's column names.
func (s *GormStore) Columns(ctx context.Context) ([]string, error) {
	colTypes, err := s.db.WithContext(ctx).Migrator().ColumnTypes(s.table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", s.table, err)
	}
	cols := make([]string, len(colTypes))
	for i, ct := range colTypes {
		cols[i] = ct.Name()
	}
	return cols, nil
}

// DistinctValues returns the distinct non-null, non-blank values of a column.
func (s *GormStore) DistinctValues(ctx context.Context, category itemset.Category) ([]itemset.Value, error) {
	col := string(category)
	if !sqlutil.IsValidIdentifier(col) {
		return nil, &sqlutil.InvalidIdentifierError{Name: col}
	}

	var raw []sql.NullString
	err := s.db.WithContext(ctx).Table(s.table).Distinct().Order(col).Pluck(col, &raw).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read values of %s.%s: %w", s.table, category, err)
	}

	cells := make([]interface{}, 0, len(raw))
	for _, r := range raw {
		if r.Valid {
			cells = append(cells, r.String)
		}
	}
	return types.ToValues(cells)
}

// Total returns the number of rows in the table.
func (s *GormStore) Total(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Table(s.table).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", s.table, err)
	}
	return n, nil
}

// Count returns the number of rows matching every equality in p.
func (s *GormStore) Count(ctx context.Context, p itemset.Predicate) (int64, error) {
	q := s.db.WithContext(ctx).Table(s.table)
	if len(p) > 0 {
		conds := make(map[string]interface{}, len(p))
		for c, v := range p {
			if !sqlutil.IsValidIdentifier(string(c)) {
				return 0, &oracle.QueryError{Predicate: p, Err: &sqlutil.InvalidIdentifierError{Name: string(c)}}
			}
			conds[string(c)] = string(v)
		}
		q = q.Where(conds)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, &oracle.QueryError{Predicate: p, Err: err}
	}
	return n, nil
}

// Package store serves the category catalog and support counts from a SQL
// table, and loads CSV datasets into one.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dbsmedya/goapriori/internal/itemset"
	"github.com/dbsmedya/goapriori/internal/logger"
	"github.com/dbsmedya/goapriori/internal/oracle"
	"github.com/dbsmedya/goapriori/internal/sqlutil"
	"github.com/dbsmedya/goapriori/internal/types"
)

// ErrVerificationFailed is returned when the stored row count does not match
// what the loader inserted.
var ErrVerificationFailed = errors.New("row count verification failed")

// SQLStore answers catalog and count queries with plain SQL over database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect sqlutil.Dialect
	table   string
	quoted  string
	logger  *logger.Logger
}

// NewSQLStore creates a store over table. The table name must be a plain identifier.
func NewSQLStore(db *sql.DB, dialect sqlutil.Dialect, table string, log *logger.Logger) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	quoted, err := dialect.QuoteSafe(table)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &SQLStore{
		db:      db,
		dialect: dialect,
		table:   table,
		quoted:  quoted,
		logger:  log.WithTable(table),
	}, nil
}

// Columns returns the table's column names in declaration order.
func (s *SQLStore) Columns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.quoted+" WHERE 1=0")
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", s.table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", s.table, err)
	}
	return cols, rows.Err()
}

// DistinctValues returns the distinct non-null, non-blank values of a column.
func (s *SQLStore) DistinctValues(ctx context.Context, category itemset.Category) ([]itemset.Value, error) {
	col, err := s.dialect.QuoteSafe(string(category))
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s", col, s.quoted, col, col)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read values of %s.%s: %w", s.table, category, err)
	}
	defer rows.Close()

	var cells []interface{}
	for rows.Next() {
		var cell interface{}
		if err := rows.Scan(&cell); err != nil {
			return nil, fmt.Errorf("failed to scan value of %s.%s: %w", s.table, category, err)
		}
		cells = append(cells, cell)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	values, err := types.ToValues(cells)
	if err != nil {
		return nil, fmt.Errorf("column %s.%s: %w", s.table, category, err)
	}
	s.logger.Debugw("Loaded distinct values", "category", category, "values", len(values))
	return values, nil
}

// Total returns the number of rows in the table.
func (s *SQLStore) Total(ctx context.Context) (int64, error) {
	n, err := s.scanCount(ctx, "SELECT COUNT(*) FROM "+s.quoted)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", s.table, err)
	}
	return n, nil
}

// Count returns the number of rows matching every equality in p. Errors are
// returned as *oracle.QueryError.
func (s *SQLStore) Count(ctx context.Context, p itemset.Predicate) (int64, error) {
	query, args, err := s.countQuery(p)
	if err != nil {
		return 0, &oracle.QueryError{Predicate: p, Err: err}
	}

	n, err := s.scanCount(ctx, query, args...)
	if err != nil {
		return 0, &oracle.QueryError{Predicate: p, Err: err}
	}
	s.logger.Debugw("Counted predicate", "predicate", p.String(), "count", n)
	return n, nil
}

// countQuery builds SELECT COUNT(*) with one bound equality per category.
func (s *SQLStore) countQuery(p itemset.Predicate) (string, []interface{}, error) {
	cols, args := p.Columns()
	query := "SELECT COUNT(*) FROM " + s.quoted
	if len(cols) == 0 {
		return query, nil, nil
	}

	conds := make([]string, len(cols))
	for i, c := range cols {
		q, err := s.dialect.QuoteSafe(c)
		if err != nil {
			return "", nil, err
		}
		conds[i] = q + " = " + s.dialect.Placeholder(i+1)
	}
	return query + " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (s *SQLStore) scanCount(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var raw interface{}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		return 0, err
	}
	return types.ToInt64(raw)
}

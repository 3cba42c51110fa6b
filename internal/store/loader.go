package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dbsmedya/goapriori/internal/config"
	"github.com/dbsmedya/goapriori/internal/logger"
	"github.com/dbsmedya/goapriori/internal/sqlutil"
)

// LoadStats contains statistics about a CSV import.
type LoadStats struct {
	Table        string
	Columns      []string
	RowsRead     int64
	RowsInserted int64
	RowsSkipped  int64
	Batches      int
	Duration     time.Duration
}

// Loader imports a CSV file with a header row into a freshly created table.
// Every column is stored as text.
type Loader struct {
	db             *sql.DB
	dialect        sqlutil.Dialect
	batchSize      int
	skipIncomplete bool
	logger         *logger.Logger
}

// NewLoader creates a loader from the load settings.
func NewLoader(db *sql.DB, dialect sqlutil.Dialect, cfg config.LoadConfig, log *logger.Logger) (*Loader, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Loader{
		db:             db,
		dialect:        dialect,
		batchSize:      cfg.BatchSize,
		skipIncomplete: cfg.SkipIncomplete,
		logger:         log,
	}, nil
}

// Load replaces table with the rows read from r, then verifies the stored
// row count. Rows with an empty cell or the wrong number of fields are
// skipped when skip_incomplete is set and rejected otherwise.
func (l *Loader) Load(ctx context.Context, table string, r io.Reader) (*LoadStats, error) {
	startTime := time.Now()
	log := l.logger.WithTable(table)

	quotedTable, err := l.dialect.QuoteSafe(table)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv input is empty")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	columns, quotedCols, err := l.parseHeader(header)
	if err != nil {
		return nil, err
	}

	stats := &LoadStats{Table: table, Columns: columns}

	// DDL runs outside the transaction: MySQL commits implicitly on it.
	if err := l.recreateTable(ctx, quotedTable, quotedCols); err != nil {
		return nil, err
	}
	log.Infof("Created table with %d text columns", len(columns))

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin load transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			log.Warn("Rolling back load transaction due to error")
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Errorf("Failed to rollback transaction: %v", rbErr)
			}
		}
	}()

	batch := make([][]string, 0, l.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := l.insertBatch(ctx, tx, quotedTable, quotedCols, batch)
		if err != nil {
			return err
		}
		stats.RowsInserted += n
		stats.Batches++
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load interrupted: %w", err)
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", stats.RowsRead+2, err)
		}
		stats.RowsRead++

		if reason := incomplete(record, len(columns)); reason != "" {
			if !l.skipIncomplete {
				return nil, fmt.Errorf("csv line %d: %s", stats.RowsRead+1, reason)
			}
			log.Debugf("Skipping csv line %d: %s", stats.RowsRead+1, reason)
			stats.RowsSkipped++
			continue
		}

		row := make([]string, len(record))
		for i, cell := range record {
			row[i] = strings.TrimSpace(cell)
		}
		batch = append(batch, row)
		if len(batch) == l.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit load transaction: %w", err)
	}
	tx = nil

	if err := l.verify(ctx, quotedTable, stats.RowsInserted); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(startTime)
	log.Infow("Load complete",
		"rows_read", stats.RowsRead,
		"rows_inserted", stats.RowsInserted,
		"rows_skipped", stats.RowsSkipped,
		"duration", stats.Duration,
	)
	return stats, nil
}

func (l *Loader) parseHeader(header []string) ([]string, []string, error) {
	columns := make([]string, len(header))
	quoted := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		q, err := l.dialect.QuoteSafe(name)
		if err != nil {
			return nil, nil, fmt.Errorf("csv header column %d: %w", i+1, err)
		}
		if seen[name] {
			return nil, nil, fmt.Errorf("csv header repeats column %q", name)
		}
		seen[name] = true
		columns[i] = name
		quoted[i] = q
	}
	return columns, quoted, nil
}

func (l *Loader) recreateTable(ctx context.Context, table string, cols []string) error {
	if _, err := l.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}

	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = c + " TEXT"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
	if _, err := l.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// insertBatch writes rows with one multi-row INSERT.
func (l *Loader) insertBatch(ctx context.Context, tx *sql.Tx, table string, cols []string, rows [][]string) (int64, error) {
	groups := make([]string, len(rows))
	args := make([]interface{}, 0, len(rows)*len(cols))
	for i, row := range rows {
		groups[i] = "(" + l.dialect.Placeholders(i*len(cols)+1, len(cols)) + ")"
		for _, v := range row {
			args = append(args, v)
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(cols, ", "), strings.Join(groups, ", "))
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert batch into %s: %w", table, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		// Not every driver reports it; trust the statement.
		return int64(len(rows)), nil
	}
	return n, nil
}

// verify compares COUNT(*) with the number of inserted rows.
func (l *Loader) verify(ctx context.Context, table string, expected int64) error {
	var count int64
	if err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	if count != expected {
		return fmt.Errorf("%w: %s has %d rows, inserted %d", ErrVerificationFailed, table, count, expected)
	}
	return nil
}

// incomplete reports why a record cannot be stored, or "" if it can.
func incomplete(record []string, width int) string {
	if len(record) != width {
		return fmt.Sprintf("has %d fields, header has %d", len(record), width)
	}
	for i, cell := range record {
		if strings.TrimSpace(cell) == "" {
			return fmt.Sprintf("field %d is empty", i+1)
		}
	}
	return ""
}

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dbsmedya/goapriori/internal/apriori"
	"github.com/dbsmedya/goapriori/internal/catindex"
	"github.com/dbsmedya/goapriori/internal/itemset"
	"github.com/dbsmedya/goapriori/internal/logger"
	"github.com/dbsmedya/goapriori/internal/oracle"
	"github.com/dbsmedya/goapriori/internal/sqlutil"
)

// newSchoolDB returns an in-memory SQLite database holding the ten-row
// two-category dataset, plus one row with a NULL cell.
func newSchoolDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	db, err := gdb.DB()
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, gdb.Exec(`CREATE TABLE school (dbn TEXT, cat1 TEXT, cat2 TEXT)`).Error)
	rows := []struct {
		n          int
		cat1, cat2 string
	}{
		{4, "a1", "b1"},
		{1, "a1", "b2"},
		{1, "a2", "b1"},
		{4, "a2", "b2"},
	}
	id := 0
	for _, r := range rows {
		for i := 0; i < r.n; i++ {
			id++
			require.NoError(t, gdb.Exec(`INSERT INTO school VALUES (?, ?, ?)`, id, r.cat1, r.cat2).Error)
		}
	}
	return gdb
}

func TestGormStore_CatalogAndCounts(t *testing.T) {
	gdb := newSchoolDB(t)
	s, err := NewGormStore(gdb, "school")
	require.NoError(t, err)
	ctx := context.Background()

	cols, err := s.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dbn", "cat1", "cat2"}, cols)

	values, err := s.DistinctValues(ctx, "cat2")
	require.NoError(t, err)
	assert.Equal(t, []itemset.Value{"b1", "b2"}, values)

	total, err := s.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)

	n, err := s.Count(ctx, itemset.Predicate{"cat1": "a1", "cat2": "b1"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = s.Count(ctx, itemset.Predicate{"cat1": "a1", "cat2": "zz"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = s.Count(ctx, itemset.Predicate{})
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
}

func TestGormStore_SkipsNullValues(t *testing.T) {
	gdb := newSchoolDB(t)
	require.NoError(t, gdb.Exec(`INSERT INTO school VALUES (99, NULL, 'b3')`).Error)

	s, err := NewGormStore(gdb, "school")
	require.NoError(t, err)

	values, err := s.DistinctValues(context.Background(), "cat1")
	require.NoError(t, err)
	assert.Equal(t, []itemset.Value{"a1", "a2"}, values)
}

func TestGormStore_UnknownColumnIsQueryError(t *testing.T) {
	s, err := NewGormStore(newSchoolDB(t), "school")
	require.NoError(t, err)

	_, err = s.Count(context.Background(), itemset.Predicate{"nope": "x"})

	var qe *oracle.QueryError
	assert.True(t, errors.As(err, &qe))
}

func TestNewGormStore_Validation(t *testing.T) {
	_, err := NewGormStore(nil, "school")
	assert.Error(t, err)

	_, err = NewGormStore(newSchoolDB(t), "school x")
	assert.IsType(t, &sqlutil.InvalidIdentifierError{}, err)
}

func TestStores_AgreeOnSQLite(t *testing.T) {
	gdb := newSchoolDB(t)
	db, err := gdb.DB()
	require.NoError(t, err)
	ctx := context.Background()

	sqlStore, err := NewSQLStore(db, sqlutil.SQLite, "school", logger.NewNop())
	require.NoError(t, err)
	gormStore, err := NewGormStore(gdb, "school")
	require.NoError(t, err)

	categories := []itemset.Category{"cat1", "cat2"}
	fromSQL, err := catindex.Load(ctx, sqlStore, categories)
	require.NoError(t, err)
	fromGorm, err := catindex.Load(ctx, gormStore, categories)
	require.NoError(t, err)
	assert.Equal(t, fromSQL.AllValues(), fromGorm.AllValues())

	for _, pred := range []itemset.Predicate{
		{},
		{"cat1": "a1"},
		{"cat2": "b2"},
		{"cat1": "a2", "cat2": "b2"},
		{"cat1": "a2", "cat2": "b1"},
	} {
		a, err := sqlStore.Count(ctx, pred)
		require.NoError(t, err)
		b, err := gormStore.Count(ctx, pred)
		require.NoError(t, err)
		assert.Equal(t, a, b, "predicate %s", pred)
	}
}

func TestStores_PaddedValuesMatchTheirRows(t *testing.T) {
	gdb := newSchoolDB(t)
	require.NoError(t, gdb.Exec(`DELETE FROM school`).Error)
	for i := 0; i < 5; i++ {
		require.NoError(t, gdb.Exec(`INSERT INTO school VALUES (?, ' a1', 'b1 ')`, i).Error)
	}
	require.NoError(t, gdb.Exec(`INSERT INTO school VALUES (5, 'a1', 'b1')`).Error)
	db, err := gdb.DB()
	require.NoError(t, err)
	ctx := context.Background()

	sqlStore, err := NewSQLStore(db, sqlutil.SQLite, "school", logger.NewNop())
	require.NoError(t, err)
	gormStore, err := NewGormStore(gdb, "school")
	require.NoError(t, err)

	for name, s := range map[string]interface {
		catindex.Catalog
		oracle.Oracle
	}{"sql": sqlStore, "gorm": gormStore} {
		t.Run(name, func(t *testing.T) {
			values, err := s.DistinctValues(ctx, "cat1")
			require.NoError(t, err)
			assert.Equal(t, []itemset.Value{" a1", "a1"}, values)

			idx, err := catindex.Load(ctx, s, []itemset.Category{"cat1", "cat2"})
			require.NoError(t, err)

			miner, err := apriori.NewMiner(idx, s, 6, 0.5, logger.NewNop())
			require.NoError(t, err)
			result, err := miner.Mine(ctx)
			require.NoError(t, err)

			fs, ok := result.Get(itemset.New(" a1", "b1 "))
			require.True(t, ok, "padded pair should be frequent")
			assert.Equal(t, int64(5), fs.Count)
			assert.False(t, result.Contains(itemset.New("a1", "b1")))
			assert.Equal(t, 3, result.Len())
		})
	}
}

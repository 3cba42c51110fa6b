package lock

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/goapriori/internal/sqlutil"
)

var (
	getLock     = regexp.QuoteMeta("SELECT GET_LOCK(?, ?)")
	releaseLock = regexp.QuoteMeta("SELECT RELEASE_LOCK(?)")
	pgTryLock   = regexp.QuoteMeta("SELECT pg_try_advisory_lock(hashtext($1))")
	pgUnlock    = regexp.QuoteMeta("SELECT pg_advisory_unlock(hashtext($1))")
)

func TestGenerateTableLockName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"school", "goapriori:table:school"},
		{"grades_2024", "goapriori:table:grades_2024"},
		{"bad name;drop", "goapriori:table:bad_name_drop"},
		{"", "goapriori:table:"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerateTableLockName(tt.input))
		})
	}
}

func TestMySQLLock_AcquireAndRelease(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	name := "goapriori:table:school"
	mock.ExpectQuery(getLock).WithArgs(name, TimeoutShort).
		WillReturnRows(sqlmock.NewRows([]string{"lock"}).AddRow(1))
	mock.ExpectQuery(releaseLock).WithArgs(name).
		WillReturnRows(sqlmock.NewRows([]string{"lock"}).AddRow(1))

	l := NewTableLock(db, sqlutil.MySQL, "school")
	assert.Equal(t, name, l.LockName())

	acquired, err := l.AcquireLock(context.Background(), TimeoutShort)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.True(t, l.IsHeld())

	// Re-acquiring a held lock does not hit the database
	acquired, err = l.AcquireLock(context.Background(), TimeoutShort)
	require.NoError(t, err)
	assert.True(t, acquired)

	released, err := l.ReleaseLock(context.Background())
	require.NoError(t, err)
	assert.True(t, released)
	assert.False(t, l.IsHeld())

	released, err = l.ReleaseLock(context.Background())
	require.NoError(t, err)
	assert.False(t, released, "releasing twice is a no-op")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLLock_Timeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(getLock).WillReturnRows(sqlmock.NewRows([]string{"lock"}).AddRow(0))

	l := NewTableLock(db, sqlutil.MySQL, "school")
	acquired, err := l.AcquireLock(context.Background(), TimeoutImmediate)

	require.NoError(t, err)
	assert.False(t, acquired)
	assert.False(t, l.IsHeld())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLLock_NullResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(getLock).WillReturnRows(sqlmock.NewRows([]string{"lock"}).AddRow(nil))

	_, err = NewTableLock(db, sqlutil.MySQL, "school").AcquireLock(context.Background(), TimeoutShort)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NULL")
}

func TestMySQLLock_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(getLock).WillReturnError(errors.New("connection refused"))

	_, err = NewTableLock(db, sqlutil.MySQL, "school").AcquireLock(context.Background(), TimeoutShort)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET_LOCK")
}

func TestPostgresLock_AcquireAndRelease(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	name := "goapriori:table:school"
	mock.ExpectQuery(pgTryLock).WithArgs(name).
		WillReturnRows(sqlmock.NewRows([]string{"ok"}).AddRow(true))
	mock.ExpectQuery(pgUnlock).WithArgs(name).
		WillReturnRows(sqlmock.NewRows([]string{"ok"}).AddRow(true))

	l := NewTableLock(db, sqlutil.Postgres, "school")
	acquired, err := l.AcquireLock(context.Background(), TimeoutShort)
	require.NoError(t, err)
	assert.True(t, acquired)

	released, err := l.ReleaseLock(context.Background())
	require.NoError(t, err)
	assert.True(t, released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLock_PollsUntilFree(t *testing.T) {
	old := pollInterval
	pollInterval = time.Millisecond
	defer func() { pollInterval = old }()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(pgTryLock).WillReturnRows(sqlmock.NewRows([]string{"ok"}).AddRow(false))
	mock.ExpectQuery(pgTryLock).WillReturnRows(sqlmock.NewRows([]string{"ok"}).AddRow(true))

	acquired, err := NewTableLock(db, sqlutil.Postgres, "school").AcquireLock(context.Background(), TimeoutShort)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLock_ImmediateGivesUp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(pgTryLock).WillReturnRows(sqlmock.NewRows([]string{"ok"}).AddRow(false))

	acquired, err := NewTableLock(db, sqlutil.Postgres, "school").AcquireLock(context.Background(), TimeoutImmediate)
	require.NoError(t, err)
	assert.False(t, acquired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteLock_AlwaysSucceeds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := NewTableLock(db, sqlutil.SQLite, "school")
	acquired, err := l.AcquireLock(context.Background(), TimeoutShort)
	require.NoError(t, err)
	assert.True(t, acquired)

	released, err := l.ReleaseLock(context.Background())
	require.NoError(t, err)
	assert.True(t, released)

	// no queries issued
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTableLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(getLock).WillReturnRows(sqlmock.NewRows([]string{"lock"}).AddRow(1))
	mock.ExpectQuery(releaseLock).WillReturnRows(sqlmock.NewRows([]string{"lock"}).AddRow(1))

	ran := false
	err = WithTableLock(context.Background(), db, sqlutil.MySQL, "school", TimeoutShort, func() error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTableLock_HeldElsewhere(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(getLock).WillReturnRows(sqlmock.NewRows([]string{"lock"}).AddRow(0))

	err = WithTableLock(context.Background(), db, sqlutil.MySQL, "school", TimeoutShort, func() error {
		t.Fatal("fn must not run without the lock")
		return nil
	})

	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestWithLock_ReleasesOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(getLock).WillReturnRows(sqlmock.NewRows([]string{"lock"}).AddRow(1))
	mock.ExpectQuery(releaseLock).WillReturnRows(sqlmock.NewRows([]string{"lock"}).AddRow(1))

	boom := errors.New("load failed")
	l := NewTableLock(db, sqlutil.MySQL, "school")
	err = l.WithLock(context.Background(), TimeoutShort, func() error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.False(t, l.IsHeld())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsTableLocked(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// free: acquired then released
	mock.ExpectQuery(getLock).WillReturnRows(sqlmock.NewRows([]string{"lock"}).AddRow(1))
	mock.ExpectQuery(releaseLock).WillReturnRows(sqlmock.NewRows([]string{"lock"}).AddRow(1))
	// held elsewhere
	mock.ExpectQuery(getLock).WillReturnRows(sqlmock.NewRows([]string{"lock"}).AddRow(0))

	locked, err := IsTableLocked(context.Background(), db, sqlutil.MySQL, "school")
	require.NoError(t, err)
	assert.False(t, locked)

	locked, err = IsTableLocked(context.Background(), db, sqlutil.MySQL, "school")
	require.NoError(t, err)
	assert.True(t, locked)

	assert.NoError(t, mock.ExpectationsWereMet())
}

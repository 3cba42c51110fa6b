// Package lock provides database advisory locks that keep a load and a mining
// run from working on the same table at once.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dbsmedya/goapriori/internal/sqlutil"
)

// ErrLockTimeout is returned when lock acquisition times out because
// another instance is holding the lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Common timeout values for lock acquisition (in seconds).
const (
	// TimeoutImmediate returns immediately if lock cannot be acquired (no wait).
	TimeoutImmediate = 0

	// TimeoutShort is suitable for fast-failing duplicate run detection.
	TimeoutShort = 1

	// TimeoutMedium provides a reasonable wait for a load to finish.
	TimeoutMedium = 10
)

// pollInterval is how often postgres acquisition retries pg_try_advisory_lock.
var pollInterval = 100 * time.Millisecond

// AdvisoryLock is a named session lock. MySQL uses GET_LOCK(), PostgreSQL
// uses pg_try_advisory_lock() on the hashed name. SQLite has no session locks
// and always succeeds.
//
// Session locks belong to one connection, so the lock pins a *sql.Conn from
// the pool between acquire and release.
type AdvisoryLock struct {
	db       *sql.DB
	conn     *sql.Conn
	dialect  sqlutil.Dialect
	lockName string
	held     bool
}

// NewAdvisoryLock creates a new advisory lock with the given name.
// The lock is not acquired until AcquireLock is called.
func NewAdvisoryLock(db *sql.DB, dialect sqlutil.Dialect, lockName string) *AdvisoryLock {
	return &AdvisoryLock{
		db:       db,
		dialect:  dialect,
		lockName: lockName,
	}
}

// AcquireLock attempts to acquire the advisory lock with the specified timeout.
// Returns true if the lock was acquired, false if timeout was reached.
// Returns an error if the database query fails.
//
// MySQL GET_LOCK() return values:
//   - 1: Lock was obtained successfully
//   - 0: Timeout was reached without obtaining the lock
//   - NULL: An error occurred (e.g., out of memory, thread killed)
func (a *AdvisoryLock) AcquireLock(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.held {
		return true, nil // Already holding the lock
	}
	if a.dialect == sqlutil.SQLite {
		a.held = true
		return true, nil
	}

	if a.conn == nil {
		conn, err := a.db.Conn(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to pin connection for lock %q: %w", a.lockName, err)
		}
		a.conn = conn
	}

	var acquired bool
	var err error
	if a.dialect == sqlutil.Postgres {
		acquired, err = a.acquirePostgres(ctx, timeoutSeconds)
	} else {
		acquired, err = a.acquireMySQL(ctx, timeoutSeconds)
	}
	if err != nil || !acquired {
		a.unpin()
		return false, err
	}
	a.held = true
	return true, nil
}

func (a *AdvisoryLock) acquireMySQL(ctx context.Context, timeoutSeconds int) (bool, error) {
	var result sql.NullInt64
	err := a.conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.lockName, timeoutSeconds).Scan(&result)
	if err != nil {
		return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}

	// Check if result is NULL (error case)
	if !result.Valid {
		return false, fmt.Errorf("GET_LOCK returned NULL for lock %q (possible database error)", a.lockName)
	}

	switch result.Int64 {
	case 1:
		return true, nil
	case 0:
		// Timeout reached - another instance is holding the lock
		return false, nil
	default:
		return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

func (a *AdvisoryLock) acquirePostgres(ctx context.Context, timeoutSeconds int) (bool, error) {
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	for {
		var ok bool
		err := a.conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock(hashtext($1))", a.lockName).Scan(&ok)
		if err != nil {
			return false, fmt.Errorf("failed to execute pg_try_advisory_lock: %w", err)
		}
		if ok {
			return true, nil
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// ReleaseLock releases the advisory lock and returns the pinned connection
// to the pool. Returns true if the lock was released, false if it was not held.
//
// MySQL RELEASE_LOCK() return values:
//   - 1: Lock was released successfully
//   - 0: Lock was not established by this thread (not held)
//   - NULL: Named lock did not exist
func (a *AdvisoryLock) ReleaseLock(ctx context.Context) (bool, error) {
	if !a.held {
		return false, nil // Not holding the lock
	}
	a.held = false
	if a.dialect == sqlutil.SQLite {
		return true, nil
	}
	defer a.unpin()

	if a.dialect == sqlutil.Postgres {
		var ok bool
		if err := a.conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock(hashtext($1))", a.lockName).Scan(&ok); err != nil {
			return false, fmt.Errorf("failed to execute pg_advisory_unlock: %w", err)
		}
		return ok, nil
	}

	var result sql.NullInt64
	if err := a.conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.lockName).Scan(&result); err != nil {
		return false, fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}
	if !result.Valid {
		return false, fmt.Errorf("RELEASE_LOCK returned NULL for lock %q (lock did not exist)", a.lockName)
	}
	return result.Int64 == 1, nil
}

func (a *AdvisoryLock) unpin() {
	if a.conn != nil {
		_ = a.conn.Close()
		a.conn = nil
	}
}

// IsHeld returns true if this lock is currently held by this instance.
func (a *AdvisoryLock) IsHeld() bool {
	return a.held
}

// LockName returns the name of the advisory lock.
func (a *AdvisoryLock) LockName() string {
	return a.lockName
}

// GenerateTableLockName creates the lock name guarding a dataset table.
// Lock names follow the format: "goapriori:table:{table}"
func GenerateTableLockName(table string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, table)

	return fmt.Sprintf("goapriori:table:%s", sanitized)
}

// NewTableLock creates the advisory lock for a dataset table.
func NewTableLock(db *sql.DB, dialect sqlutil.Dialect, table string) *AdvisoryLock {
	return NewAdvisoryLock(db, dialect, GenerateTableLockName(table))
}

// IsTableLocked reports whether another session holds the table lock, by
// trying to take it without waiting. The answer may be stale on return.
func IsTableLocked(ctx context.Context, db *sql.DB, dialect sqlutil.Dialect, table string) (bool, error) {
	l := NewTableLock(db, dialect, table)

	acquired, err := l.AcquireLock(ctx, TimeoutImmediate)
	if err != nil {
		return false, fmt.Errorf("failed to check lock on table %q: %w", table, err)
	}
	if acquired {
		// Lock auto-releases when the connection closes if this fails
		_, _ = l.ReleaseLock(ctx)
		return false, nil
	}
	return true, nil
}

// WithLock executes fn while holding the lock, releasing it even if fn panics.
// Returns ErrLockTimeout if the lock cannot be acquired within timeoutSeconds.
func (a *AdvisoryLock) WithLock(ctx context.Context, timeoutSeconds int, fn func() error) error {
	acquired, err := a.AcquireLock(ctx, timeoutSeconds)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.lockName)
	}

	defer func() {
		// Release in a fresh context; ctx may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = a.ReleaseLock(releaseCtx)
	}()

	return fn()
}

// WithTableLock runs fn while holding the lock for table.
func WithTableLock(ctx context.Context, db *sql.DB, dialect sqlutil.Dialect, table string, timeoutSeconds int, fn func() error) error {
	return NewTableLock(db, dialect, table).WithLock(ctx, timeoutSeconds, fn)
}

// Package database opens and manages the connection to the dataset store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dbsmedya/goapriori/internal/config"
	"github.com/dbsmedya/goapriori/internal/sqlutil"
)

// Manager holds the source connection. DB is always set after Connect; Gorm
// is set for the postgres and sqlite drivers and shares DB's pool.
type Manager struct {
	DB      *sql.DB
	Gorm    *gorm.DB
	Dialect sqlutil.Dialect
	config  *config.Config
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config: cfg,
	}
}

// Connect establishes the source connection.
func (m *Manager) Connect(ctx context.Context) error {
	if m.config == nil {
		return fmt.Errorf("database manager has no configuration")
	}

	dialect, err := sqlutil.ParseDialect(m.config.Source.Driver)
	if err != nil {
		return err
	}
	m.Dialect = dialect

	m.DB, m.Gorm, err = m.connectWithRetry(ctx, &m.config.Source)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, *gorm.DB, error) {
	var err error

	maxRetries := 3
	backoff := time.Second

	for i := 0; i < maxRetries; i++ {
		var db *sql.DB
		var gdb *gorm.DB
		db, gdb, err = m.connect(cfg)
		if err == nil {
			// Verify connection
			if pingErr := db.PingContext(ctx); pingErr == nil {
				return db, gdb, nil
			} else {
				db.Close()
				err = pingErr
			}
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}
	}

	return nil, nil, fmt.Errorf("failed after %d retries: %w", maxRetries, err)
}

// connect creates a database connection for the configured dialect.
func (m *Manager) connect(cfg *config.DatabaseConfig) (*sql.DB, *gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	switch m.Dialect {
	case sqlutil.SQLite:
		gdb, err := gorm.Open(sqlite.Open(cfg.Path), gormCfg)
		if err != nil {
			return nil, nil, err
		}
		db, err := gdb.DB()
		if err != nil {
			return nil, nil, err
		}
		// One writer; also keeps ":memory:" databases on a single connection.
		db.SetMaxOpenConns(1)
		return db, gdb, nil

	case sqlutil.Postgres:
		db, err := sql.Open("postgres", BuildPostgresDSN(cfg))
		if err != nil {
			return nil, nil, err
		}
		configurePool(db, cfg)
		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), gormCfg)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, gdb, nil

	default:
		db, err := sql.Open("mysql", BuildDSN(cfg))
		if err != nil {
			return nil, nil, err
		}
		configurePool(db, cfg)
		return db, nil, nil
	}
}

func configurePool(db *sql.DB, cfg *config.DatabaseConfig) {
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)
}

// BuildDSN constructs a MySQL DSN from configuration.
func BuildDSN(cfg *config.DatabaseConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	if cfg.Database != "" {
		dsn += cfg.Database
	}

	// Add TLS configuration
	params := "?parseTime=true"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

// BuildPostgresDSN constructs a lib/pq keyword/value connection string.
func BuildPostgresDSN(cfg *config.DatabaseConfig) string {
	sslmode := "prefer"
	switch cfg.TLS {
	case "disable":
		sslmode = "disable"
	case "required":
		sslmode = "require"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s",
		cfg.Host, cfg.Port, cfg.User, quoteDSNValue(cfg.Password))
	if cfg.Database != "" {
		dsn += " dbname=" + cfg.Database
	}
	return dsn + " sslmode=" + sslmode
}

// quoteDSNValue single-quotes values containing spaces or quotes, as lib/pq expects.
func quoteDSNValue(v string) string {
	needs := v == ""
	for _, r := range v {
		if r == ' ' || r == '\'' || r == '\\' {
			needs = true
			break
		}
	}
	if !needs {
		return v
	}
	out := make([]rune, 0, len(v)+2)
	out = append(out, '\'')
	for _, r := range v {
		if r == '\'' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(append(out, '\''))
}

// Close closes the connection pool.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	if err := m.DB.Close(); err != nil {
		return fmt.Errorf("source close: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.DB == nil {
		return fmt.Errorf("source is not connected")
	}
	if err := m.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("source ping failed: %w", err)
	}
	return nil
}

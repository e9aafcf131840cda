// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// DatabaseConnector defines the interface for database connectors
type DatabaseConnector interface {
	// DB returns the underlying database connection
	DB() *sqlx.DB

	// Dialect returns the SQL dialect of the target
	Dialect() Dialect

	// Validate verifies the connection
	Validate(ctx context.Context) error

	// Close closes the connection and releases resources
	Close() error

	// ExecWithTimeout executes a statement with a timeout
	ExecWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (sql.Result, error)
}

// PoolSettings configures the connection pool
type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// SQLConnector implements DatabaseConnector over any database/sql driver
type SQLConnector struct {
	db      *sqlx.DB
	dialect Dialect
	logger  *zap.Logger
	name    string
}

// Open connects with the dialect's driver, applies the pool settings and pings
func Open(ctx context.Context, dialect Dialect, dsn, name string, pool PoolSettings, logger *zap.Logger) (*SQLConnector, error) {
	logger = logger.Named(dialect.Name() + "-connector")

	db, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s connection: %w", dialect.Name(), err)
	}

	ApplyConnectionSettings(db.DB, pool.MaxOpenConns, pool.MaxIdleConns, pool.ConnMaxLifetime, pool.ConnMaxIdleTime)

	timeout := pool.PingTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if err := PingWithTimeout(ctx, db.DB, timeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", dialect.Name(), err)
	}

	c := &SQLConnector{db: db, dialect: dialect, logger: logger, name: name}
	LogConnectionStats(logger, name, db.DB)
	return c, nil
}

// DB returns the underlying database connection
func (c *SQLConnector) DB() *sqlx.DB {
	return c.db
}

// Dialect returns the SQL dialect of the target
func (c *SQLConnector) Dialect() Dialect {
	return c.dialect
}

// Validate runs the dialect's probe query
func (c *SQLConnector) Validate(ctx context.Context) error {
	var probe string
	if err := c.db.GetContext(ctx, &probe, c.dialect.ValidationQuery()); err != nil {
		return fmt.Errorf("failed to validate %s connection: %w", c.dialect.Name(), err)
	}
	c.logger.Info("Connection validated",
		zap.String("database", c.name),
		zap.String("probe", probe))
	return nil
}

// Close closes the database connection
func (c *SQLConnector) Close() error {
	c.logger.Info("Closing connection", zap.String("database", c.name))
	LogConnectionStats(c.logger, c.name, c.db.DB)
	return c.db.Close()
}

// ExecWithTimeout executes a statement with a timeout
func (c *SQLConnector) ExecWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (sql.Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.ExecContext(queryCtx, query, args...)
}

// LogConnectionStats logs connection pool statistics
func LogConnectionStats(logger *zap.Logger, name string, db *sql.DB) {
	stats := db.Stats()
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConnections),
	)
}

// PingWithTimeout attempts to ping a database with a timeout
func PingWithTimeout(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- db.PingContext(pingCtx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-pingCtx.Done():
		return fmt.Errorf("ping timed out after %v: %w", timeout, pingCtx.Err())
	}
}

// ApplyConnectionSettings configures database connection pool settings
func ApplyConnectionSettings(db *sql.DB, maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		db.SetConnMaxLifetime(maxLifetime)
	}
	if maxIdleTime > 0 {
		db.SetConnMaxIdleTime(maxIdleTime)
	}
}

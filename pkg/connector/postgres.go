// pkg/connector/postgres.go
package connector

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/leadsync/pkg/config"
	"github.com/David-Botos/leadsync/pkg/model"
)

// undefinedTable is the PostgreSQL SQLSTATE for a missing relation
const undefinedTable = "42P01"

// PostgresDialect targets PostgreSQL through lib/pq
type PostgresDialect struct{}

func (PostgresDialect) Name() string       { return "postgres" }
func (PostgresDialect) DriverName() string { return "postgres" }

func (PostgresDialect) Placeholder(i int) string { return fmt.Sprintf("$%d", i) }

func (PostgresDialect) QuoteIdentifier(name string) string { return pq.QuoteIdentifier(name) }

func (PostgresDialect) ColumnType(kind model.Kind, length int) string {
	switch kind {
	case model.KindNumeric:
		return "DOUBLE PRECISION"
	case model.KindTimestamp:
		return "TIMESTAMP"
	default:
		return fmt.Sprintf("VARCHAR(%d)", length)
	}
}

func (PostgresDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = $1"
}

func (PostgresDialect) IsTableMissing(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == undefinedTable
}

func (PostgresDialect) ValidationQuery() string { return "SELECT version()" }

// NewPostgresConnector creates and initializes a new PostgreSQL connector
func NewPostgresConnector(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*SQLConnector, error) {
	pg := cfg.Postgres

	// Log connection attempt
	logger.Info("Connecting to PostgreSQL",
		zap.String("host", pg.Host),
		zap.Int("port", pg.Port),
		zap.String("database", pg.Database),
		zap.String("user", pg.User))

	dsn := pg.ConnectionString()
	// Runtime parameters in the DSN apply to every pooled connection
	if cfg.StatementTimeout > 0 {
		dsn += fmt.Sprintf(" statement_timeout=%d", cfg.StatementTimeout.Milliseconds())
	}

	return Open(ctx, PostgresDialect{}, dsn, pg.Database, poolSettings(cfg), logger)
}

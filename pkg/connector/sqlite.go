// pkg/connector/sqlite.go
package connector

import (
	"context"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/David-Botos/leadsync/pkg/config"
	"github.com/David-Botos/leadsync/pkg/model"
)

// SQLiteDialect targets a local SQLite file through the pure-Go modernc driver
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string       { return "sqlite" }
func (SQLiteDialect) DriverName() string { return "sqlite" }

func (SQLiteDialect) Placeholder(int) string { return "?" }

func (SQLiteDialect) QuoteIdentifier(name string) string { return quoteANSI(name) }

func (SQLiteDialect) ColumnType(kind model.Kind, _ int) string {
	switch kind {
	case model.KindNumeric:
		return "REAL"
	case model.KindTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func (SQLiteDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
}

func (SQLiteDialect) IsTableMissing(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

func (SQLiteDialect) ValidationQuery() string { return "SELECT sqlite_version()" }

// NewSQLiteConnector opens the configured SQLite file.
// A single connection keeps ":memory:" databases consistent across calls.
func NewSQLiteConnector(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*SQLConnector, error) {
	logger.Info("Opening SQLite database", zap.String("path", cfg.SQLite.Path))

	pool := poolSettings(cfg)
	pool.MaxOpenConns = 1
	pool.MaxIdleConns = 1
	return Open(ctx, SQLiteDialect{}, cfg.SQLite.Path, cfg.SQLite.Path, pool, logger)
}

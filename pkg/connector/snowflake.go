// pkg/connector/snowflake.go
package connector

import (
	"context"
	"errors"
	"fmt"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/David-Botos/leadsync/pkg/config"
	"github.com/David-Botos/leadsync/pkg/model"
)

// objectDoesNotExist is the Snowflake error number for an unknown object
const objectDoesNotExist = 2003

// SnowflakeDialect targets Snowflake through gosnowflake
type SnowflakeDialect struct{}

func (SnowflakeDialect) Name() string       { return "snowflake" }
func (SnowflakeDialect) DriverName() string { return "snowflake" }

func (SnowflakeDialect) Placeholder(int) string { return "?" }

func (SnowflakeDialect) QuoteIdentifier(name string) string { return quoteANSI(name) }

func (SnowflakeDialect) ColumnType(kind model.Kind, length int) string {
	switch kind {
	case model.KindNumeric:
		return "FLOAT"
	case model.KindTimestamp:
		return "TIMESTAMP_NTZ"
	default:
		return fmt.Sprintf("VARCHAR(%d)", length)
	}
}

func (SnowflakeDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?"
}

func (SnowflakeDialect) IsTableMissing(err error) bool {
	var sfErr *sf.SnowflakeError
	return errors.As(err, &sfErr) && sfErr.Number == objectDoesNotExist
}

func (SnowflakeDialect) ValidationQuery() string { return "SELECT CURRENT_VERSION()" }

// NewSnowflakeConnector creates a new Snowflake connection
func NewSnowflakeConnector(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*SQLConnector, error) {
	snow := cfg.Snowflake

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", snow.Account),
		zap.String("user", snow.User),
		zap.String("database", snow.Database),
		zap.String("warehouse", snow.Warehouse),
		zap.String("role", snow.Role))

	dsn, err := snow.ConnectionString()
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	return Open(ctx, SnowflakeDialect{}, dsn, snow.Database, poolSettings(cfg), logger)
}

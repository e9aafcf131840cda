// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/leadsync/pkg/config"
)

// NewConnector validates the database configuration and connects to the selected target
func NewConnector(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*SQLConnector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	var (
		conn *SQLConnector
		err  error
	)
	switch cfg.Target {
	case config.TargetOracle:
		conn, err = NewOracleConnector(ctx, cfg, logger)
	case config.TargetPostgres:
		conn, err = NewPostgresConnector(ctx, cfg, logger)
	case config.TargetSnowflake:
		conn, err = NewSnowflakeConnector(ctx, cfg, logger)
	case config.TargetSQLite:
		conn, err = NewSQLiteConnector(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown database target %q", cfg.Target)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s connector: %w", cfg.Target, err)
	}

	return conn, nil
}

// DialectFor returns the dialect of a target without connecting
func DialectFor(target config.Target) (Dialect, error) {
	switch target {
	case config.TargetOracle:
		return OracleDialect{}, nil
	case config.TargetPostgres:
		return PostgresDialect{}, nil
	case config.TargetSnowflake:
		return SnowflakeDialect{}, nil
	case config.TargetSQLite:
		return SQLiteDialect{}, nil
	}
	return nil, fmt.Errorf("unknown database target %q", target)
}

func poolSettings(cfg *config.DatabaseConfig) PoolSettings {
	return PoolSettings{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		PingTimeout:     10 * time.Second,
	}
}

// pkg/connector/oracle.go
package connector

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/sijms/go-ora/v2"
	"go.uber.org/zap"

	"github.com/David-Botos/leadsync/pkg/config"
	"github.com/David-Botos/leadsync/pkg/model"
)

// OracleDialect targets Oracle through go-ora
type OracleDialect struct{}

func (OracleDialect) Name() string       { return "oracle" }
func (OracleDialect) DriverName() string { return "oracle" }

func (OracleDialect) Placeholder(i int) string { return fmt.Sprintf(":%d", i) }

func (OracleDialect) QuoteIdentifier(name string) string { return quoteANSI(name) }

func (OracleDialect) ColumnType(kind model.Kind, length int) string {
	switch kind {
	case model.KindNumeric:
		return "NUMBER"
	case model.KindTimestamp:
		return "TIMESTAMP"
	default:
		// Character semantics; the byte default rejects accented text that fits the rune limit
		return fmt.Sprintf("VARCHAR2(%d CHAR)", length)
	}
}

func (OracleDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM user_tables WHERE table_name = :1"
}

// IsTableMissing matches ORA-00942 (table or view does not exist)
func (OracleDialect) IsTableMissing(err error) bool {
	return err != nil && strings.Contains(err.Error(), "ORA-00942")
}

func (OracleDialect) ValidationQuery() string { return "SELECT USER FROM DUAL" }

// NewOracleConnector connects to the configured Oracle service
func NewOracleConnector(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*SQLConnector, error) {
	ora := cfg.Oracle
	logger.Info("Connecting to Oracle",
		zap.String("host", ora.Host),
		zap.Int("port", ora.Port),
		zap.String("service", ora.Service),
		zap.String("user", ora.User))

	return Open(ctx, OracleDialect{}, ora.ConnectionString(), ora.Service, poolSettings(cfg), logger)
}

// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	go_ora "github.com/sijms/go-ora/v2"
	"github.com/snowflakedb/gosnowflake"
)

// Target identifies the database engine tables are loaded into
type Target string

const (
	TargetOracle    Target = "oracle"
	TargetPostgres  Target = "postgres"
	TargetSnowflake Target = "snowflake"
	TargetSQLite    Target = "sqlite"
)

// DatabaseConfig holds the selected target and its connection parameters.
// Only the block matching Target is populated.
type DatabaseConfig struct {
	Target    Target
	Oracle    *OracleConfig
	Postgres  *PostgresConfig
	Snowflake *SnowflakeConfig
	SQLite    *SQLiteConfig

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Statement timeout
	StatementTimeout time.Duration
}

// OracleConfig holds Oracle connection parameters
type OracleConfig struct {
	Host     string
	Port     int
	Service  string
	User     string
	Password string
}

// PostgresConfig holds PostgreSQL connection parameters
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// SnowflakeConfig holds Snowflake connection parameters
type SnowflakeConfig struct {
	Account   string
	User      string
	Password  string
	Database  string
	Schema    string
	Warehouse string
	Role      string
}

// SQLiteConfig holds the path of a local SQLite database
type SQLiteConfig struct {
	Path string
}

// LoadDatabaseConfig loads the database target from environment variables.
// Credentials are only checked when a connection is actually opened.
func LoadDatabaseConfig() (*DatabaseConfig, error) {
	cfg := &DatabaseConfig{
		Target:           Target(strings.ToLower(getEnv("DB_TARGET", string(TargetOracle)))),
		MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 2),
		MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 1),
		ConnMaxLifetime:  time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME_SECONDS", 600)) * time.Second,
		StatementTimeout: time.Duration(getEnvAsInt("DB_STATEMENT_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	switch cfg.Target {
	case TargetOracle:
		cfg.Oracle = &OracleConfig{
			Host:     getEnv("ORACLE_HOST", "localhost"),
			Port:     getEnvAsInt("ORACLE_PORT", 1521),
			Service:  os.Getenv("ORACLE_SERVICE"),
			User:     os.Getenv("ORACLE_USER"),
			Password: os.Getenv("ORACLE_PASSWORD"),
		}
	case TargetPostgres:
		cfg.Postgres = &PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Database: os.Getenv("POSTGRES_DB"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		}
	case TargetSnowflake:
		cfg.Snowflake = &SnowflakeConfig{
			Account:   os.Getenv("SNOWFLAKE_ACCOUNT"),
			User:      os.Getenv("SNOWFLAKE_USER"),
			Password:  os.Getenv("SNOWFLAKE_PASSWORD"),
			Database:  os.Getenv("SNOWFLAKE_DATABASE"),
			Schema:    getEnv("SNOWFLAKE_SCHEMA", "PUBLIC"),
			Warehouse: os.Getenv("SNOWFLAKE_WAREHOUSE"),
			Role:      os.Getenv("SNOWFLAKE_ROLE"),
		}
	case TargetSQLite:
		cfg.SQLite = &SQLiteConfig{Path: getEnv("SQLITE_PATH", "leadsync.db")}
	default:
		return nil, fmt.Errorf("unknown DB_TARGET %q", cfg.Target)
	}

	return cfg, nil
}

// Validate ensures the credentials of the selected target are present
func (c *DatabaseConfig) Validate() error {
	switch c.Target {
	case TargetOracle:
		if c.Oracle == nil || c.Oracle.User == "" || c.Oracle.Password == "" || c.Oracle.Service == "" {
			return errors.New("ORACLE_USER, ORACLE_PASSWORD and ORACLE_SERVICE are required")
		}
	case TargetPostgres:
		if c.Postgres == nil || c.Postgres.User == "" || c.Postgres.Database == "" {
			return errors.New("POSTGRES_USER and POSTGRES_DB are required")
		}
	case TargetSnowflake:
		if c.Snowflake == nil || c.Snowflake.Account == "" || c.Snowflake.User == "" || c.Snowflake.Warehouse == "" {
			return errors.New("SNOWFLAKE_ACCOUNT, SNOWFLAKE_USER and SNOWFLAKE_WAREHOUSE are required")
		}
	case TargetSQLite:
		if c.SQLite == nil || c.SQLite.Path == "" {
			return errors.New("SQLITE_PATH cannot be empty")
		}
	default:
		return fmt.Errorf("unknown database target %q", c.Target)
	}
	return nil
}

// ConnectionString returns the go-ora connection URL
func (c *OracleConfig) ConnectionString() string {
	return go_ora.BuildUrl(c.Host, c.Port, c.Service, c.User, c.Password, nil)
}

// ConnectionString returns a formatted PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}

// ConnectionString returns a Snowflake DSN built by the driver
func (c *SnowflakeConfig) ConnectionString() (string, error) {
	return gosnowflake.DSN(&gosnowflake.Config{
		Account:   c.Account,
		User:      c.User,
		Password:  c.Password,
		Database:  c.Database,
		Schema:    c.Schema,
		Warehouse: c.Warehouse,
		Role:      c.Role,
	})
}

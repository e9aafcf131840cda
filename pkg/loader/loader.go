// pkg/loader/loader.go
package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/leadsync/pkg/connector"
	"github.com/David-Botos/leadsync/pkg/converter"
	"github.com/David-Botos/leadsync/pkg/model"
)

// Mode selects how an existing table is treated
type Mode string

const (
	// ModeReplace drops and recreates the table
	ModeReplace Mode = "replace"
	// ModeAppend creates the table only when it is missing
	ModeAppend Mode = "append"
)

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeReplace:
		return ModeReplace, nil
	case ModeAppend:
		return ModeAppend, nil
	}
	return "", fmt.Errorf("unknown load mode %q (want replace or append)", s)
}

// Result describes one load
type Result struct {
	Table       string
	Mode        Mode
	Skipped     bool // Empty frame; the database was not touched
	RowsWritten int64
	Quarantined []converter.Rejection
	Ignored     []string // Frame columns absent from the schema
	Verified    bool     // Replace-mode row count matched
	Duration    time.Duration
}

// Loader writes cleaned frames into a database table
type Loader struct {
	conn      connector.DatabaseConnector
	converter *converter.TypeConverter
	logger    *zap.Logger
	timeout   time.Duration
}

// NewLoader creates a loader over an open connection
func NewLoader(conn connector.DatabaseConnector, conv *converter.TypeConverter, logger *zap.Logger) *Loader {
	return &Loader{
		conn:      conn,
		converter: conv,
		logger:    logger.Named("loader"),
		timeout:   5 * time.Minute,
	}
}

// WithTimeout sets a custom timeout for DDL statements
func (l *Loader) WithTimeout(timeout time.Duration) *Loader {
	l.timeout = timeout
	return l
}

// Load writes frame into table. A nil schema is inferred from the frame.
// An empty frame is a no-op: nothing is sent to the database.
func (l *Loader) Load(ctx context.Context, frame *model.Frame, table string, mode Mode, schema *converter.Schema) (*Result, error) {
	start := time.Now()
	result := &Result{Table: table, Mode: mode}

	if frame == nil || frame.Empty() {
		l.logger.Info("Empty frame, nothing to load", zap.String("table", table))
		result.Skipped = true
		return result, nil
	}

	if schema == nil {
		schema = converter.InferSchema(table, frame, l.converter.TextLength())
		l.logger.Warn("No schema given, inferred from frame",
			zap.String("table", table),
			zap.Strings("columns", schema.Names()))
	}

	plan, err := l.converter.PlanFrame(schema, frame)
	if err != nil {
		return result, err
	}
	result.Ignored = plan.Ignored

	// Validate every row before touching the database
	var valid [][]interface{}
	for i, row := range frame.Rows {
		args, rej := l.converter.CoerceRow(plan, row, i)
		if rej != nil {
			result.Quarantined = append(result.Quarantined, *rej)
			continue
		}
		valid = append(valid, args)
	}
	if len(result.Quarantined) > 0 {
		l.logger.Warn("Rows quarantined by schema validation",
			zap.String("table", table),
			zap.Int("quarantined", len(result.Quarantined)),
			zap.String("firstReason", result.Quarantined[0].Reason))
	}

	if err := l.prepareTable(ctx, table, mode, schema); err != nil {
		return result, l.dbError("prepare table", table, err)
	}

	written, err := l.insertRows(ctx, table, plan.Columns(), valid)
	if err != nil {
		return result, l.dbError("insert rows", table, err)
	}
	result.RowsWritten = written

	if mode == ModeReplace {
		ok, count, err := l.VerifyRowCount(ctx, table, written)
		if err != nil {
			l.logger.Warn("Row count verification failed", zap.String("table", table), zap.Error(err))
		} else if !ok {
			l.logger.Warn("Row count mismatch after load",
				zap.String("table", table),
				zap.Int64("written", written),
				zap.Int64("counted", count))
		}
		result.Verified = ok
	}

	result.Duration = time.Since(start)
	l.logger.Info("Table loaded",
		zap.String("table", table),
		zap.String("mode", string(mode)),
		zap.String("schema", schema.Name),
		zap.Int("schemaVersion", schema.Version),
		zap.Int64("rows", written),
		zap.Int("quarantined", len(result.Quarantined)),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// prepareTable applies the load mode: replace drops and recreates, append creates when missing
func (l *Loader) prepareTable(ctx context.Context, table string, mode Mode, schema *converter.Schema) error {
	dialect := l.conn.Dialect()

	switch mode {
	case ModeReplace:
		_, err := l.conn.ExecWithTimeout(ctx, "DROP TABLE "+connector.QuoteTable(dialect, table), l.timeout)
		if err != nil && !dialect.IsTableMissing(err) {
			return fmt.Errorf("failed to drop table: %w", err)
		}
		return l.createTable(ctx, table, schema)
	case ModeAppend:
		exists, err := l.tableExists(ctx, table)
		if err != nil {
			return err
		}
		if exists {
			l.logger.Debug("Table already exists", zap.String("table", table))
			return nil
		}
		return l.createTable(ctx, table, schema)
	default:
		return fmt.Errorf("unknown load mode %q", mode)
	}
}

func (l *Loader) tableExists(ctx context.Context, table string) (bool, error) {
	var count int64
	err := l.conn.DB().GetContext(ctx, &count, l.conn.Dialect().TableExistsQuery(), connector.BareTableName(table))
	if err != nil {
		return false, fmt.Errorf("failed to check if table exists: %w", err)
	}
	return count > 0, nil
}

func (l *Loader) createTable(ctx context.Context, table string, schema *converter.Schema) error {
	defs := l.converter.GenerateColumnDefinitions(schema, l.conn.Dialect())

	// Build CREATE TABLE statement
	createSQL := fmt.Sprintf(
		"CREATE TABLE %s (\n\t%s\n)",
		connector.QuoteTable(l.conn.Dialect(), table),
		strings.Join(defs, ",\n\t"),
	)

	if _, err := l.conn.ExecWithTimeout(ctx, createSQL, l.timeout); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	l.logger.Info("Created table", zap.String("table", table), zap.Int("columns", len(defs)))
	return nil
}

// insertRows writes all rows inside one transaction through a prepared statement
func (l *Loader) insertRows(ctx context.Context, table string, columns []string, rows [][]interface{}) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	dialect := l.conn.Dialect()
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = dialect.QuoteIdentifier(c)
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		connector.QuoteTable(dialect, table),
		strings.Join(quoted, ", "),
		connector.Placeholders(dialect, len(columns)))

	tx, err := l.conn.DB().BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// No-op once committed
		_ = tx.Rollback()
	}()

	stmt, err := tx.PreparexContext(ctx, insertSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var written int64
	for i, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", i, err)
		}
		written++
	}

	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("failed to close insert statement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return written, nil
}

// dbError logs a database failure with its concrete type and wraps it for the caller
func (l *Loader) dbError(op, table string, err error) error {
	l.logger.Error("Database error",
		zap.String("operation", op),
		zap.String("table", table),
		zap.String("errorType", fmt.Sprintf("%T", rootCause(err))),
		zap.Error(err))
	return fmt.Errorf("%s on %s: %w", op, table, err)
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

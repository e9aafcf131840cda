// pkg/loader/verify.go
package loader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/leadsync/pkg/connector"
)

// VerifyRowCount compares the table row count with the rows just written
func (l *Loader) VerifyRowCount(ctx context.Context, table string, expected int64) (bool, int64, error) {
	l.logger.Debug("Verifying row count", zap.String("table", table))

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var count int64
	query := "SELECT COUNT(*) FROM " + connector.QuoteTable(l.conn.Dialect(), table)
	if err := l.conn.DB().GetContext(ctx, &count, query); err != nil {
		return false, 0, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}

	return count == expected, count, nil
}

// Query runs an arbitrary statement and returns every row as a column map
func (l *Loader) Query(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := l.conn.DB().QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for k, v := range row {
			// Drivers return text columns as []byte
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	l.logger.Debug("Query executed", zap.Int("rows", len(out)))
	return out, nil
}

// pkg/deletion/source.go
package deletion

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Source yields the identifiers of a deletion run
type Source interface {
	IDs(ctx context.Context) ([]string, error)
}

// StaticSource is a fixed identifier list
type StaticSource []string

// IDs returns the trimmed, non-empty identifiers
func (s StaticSource) IDs(context.Context) ([]string, error) {
	ids := make([]string, 0, len(s))
	for _, id := range s {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// FileSource reads one identifier per line. Blank lines and # comments are skipped.
type FileSource struct {
	Path string
}

func (s FileSource) IDs(context.Context) ([]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open identifier file: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return ids, nil
}

// QuerySource takes the first column of every row returned by a query
type QuerySource struct {
	DB    *sqlx.DB
	Query string
}

func (s QuerySource) IDs(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryxContext(ctx, s.Query)
	if err != nil {
		return nil, fmt.Errorf("identifier query failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		cols, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan identifier: %w", err)
		}
		if len(cols) == 0 || cols[0] == nil {
			continue
		}
		if id := strings.TrimSpace(identifierString(cols[0])); id != "" {
			ids = append(ids, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating identifiers: %w", err)
	}
	return ids, nil
}

func identifierString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

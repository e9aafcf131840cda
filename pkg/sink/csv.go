// pkg/sink/csv.go
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/David-Botos/leadsync/pkg/converter"
	"github.com/David-Botos/leadsync/pkg/model"
)

const (
	// Delimiter separates fields in mirror files
	Delimiter = ';'
	// ReasonColumn is appended to quarantine files
	ReasonColumn = "MOTIVO_QUARENTENA"
)

// CleanedPath returns <dir>/<source base name>_cleaned.csv
func CleanedPath(dir, source string) string {
	return derivedPath(dir, source, "_cleaned.csv")
}

// QuarantinePath returns <dir>/<source base name>_quarantine.csv
func QuarantinePath(dir, source string) string {
	return derivedPath(dir, source, "_quarantine.csv")
}

func derivedPath(dir, source, suffix string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+suffix)
}

// WriteCSV writes the frame with a header row, creating the directory if needed
func WriteCSV(path string, frame *model.Frame) error {
	return writeFile(path, frame.Names(), func(emit func([]string) error) error {
		for _, row := range frame.Rows {
			if err := emit(formatRow(row)); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteQuarantine writes the rejected frame rows followed by the rejection reason
func WriteQuarantine(path string, frame *model.Frame, rejections []converter.Rejection) error {
	header := append(frame.Names(), ReasonColumn)
	return writeFile(path, header, func(emit func([]string) error) error {
		for _, rej := range rejections {
			if rej.Row < 0 || rej.Row >= len(frame.Rows) {
				continue
			}
			rec := formatRow(frame.Rows[rej.Row])
			rec = append(rec, fmt.Sprintf("%s: %s", rej.Column, rej.Reason))
			if err := emit(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeFile(path string, header []string, body func(emit func([]string) error) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = Delimiter

	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	if err := body(w.Write); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}

// formatRow renders frame values; missing values become empty fields
func formatRow(row []interface{}) []string {
	rec := make([]string, len(row))
	for i, v := range row {
		switch val := v.(type) {
		case nil:
		case string:
			rec[i] = val
		case float64:
			rec[i] = strconv.FormatFloat(val, 'f', -1, 64)
		case time.Time:
			rec[i] = val.Format("2006-01-02 15:04:05")
		default:
			rec[i] = fmt.Sprint(val)
		}
	}
	return rec
}

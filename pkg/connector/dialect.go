// pkg/connector/dialect.go
package connector

import (
	"strings"

	"github.com/David-Botos/leadsync/pkg/model"
)

// Dialect captures the SQL differences between load targets
type Dialect interface {
	// Name is the short target name used in logs
	Name() string
	// DriverName is the database/sql driver the dialect registers under
	DriverName() string
	// Placeholder returns the bind marker of the i-th (1-based) argument
	Placeholder(i int) string
	// QuoteIdentifier quotes a column or table name, preserving case
	QuoteIdentifier(name string) string
	// ColumnType renders the SQL type of a column kind
	ColumnType(kind model.Kind, length int) string
	// TableExistsQuery counts tables named by its single argument
	TableExistsQuery() string
	// IsTableMissing reports whether err means the table does not exist
	IsTableMissing(err error) bool
	// ValidationQuery returns one text row when the connection works
	ValidationQuery() string
}

// quoteANSI double-quotes an identifier, doubling embedded quotes
func quoteANSI(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteTable quotes each dot-separated part of a possibly schema-qualified table name
func QuoteTable(d Dialect, table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = d.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// BareTableName returns the table name without its schema qualifier
func BareTableName(table string) string {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[i+1:]
	}
	return table
}

// Placeholders renders n bind markers separated by commas
func Placeholders(d Dialect, n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = d.Placeholder(i + 1)
	}
	return strings.Join(marks, ", ")
}

// pkg/model/frame.go
package model

import "strings"

// Kind is the inferred storage kind of a column
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindTimestamp
)

// String returns the lower-case kind name used in schema files
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// ParseKind maps a schema-file kind name to a Kind
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "string", "varchar":
		return KindText, true
	case "numeric", "number", "float":
		return KindNumeric, true
	case "timestamp", "datetime", "date":
		return KindTimestamp, true
	}
	return KindText, false
}

// Column describes one column of a Frame
type Column struct {
	Name string // Column name as read or normalized
	Kind Kind   // Inferred kind
}

// Frame is an in-memory tabular record set.
// Values are nil (missing), string, float64 or time.Time.
type Frame struct {
	Columns []Column
	Rows    [][]interface{}
	Source  string // Path of the file the frame was read from
}

// NewFrame creates an empty frame with text columns
func NewFrame(names []string) *Frame {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n, Kind: KindText}
	}
	return &Frame{Columns: cols}
}

// Len returns the number of rows
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Empty reports whether the frame has no rows
func (f *Frame) Empty() bool {
	return f.Len() == 0
}

// Names returns the column names in order
func (f *Frame) Names() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the index of a column (case-insensitive) or -1
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// AddColumn appends a column holding the same value on every row.
// An existing column with that name is overwritten instead.
func (f *Frame) AddColumn(name string, kind Kind, value interface{}) {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		f.Columns = append(f.Columns, Column{Name: name, Kind: kind})
		for i := range f.Rows {
			f.Rows[i] = append(f.Rows[i], value)
		}
		return
	}
	f.Columns[idx].Kind = kind
	for i := range f.Rows {
		f.Rows[i][idx] = value
	}
}

// DropColumns removes the named columns. Names that are not present are ignored.
// Returns the names actually removed.
func (f *Frame) DropColumns(names ...string) []string {
	drop := make(map[int]bool)
	var dropped []string
	for _, n := range names {
		if i := f.ColumnIndex(n); i >= 0 && !drop[i] {
			drop[i] = true
			dropped = append(dropped, f.Columns[i].Name)
		}
	}
	if len(drop) == 0 {
		return nil
	}

	keep := make([]int, 0, len(f.Columns)-len(drop))
	cols := make([]Column, 0, len(f.Columns)-len(drop))
	for i, c := range f.Columns {
		if !drop[i] {
			keep = append(keep, i)
			cols = append(cols, c)
		}
	}
	for r, row := range f.Rows {
		newRow := make([]interface{}, len(keep))
		for j, i := range keep {
			if i < len(row) {
				newRow[j] = row[i]
			}
		}
		f.Rows[r] = newRow
	}
	f.Columns = cols
	return dropped
}

// MapColumn replaces every value of column idx with fn(value)
func (f *Frame) MapColumn(idx int, fn func(interface{}) interface{}) {
	for _, row := range f.Rows {
		if idx < len(row) {
			row[idx] = fn(row[idx])
		}
	}
}

// Release drops the rows so the memory can be reclaimed between files
func (f *Frame) Release() {
	if f == nil {
		return
	}
	f.Rows = nil
}

// HasMarker reports whether name contains any of the markers (case-insensitive)
func HasMarker(name string, markers []string) bool {
	upper := strings.ToUpper(name)
	for _, m := range markers {
		if m != "" && strings.Contains(upper, strings.ToUpper(m)) {
			return true
		}
	}
	return false
}

// HasToken reports whether any marker appears in name as whole words.
// Words are split on spaces, underscores, hyphens and dots, and a marker of
// several words (C_OS_TIPO) must match them consecutively.
func HasToken(name string, markers []string) bool {
	words := nameTokens(name)
	for _, m := range markers {
		if run := nameTokens(m); len(run) > 0 && containsRun(words, run) {
			return true
		}
	}
	return false
}

func nameTokens(s string) []string {
	return strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '.'
	})
}

func containsRun(words, run []string) bool {
	for i := 0; i+len(run) <= len(words); i++ {
		match := true
		for j := range run {
			if words[i+j] != run[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

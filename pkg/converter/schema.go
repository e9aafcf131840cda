// pkg/converter/schema.go
package converter

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/David-Botos/leadsync/pkg/model"
)

// ErrSchemaMismatch is returned when a frame cannot be mapped onto a target schema
var ErrSchemaMismatch = errors.New("schema mismatch")

// ColumnDef describes one column of a target table
type ColumnDef struct {
	Name   string     `yaml:"name"`
	Type   string     `yaml:"type"`
	Length int        `yaml:"length,omitempty"` // Text columns only; 0 means the configured default
	Kind   model.Kind `yaml:"-"`
}

// Schema is a versioned description of a target table.
//
// Example file:
//
//	name: LEADS
//	version: 2
//	columns:
//	  - name: NOME
//	    type: text
//	    length: 120
//	  - name: DATA ENTRADA
//	    type: timestamp
type Schema struct {
	Name     string      `yaml:"name"`
	Version  int         `yaml:"version"`
	Columns  []ColumnDef `yaml:"columns"`
	Inferred bool        `yaml:"-"`
}

// LoadSchema reads and validates a YAML schema file
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema file %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks the schema and resolves every column type to a Kind
func (s *Schema) Validate() error {
	if s.Version < 1 {
		return fmt.Errorf("version must be at least 1, got %d", s.Version)
	}
	if len(s.Columns) == 0 {
		return errors.New("schema has no columns")
	}

	seen := make(map[string]bool, len(s.Columns))
	for i := range s.Columns {
		col := &s.Columns[i]
		if strings.TrimSpace(col.Name) == "" {
			return fmt.Errorf("column %d has no name", i+1)
		}
		key := strings.ToUpper(col.Name)
		if seen[key] {
			return fmt.Errorf("duplicate column %q", col.Name)
		}
		seen[key] = true

		kind, ok := model.ParseKind(col.Type)
		if !ok {
			return fmt.Errorf("column %q has unknown type %q", col.Name, col.Type)
		}
		col.Kind = kind
		if col.Length < 0 {
			return fmt.Errorf("column %q has negative length", col.Name)
		}
	}
	return nil
}

// InferSchema derives a schema from the column kinds of a cleaned frame
func InferSchema(name string, frame *model.Frame, textLength int) *Schema {
	s := &Schema{
		Name:     name,
		Version:  1,
		Columns:  make([]ColumnDef, len(frame.Columns)),
		Inferred: true,
	}
	for i, col := range frame.Columns {
		def := ColumnDef{Name: col.Name, Type: col.Kind.String(), Kind: col.Kind}
		if col.Kind == model.KindText {
			def.Length = textLength
		}
		s.Columns[i] = def
	}
	return s
}

// Index returns the position of the named column, or -1
func (s *Schema) Index(name string) int {
	for i, col := range s.Columns {
		if strings.EqualFold(col.Name, name) {
			return i
		}
	}
	return -1
}

// Names returns the column names in table order
func (s *Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// pkg/converter/converter.go
package converter

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/leadsync/pkg/connector"
	"github.com/David-Botos/leadsync/pkg/model"
)

// TypeConverter handles mapping and conversion of data types and values
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Length of text columns that don't declare one
	TextLength int
	// Whether to treat empty strings as NULL
	EmptyStringAsNull bool
	// Location used for timestamps given as text
	Location *time.Location
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		TextLength:        255,
		EmptyStringAsNull: false,
		Location:          time.UTC,
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if config.TextLength <= 0 {
		config.TextLength = DefaultConfig().TextLength
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &TypeConverter{
		logger: logger.Named("converter"),
		config: config,
	}
}

// TextLength returns the default text column length
func (c *TypeConverter) TextLength() int {
	return c.config.TextLength
}

// columnLength resolves the effective length of a text column
func (c *TypeConverter) columnLength(col ColumnDef) int {
	if col.Kind != model.KindText {
		return 0
	}
	if col.Length > 0 {
		return col.Length
	}
	return c.config.TextLength
}

// GenerateColumnDefinitions creates the column definitions of a CREATE TABLE statement
func (c *TypeConverter) GenerateColumnDefinitions(schema *Schema, dialect connector.Dialect) []string {
	definitions := make([]string, 0, len(schema.Columns))

	for _, col := range schema.Columns {
		def := fmt.Sprintf("%s %s NULL",
			dialect.QuoteIdentifier(col.Name),
			dialect.ColumnType(col.Kind, c.columnLength(col)))

		definitions = append(definitions, def)
	}

	return definitions
}

// Plan maps frame columns onto schema columns
type Plan struct {
	Schema  *Schema
	Ignored []string // Frame columns absent from the schema

	source  []int // Frame index per schema column; -1 inserts NULL
	lengths []int
}

// Columns returns the target column names in insert order
func (p *Plan) Columns() []string {
	return p.Schema.Names()
}

// PlanFrame matches the frame to the schema. Frame columns the schema lacks are
// ignored with a warning; a frame sharing no column with the schema is an error.
func (c *TypeConverter) PlanFrame(schema *Schema, frame *model.Frame) (*Plan, error) {
	plan := &Plan{
		Schema:  schema,
		source:  make([]int, len(schema.Columns)),
		lengths: make([]int, len(schema.Columns)),
	}

	matched := 0
	for i, col := range schema.Columns {
		plan.source[i] = frame.ColumnIndex(col.Name)
		plan.lengths[i] = c.columnLength(col)
		if plan.source[i] >= 0 {
			matched++
		}
	}
	if matched == 0 {
		return nil, fmt.Errorf("%w: no frame column matches schema %s v%d", ErrSchemaMismatch, schema.Name, schema.Version)
	}

	for _, col := range frame.Columns {
		if schema.Index(col.Name) < 0 {
			plan.Ignored = append(plan.Ignored, col.Name)
		}
	}
	if len(plan.Ignored) > 0 {
		c.logger.Warn("Frame columns not in target schema are ignored",
			zap.String("schema", schema.Name),
			zap.Int("version", schema.Version),
			zap.Strings("columns", plan.Ignored))
	}

	return plan, nil
}

// Rejection records why a frame row was quarantined
type Rejection struct {
	Row    int // Index of the row in the frame
	Column string
	Reason string
}

// CoerceRow converts one frame row to insert arguments in plan order.
// A value that cannot be mapped yields a Rejection instead of an error.
func (c *TypeConverter) CoerceRow(plan *Plan, row []interface{}, rowIdx int) ([]interface{}, *Rejection) {
	args := make([]interface{}, len(plan.source))

	for i, src := range plan.source {
		if src < 0 || src >= len(row) {
			continue
		}
		col := plan.Schema.Columns[i]

		v, err := c.ConvertValue(row[src], col.Kind, plan.lengths[i])
		if err != nil {
			return nil, &Rejection{Row: rowIdx, Column: col.Name, Reason: err.Error()}
		}
		args[i] = v
	}

	return args, nil
}

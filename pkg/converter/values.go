// pkg/converter/values.go
package converter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/David-Botos/leadsync/pkg/model"
)

// timestampLayouts are accepted for timestamps that reach the loader as text
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ConvertValue converts a frame value to a driver value of the given kind.
// length bounds text values in runes; 0 disables the check.
func (c *TypeConverter) ConvertValue(value interface{}, kind model.Kind, length int) (interface{}, error) {
	// Handle NULL values
	if value == nil {
		return nil, nil
	}

	switch kind {
	case model.KindNumeric:
		return c.convertToNumeric(value)
	case model.KindTimestamp:
		return c.convertToTimestamp(value)
	default:
		return c.convertToText(value, length)
	}
}

// convertToText converts a value to text/string
func (c *TypeConverter) convertToText(value interface{}, length int) (interface{}, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		s = v.Format("2006-01-02 15:04:05")
	default:
		s = fmt.Sprintf("%v", v)
	}

	if s == "" && c.config.EmptyStringAsNull {
		return nil, nil
	}
	if length > 0 {
		if n := utf8.RuneCountInString(s); n > length {
			return nil, fmt.Errorf("text of %d characters exceeds column length %d", n, length)
		}
	}
	return s, nil
}

// convertToNumeric converts a value to float64
func (c *TypeConverter) convertToNumeric(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil
		}
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to a number", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to a number", value)
	}
}

// convertToTimestamp converts a value to time.Time
func (c *TypeConverter) convertToTimestamp(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return nil, nil
		}
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		for _, layout := range timestampLayouts {
			if t, err := time.ParseInLocation(layout, s, c.config.Location); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("cannot convert %q to a timestamp", v)
	default:
		return nil, fmt.Errorf("cannot convert %T to a timestamp", value)
	}
}

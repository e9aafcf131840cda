// pkg/cleaner/operations.go
package cleaner

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order before any best-effort parsing.
// Day-first layouts come first since the inputs are Brazilian exports.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006",
	"02-01-2006",
	"02-01-2006 15:04:05",
	"02.01.2006",
	"02/01/06",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05.999999",
	"2006/01/02",
	"20060102",
}

var (
	nonDigit     = regexp.MustCompile(`[^0-9]`)
	spreadsheetN = regexp.MustCompile(`^\d{1,6}(\.\d+)?$`)
	brNumber     = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+(,\d+)?$|^-?\d+,\d+$`)
)

// nullLike holds textual spellings of a missing value
var nullLike = map[string]bool{
	"":     true,
	"nan":  true,
	"none": true,
	"null": true,
	"nat":  true,
	"<na>": true,
}

// ParseDate parses a date value using the prioritized layouts, then spreadsheet
// serial numbers, then a day-first best-effort parse. ok is false when nothing matched.
func ParseDate(v interface{}) (time.Time, bool) {
	return parseDateIn(v, time.UTC)
}

func parseDateIn(v interface{}, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}

	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return val, !val.IsZero()
	case float64:
		// 8-digit numbers are compact YYYYMMDD dates read as numbers
		if val < 10000000 {
			return fromSpreadsheetSerial(val)
		}
	}

	s := strings.TrimSpace(toString(v))
	if isNullLike(s) {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	// Short numbers are serials or nothing; never a bare year for dateparse
	if spreadsheetN.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, false
		}
		return fromSpreadsheetSerial(f)
	}

	return bestEffortDate(s, loc)
}

// bestEffortDate never lets a parser panic escape
func bestEffortDate(s string, loc *time.Location) (t time.Time, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()

	parsed, err := dateparse.ParseIn(s, loc, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// Serials outside [minSerial, maxSerial] (1954-10-03 to 9999-12-31) are not dates
const (
	minSerial = 20000
	maxSerial = 2958465
)

func fromSpreadsheetSerial(f float64) (time.Time, bool) {
	if math.IsNaN(f) || f < minSerial || f > maxSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CleanPhone keeps only the digits of a phone value.
// ok is false for missing values and values without any digit.
func CleanPhone(v interface{}) (string, bool) {
	if v == nil {
		return "", false
	}

	var s string
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) {
			return "", false
		}
		s = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		s = toString(val)
	}

	if isNullLike(strings.TrimSpace(s)) {
		return "", false
	}

	digits := nonDigit.ReplaceAllString(s, "")
	if digits == "" {
		return "", false
	}
	return digits, true
}

// ToNumeric coerces a value to float64. ok is false for missing or invalid input.
func ToNumeric(v interface{}) (float64, bool) {
	f, err := toFloat(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toString converts an interface to string
func toString(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		// Use Sprint as a fallback
		return fmt.Sprintf("%v", val)
	}
}

// toFloat attempts to convert a value to float64
func toFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case nil:
		return 0, fmt.Errorf("nil value")
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case string:
		cleaned := strings.TrimSpace(val)
		if isNullLike(cleaned) {
			return 0, fmt.Errorf("empty string")
		}
		if brNumber.MatchString(cleaned) {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
		return strconv.ParseFloat(cleaned, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
}

func isNullLike(s string) bool {
	return nullLike[strings.ToLower(s)]
}

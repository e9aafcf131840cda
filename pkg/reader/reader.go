// pkg/reader/reader.go
package reader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/David-Botos/leadsync/pkg/model"
)

// ErrUnsupportedExtension is returned for files that are neither CSV nor spreadsheets
var ErrUnsupportedExtension = errors.New("unsupported file extension")

var spreadsheetExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// Options controls how files are decoded
type Options struct {
	Latin1 bool   // Decode CSV as ISO-8859-1 instead of UTF-8
	Sheet  string // Spreadsheet sheet name; empty means the first sheet
}

// Discover lists the regular files in dir whose name starts with prefix, sorted by name
func Discover(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ReadFile dispatches on the extension and returns the file as a frame.
// Unknown extensions fail with ErrUnsupportedExtension before the file is opened.
func ReadFile(path string, opts Options) (*model.Frame, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		frame *model.Frame
		err   error
	)
	switch {
	case ext == ".csv":
		frame, err = readCSV(path, opts)
	case spreadsheetExtensions[ext]:
		frame, err = readSpreadsheet(path, opts)
	default:
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedExtension, ext, filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}

	frame.Source = path
	InferKinds(frame)
	return frame, nil
}

func readCSV(path string, opts Options) (*model.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader
	if opts.Latin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	} else {
		r = transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.WithDelimiter(','),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.WithLazyQuotes(true),
	)
	if df.Err != nil {
		// dataframe rejects files without data rows; those are empty frames, not errors
		records, perr := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if perr == nil && len(records) <= 1 {
			return fromRecords(records), nil
		}
		return nil, fmt.Errorf("failed to parse CSV %s: %w", path, df.Err)
	}

	return fromRecords(df.Records()), nil
}

func readSpreadsheet(path string, opts Options) (*model.Frame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("spreadsheet %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	// Raw values keep dates as serial numbers instead of locale-formatted text
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
	}
	return fromRecords(rows), nil
}

// fromRecords builds a text frame from a header row followed by data rows.
// Short rows are padded with nil, long rows are cut to the header width.
func fromRecords(records [][]string) *model.Frame {
	if len(records) == 0 {
		return model.NewFrame(nil)
	}

	frame := model.NewFrame(records[0])
	width := len(records[0])
	frame.Rows = make([][]interface{}, 0, len(records)-1)

	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make([]interface{}, width)
		for i := 0; i < width && i < len(rec); i++ {
			if rec[i] == "NaN" || rec[i] == "" {
				continue
			}
			row[i] = rec[i]
		}
		frame.Rows = append(frame.Rows, row)
	}
	return frame
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// InferKinds marks a column numeric when every present value parses as a number,
// the way dataframe readers type columns. Integers with a leading zero (CPF, CEP,
// phone prefixes) stay text.
func InferKinds(frame *model.Frame) {
	for idx := range frame.Columns {
		if frame.Columns[idx].Kind != model.KindText {
			continue
		}

		numeric, seen := true, false
		for _, row := range frame.Rows {
			s, ok := row[idx].(string)
			if !ok {
				continue
			}
			seen = true
			if !looksNumeric(strings.TrimSpace(s)) {
				numeric = false
				break
			}
		}
		if !numeric || !seen {
			continue
		}

		frame.Columns[idx].Kind = model.KindNumeric
		for _, row := range frame.Rows {
			if s, ok := row[idx].(string); ok {
				f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
				row[idx] = f
			}
		}
	}
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	if len(s) > 1 && s[0] == '0' && s[1] != '.' {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	// ParseFloat accepts "NaN" and "Inf"
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/David-Botos/leadsync/pkg/model"
)

const (
	// SourceFileColumn holds the base name of the file a row came from
	SourceFileColumn = "ARQUIVO_ORIGEM"
	// InboxColumn holds the sales channel label of the batch
	InboxColumn = "INBOX"
)

// Options configures which columns each cleaning rule applies to.
// Markers are matched as case-insensitive substrings of the column name,
// except numeric markers, which must be whole words of it.
type Options struct {
	DateMarkers    []string // Normalize stage date detection
	PreDateMarkers []string // Pre-clean stage date candidates
	NumericMarkers []string // Pre-clean stage numeric candidates, matched as whole words
	PhoneMarkers   []string
	UpperMarkers   []string // Name, brand and model fields
	DropColumns    []string // Deny-list removed when present
	MaxTextLength  int      // Longer text values are truncated; 0 disables
	Location       *time.Location
}

// DefaultOptions returns the column rules used for the leads exports
func DefaultOptions() Options {
	return Options{
		DateMarkers:    []string{"DATA", "DATE"},
		PreDateMarkers: []string{"DATA", "DATE", "DT_"},
		NumericMarkers: []string{"VALOR", "PRECO", "QTD", "QUANTIDADE", "ANO", "KM", "C_OS_TIPO"},
		PhoneMarkers:   []string{"TELEFONE", "FONE", "CELULAR", "WHATSAPP", "PHONE"},
		UpperMarkers:   []string{"NOME", "NAME", "MARCA", "BRAND", "MODELO", "MODEL"},
		DropColumns: []string{
			"EMAIL", "E-MAIL", "CPF", "RG", "ENDERECO", "ENDEREÇO", "CEP",
			"UTM_SOURCE", "UTM_MEDIUM", "UTM_CAMPAIGN", "UTM_CONTENT", "UTM_TERM",
			"GCLID", "FBCLID", "IP", "USER_AGENT",
		},
		MaxTextLength: 255,
		Location:      time.UTC,
	}
}

// Provenance identifies where a frame came from
type Provenance struct {
	Inbox string // Channel label; empty means no INBOX column
	File  string // Source path; only the base name is stamped
}

// DataCleaner cleans and normalizes lead frames
type DataCleaner struct {
	opts   Options
	logger *zap.Logger
}

// NewDataCleaner creates a new DataCleaner instance
func NewDataCleaner(opts Options, logger *zap.Logger) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &DataCleaner{
		opts:   opts,
		logger: logger.Named("cleaner"),
	}, nil
}

// PreClean parses candidate date columns, coerces numeric columns, drops deny-list
// columns and stamps provenance. Bad values become nil; nothing here returns an error.
func (c *DataCleaner) PreClean(frame *model.Frame, prov Provenance) model.CleaningReport {
	var report model.CleaningReport
	if frame == nil {
		return report
	}

	report.DroppedColumns = frame.DropColumns(c.denied(frame)...)

	for idx := range frame.Columns {
		col := &frame.Columns[idx]
		name := NormalizeColumnName(col.Name)

		switch {
		case col.Kind == model.KindTimestamp || model.HasMarker(name, c.opts.PreDateMarkers):
			report.DatesNulled += c.parseDates(frame, idx)
			report.DateColumns = append(report.DateColumns, col.Name)
		case col.Kind == model.KindNumeric || model.HasToken(name, c.opts.NumericMarkers):
			report.NumbersNulled += c.coerceNumbers(frame, idx)
			report.NumericColumns = append(report.NumericColumns, col.Name)
		case c.opts.MaxTextLength > 0:
			report.Truncated += c.truncateText(frame, idx)
		}
	}

	if prov.Inbox != "" {
		frame.AddColumn(InboxColumn, model.KindText, prov.Inbox)
	}
	if prov.File != "" {
		frame.AddColumn(SourceFileColumn, model.KindText, filepath.Base(prov.File))
	}

	c.logger.Debug("Pre-cleaned frame",
		zap.String("file", prov.File),
		zap.Int("rows", frame.Len()),
		zap.Strings("dropped", report.DroppedColumns),
		zap.Int("datesNulled", report.DatesNulled),
		zap.Int("numbersNulled", report.NumbersNulled))

	return report
}

// Normalize renames every column and applies the date, phone, upper-case and
// string rules. Numeric columns are left as they are.
func (c *DataCleaner) Normalize(frame *model.Frame) model.CleaningReport {
	var report model.CleaningReport
	if frame == nil {
		return report
	}

	for idx := range frame.Columns {
		col := &frame.Columns[idx]
		col.Name = NormalizeColumnName(col.Name)

		switch {
		case model.HasMarker(col.Name, c.opts.DateMarkers):
			report.DatesNulled += c.parseDates(frame, idx)
			report.DateColumns = append(report.DateColumns, col.Name)
		case model.HasMarker(col.Name, c.opts.PhoneMarkers):
			report.PhonesNulled += c.cleanPhones(frame, idx)
			report.PhoneColumns = append(report.PhoneColumns, col.Name)
		case col.Kind == model.KindNumeric || col.Kind == model.KindTimestamp:
			// already typed
		case model.HasMarker(col.Name, c.opts.UpperMarkers):
			frame.MapColumn(idx, func(v interface{}) interface{} {
				return upper(strings.TrimSpace(stringOrEmpty(v)))
			})
		default:
			frame.MapColumn(idx, func(v interface{}) interface{} {
				return stringOrEmpty(v)
			})
		}
	}

	c.logger.Debug("Normalized frame",
		zap.Strings("columns", frame.Names()),
		zap.Int("rows", frame.Len()),
		zap.Int("phonesNulled", report.PhonesNulled))

	return report
}

// Clean runs PreClean then Normalize and merges their reports
func (c *DataCleaner) Clean(frame *model.Frame, prov Provenance) model.CleaningReport {
	report := c.PreClean(frame, prov)
	report.Merge(c.Normalize(frame))
	return report
}

// parseDates converts column idx to timestamps and returns how many non-empty values failed
func (c *DataCleaner) parseDates(frame *model.Frame, idx int) int {
	failed := 0
	frame.MapColumn(idx, func(v interface{}) interface{} {
		t, ok := parseDateIn(v, c.opts.Location)
		if !ok {
			if !isMissing(v) {
				failed++
			}
			return nil
		}
		return t
	})
	frame.Columns[idx].Kind = model.KindTimestamp
	return failed
}

func (c *DataCleaner) coerceNumbers(frame *model.Frame, idx int) int {
	failed := 0
	frame.MapColumn(idx, func(v interface{}) interface{} {
		f, ok := ToNumeric(v)
		if !ok {
			if !isMissing(v) {
				failed++
			}
			return nil
		}
		return f
	})
	frame.Columns[idx].Kind = model.KindNumeric
	return failed
}

func (c *DataCleaner) cleanPhones(frame *model.Frame, idx int) int {
	failed := 0
	frame.MapColumn(idx, func(v interface{}) interface{} {
		digits, ok := CleanPhone(v)
		if !ok {
			if !isMissing(v) {
				failed++
			}
			return nil
		}
		return digits
	})
	frame.Columns[idx].Kind = model.KindText
	return failed
}

func (c *DataCleaner) truncateText(frame *model.Frame, idx int) int {
	truncated := 0
	limit := c.opts.MaxTextLength
	frame.MapColumn(idx, func(v interface{}) interface{} {
		s, ok := v.(string)
		if !ok || utf8.RuneCountInString(s) <= limit {
			return v
		}
		truncated++
		return string([]rune(s)[:limit])
	})
	return truncated
}

// denied returns the raw names of the frame columns on the deny-list
func (c *DataCleaner) denied(frame *model.Frame) []string {
	deny := make(map[string]bool, len(c.opts.DropColumns))
	for _, d := range c.opts.DropColumns {
		deny[NormalizeColumnName(d)] = true
	}

	var names []string
	for _, col := range frame.Columns {
		if deny[NormalizeColumnName(col.Name)] {
			names = append(names, col.Name)
		}
	}
	return names
}

var (
	quoteChars = strings.NewReplacer(`"`, "", `'`, "")
	spaces     = regexp.MustCompile(`\s+`)
)

// NormalizeColumnName strips quotes, collapses whitespace, trims and upper-cases a column name
func NormalizeColumnName(name string) string {
	name = quoteChars.Replace(name)
	name = spaces.ReplaceAllString(name, " ")
	return upper(strings.TrimSpace(name))
}

func upper(s string) string {
	return cases.Upper(language.BrazilianPortuguese).String(s)
}

// stringOrEmpty renders any value as text, mapping null-like values to ""
func stringOrEmpty(v interface{}) string {
	s := toString(v)
	if isNullLike(strings.TrimSpace(s)) {
		return ""
	}
	return s
}

func isMissing(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return isNullLike(strings.TrimSpace(s))
	}
	return false
}

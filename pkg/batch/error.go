package batch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/David-Botos/leadsync/pkg/converter"
)

// ErrorCategory identifies the pipeline stage a file failed in
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryRead
	ErrorCategoryClean
	ErrorCategoryWrite
	ErrorCategorySchema
	ErrorCategoryLoad
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryRead:
		return "Read"
	case ErrorCategoryClean:
		return "Clean"
	case ErrorCategoryWrite:
		return "Write"
	case ErrorCategorySchema:
		return "Schema"
	case ErrorCategoryLoad:
		return "Load"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// CategorizeError refines the category of an error raised during stage.
// Schema mismatches surface from the load stage but are reported on their own.
func CategorizeError(stage ErrorCategory, err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}
	if errors.Is(err, converter.ErrSchemaMismatch) {
		return ErrorCategorySchema
	}
	return stage
}

// ErrorRecord represents a single error while processing a file
type ErrorRecord struct {
	Category  ErrorCategory
	File      string
	Error     error
	Message   string // Derived from Error but stored for serialization
	Timestamp time.Time
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:  category,
		Error:     err,
		Timestamp: time.Now(),
	}

	if err != nil {
		record.Message = err.Error()
	}

	return record
}

// WithFile adds file information to the error record
func (r ErrorRecord) WithFile(file string) ErrorRecord {
	r.File = file
	return r
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))

	if r.File != "" {
		sb.WriteString(fmt.Sprintf("File: %s ", r.File))
	}

	if r.Error != nil {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Error.Error()))
	} else if r.Message != "" {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Message))
	}

	return sb.String()
}

package batch

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/David-Botos/leadsync/pkg/model"
)

// FileJob represents one input file of a batch
type FileJob struct {
	ID        string    // Unique job identifier
	Path      string    // Input file path
	CreatedAt time.Time // Job creation timestamp
}

// NewFileJob creates a new file job
func NewFileJob(path string) FileJob {
	return FileJob{
		ID:        uuid.New().String(),
		Path:      path,
		CreatedAt: time.Now(),
	}
}

// Name returns the base name of the input file
func (j FileJob) Name() string {
	return filepath.Base(j.Path)
}

// FileResult represents the outcome of processing one file
type FileResult struct {
	JobID           string
	File            string
	Success         bool
	Skipped         bool // Nothing to load
	RowsRead        int
	RowsWritten     int64
	RowsQuarantined int
	CleanedPath     string
	QuarantinePath  string
	Report          model.CleaningReport
	Errors          []ErrorRecord
	Warnings        []string
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// NewFileResult initializes a result for a job
func NewFileResult(job FileJob) *FileResult {
	return &FileResult{
		JobID:     job.ID,
		File:      job.Path,
		StartTime: time.Now(),
		Errors:    make([]ErrorRecord, 0),
		Warnings:  make([]string, 0),
	}
}

// Complete marks the file as processed and calculates duration
func (r *FileResult) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = len(r.Errors) == 0
}

// AddError adds an error to the result
func (r *FileResult) AddError(err ErrorRecord) {
	r.Errors = append(r.Errors, err)
	r.Success = false
}

// AddWarning adds a warning to the result
func (r *FileResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// HasErrors checks if any errors occurred
func (r *FileResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Summary aggregates the results of a batch
type Summary struct {
	Dir              string
	Prefix           string
	TotalFiles       int
	SuccessfulFiles  int
	FailedFiles      int
	SkippedFiles     int
	TotalRowsRead    int
	TotalRowsWritten int64
	TotalQuarantined int
	ErrorCategories  map[ErrorCategory]int
	Results          []FileResult
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
	Throughput       float64 // rows read/second
}

// NewSummary initializes a new batch summary
func NewSummary(dir, prefix string) *Summary {
	return &Summary{
		Dir:             dir,
		Prefix:          prefix,
		StartTime:       time.Now(),
		ErrorCategories: make(map[ErrorCategory]int),
	}
}

// AddResult incorporates a file result into the summary
func (s *Summary) AddResult(result FileResult) {
	s.Results = append(s.Results, result)
	s.TotalFiles++
	s.TotalRowsRead += result.RowsRead
	s.TotalRowsWritten += result.RowsWritten
	s.TotalQuarantined += result.RowsQuarantined

	if !result.Success {
		s.FailedFiles++
		for _, e := range result.Errors {
			s.ErrorCategories[e.Category]++
		}
		return
	}
	s.SuccessfulFiles++
	if result.Skipped {
		s.SkippedFiles++
	}
}

// Complete marks the batch as complete and calculates metrics
func (s *Summary) Complete() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
	if s.Duration.Seconds() > 0 {
		s.Throughput = float64(s.TotalRowsRead) / s.Duration.Seconds()
	}
}

// SuccessRate returns the percentage of files processed without error
func (s *Summary) SuccessRate() float64 {
	if s.TotalFiles == 0 {
		return 0
	}
	return float64(s.SuccessfulFiles) / float64(s.TotalFiles) * 100
}

// Failures returns the results of the files that failed
func (s *Summary) Failures() []FileResult {
	var failed []FileResult
	for _, r := range s.Results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

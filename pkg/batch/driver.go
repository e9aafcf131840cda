package batch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/leadsync/pkg/cleaner"
	"github.com/David-Botos/leadsync/pkg/converter"
	"github.com/David-Botos/leadsync/pkg/loader"
	"github.com/David-Botos/leadsync/pkg/model"
	"github.com/David-Botos/leadsync/pkg/reader"
	"github.com/David-Botos/leadsync/pkg/sink"
)

// Options controls what happens to each cleaned file
type Options struct {
	Inbox    string // Channel label stamped as INBOX; empty skips the column
	Table    string
	Mode     loader.Mode // Replace recreates the table once per run; later files append
	Load     bool
	WriteCSV bool
	OutDir   string            // Cleaned and quarantine CSVs
	Schema   *converter.Schema // Nil infers the schema from each frame
	Reader   reader.Options
}

// Driver runs the read, clean, mirror and load stages over a directory of files
type Driver struct {
	opts    Options
	cleaner *cleaner.DataCleaner
	loader  *loader.Loader
	logger  *zap.Logger

	// Set once a file has replaced the table in the current run
	replaced bool
}

// NewDriver creates a driver. ld may be nil when Load is false.
func NewDriver(opts Options, cl *cleaner.DataCleaner, ld *loader.Loader, logger *zap.Logger) (*Driver, error) {
	if cl == nil {
		return nil, errors.New("cleaner cannot be nil")
	}
	if opts.Load {
		if ld == nil {
			return nil, errors.New("loading requested without a loader")
		}
		if opts.Table == "" {
			return nil, errors.New("loading requested without a table name")
		}
		if opts.Mode == "" {
			opts.Mode = loader.ModeReplace
		}
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}

	return &Driver{
		opts:    opts,
		cleaner: cl,
		loader:  ld,
		logger:  logger.Named("batch"),
	}, nil
}

// Run processes every file in dir whose name starts with prefix, one at a time.
// A failing file is recorded in the summary and the batch moves on; only a
// discovery failure or cancellation ends the run early.
func (d *Driver) Run(ctx context.Context, dir, prefix string) (*Summary, error) {
	summary := NewSummary(dir, prefix)
	d.replaced = false

	files, err := reader.Discover(dir, prefix)
	if err != nil {
		return nil, err
	}

	d.logger.Info("Starting batch",
		zap.String("dir", dir),
		zap.String("prefix", prefix),
		zap.Int("files", len(files)),
		zap.Bool("load", d.opts.Load),
		zap.Bool("csv", d.opts.WriteCSV))

	if len(files) == 0 {
		d.logger.Warn("No files matched", zap.String("dir", dir), zap.String("prefix", prefix))
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			summary.Complete()
			return summary, fmt.Errorf("batch interrupted: %w", err)
		}

		result := d.ProcessFile(ctx, NewFileJob(path))
		summary.AddResult(*result)
	}

	summary.Complete()
	d.logger.Info("Batch finished",
		zap.Int("files", summary.TotalFiles),
		zap.Int("succeeded", summary.SuccessfulFiles),
		zap.Int("failed", summary.FailedFiles),
		zap.Int("rowsRead", summary.TotalRowsRead),
		zap.Int64("rowsWritten", summary.TotalRowsWritten),
		zap.Int("quarantined", summary.TotalQuarantined),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

// loadMode returns the configured mode, except that replace turns into append
// after the first file of the run has recreated the table
func (d *Driver) loadMode() loader.Mode {
	if d.opts.Mode == loader.ModeReplace && d.replaced {
		return loader.ModeAppend
	}
	return d.opts.Mode
}

// ProcessFile runs every stage for a single file. It never returns an error:
// failures are recorded on the result with their category.
func (d *Driver) ProcessFile(ctx context.Context, job FileJob) (result *FileResult) {
	result = NewFileResult(job)
	logger := d.logger.With(zap.String("file", job.Name()), zap.String("jobId", job.ID))

	stage := ErrorCategoryRead
	fail := func(err error) *FileResult {
		record := NewErrorRecord(err, CategorizeError(stage, err)).WithFile(job.Path)
		result.AddError(record)
		result.Complete()
		logger.Error("File failed",
			zap.String("category", record.Category.String()),
			zap.Error(err))
		return result
	}

	var frame *model.Frame
	defer func() {
		frame.Release()
		if r := recover(); r != nil {
			result = fail(fmt.Errorf("panic while processing %s: %v", job.Name(), r))
		}
	}()

	frame, err := reader.ReadFile(job.Path, d.opts.Reader)
	if err != nil {
		return fail(err)
	}
	result.RowsRead = frame.Len()
	logger.Info("File read", zap.Int("rows", frame.Len()), zap.Int("columns", len(frame.Columns)))

	stage = ErrorCategoryClean
	result.Report = d.cleaner.Clean(frame, cleaner.Provenance{Inbox: d.opts.Inbox, File: job.Path})
	if n := len(result.Report.DroppedColumns); n > 0 {
		result.AddWarning(fmt.Sprintf("dropped %d sensitive columns", n))
	}

	if d.opts.WriteCSV {
		stage = ErrorCategoryWrite
		path := sink.CleanedPath(d.opts.OutDir, job.Path)
		if err := sink.WriteCSV(path, frame); err != nil {
			return fail(err)
		}
		result.CleanedPath = path
		logger.Info("Cleaned CSV written", zap.String("path", path))
	}

	if d.opts.Load {
		stage = ErrorCategoryLoad
		mode := d.loadMode()
		res, err := d.loader.Load(ctx, frame, d.opts.Table, mode, d.opts.Schema)
		if err != nil {
			return fail(err)
		}
		if mode == loader.ModeReplace && !res.Skipped {
			d.replaced = true
		}
		result.Skipped = res.Skipped
		result.RowsWritten = res.RowsWritten
		result.RowsQuarantined = len(res.Quarantined)
		for _, col := range res.Ignored {
			result.AddWarning(fmt.Sprintf("column %s is not in the target schema", col))
		}

		if len(res.Quarantined) > 0 {
			stage = ErrorCategoryWrite
			path := sink.QuarantinePath(d.opts.OutDir, job.Path)
			if err := sink.WriteQuarantine(path, frame, res.Quarantined); err != nil {
				return fail(err)
			}
			result.QuarantinePath = path
			result.AddWarning(fmt.Sprintf("%d rows quarantined", len(res.Quarantined)))
		}
	}

	result.Complete()
	logger.Info("File processed",
		zap.Int("rowsRead", result.RowsRead),
		zap.Int64("rowsWritten", result.RowsWritten),
		zap.Int("quarantined", result.RowsQuarantined),
		zap.Duration("duration", result.Duration))
	return result
}

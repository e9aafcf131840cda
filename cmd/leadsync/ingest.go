package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/leadsync/pkg/batch"
	"github.com/David-Botos/leadsync/pkg/cleaner"
	"github.com/David-Botos/leadsync/pkg/connector"
	"github.com/David-Botos/leadsync/pkg/converter"
	"github.com/David-Botos/leadsync/pkg/loader"
	"github.com/David-Botos/leadsync/pkg/logging"
	"github.com/David-Botos/leadsync/pkg/reader"
)

var (
	ingestDir    string
	ingestPrefix string
	ingestInbox  string
	ingestTable  string
	ingestMode   string
	ingestLoad   bool
	ingestCSV    bool
	ingestOut    string
	ingestSchema string
)

// ingestCmd cleans every matching export and optionally mirrors and loads it
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Clean lead exports and load them into a table",
	Long: `The ingest command reads every CSV or Excel file in --dir whose name starts with
--prefix, cleans and normalizes it, optionally writes a ';'-separated _cleaned.csv copy
(--csv) and optionally loads it into --table (--load) in replace or append mode.

A file that fails is reported and the batch continues with the next one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mode, err := loader.ParseMode(ingestMode)
		if err != nil {
			return err
		}

		var schema *converter.Schema
		if ingestSchema != "" {
			schema, err = converter.LoadSchema(ingestSchema)
			if err != nil {
				return err
			}
			logger.Info("Using target schema",
				zap.String("schema", schema.Name),
				zap.Int("version", schema.Version))
		}

		cleanOpts := cleaner.DefaultOptions()
		cleanOpts.MaxTextLength = cfg.TextColumnLength
		cleanOpts.Location = cfg.Location()
		dataCleaner, err := cleaner.NewDataCleaner(cleanOpts, logger)
		if err != nil {
			return err
		}

		var ld *loader.Loader
		if ingestLoad {
			conn, err := connector.NewConnector(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := conn.Validate(ctx); err != nil {
				return err
			}

			conv := converter.NewTypeConverterWithConfig(logger, converter.TypeConverterConfig{
				TextLength:        cfg.TextColumnLength,
				EmptyStringAsNull: cfg.EmptyAsNull,
				Location:          cfg.Location(),
			})
			ld = loader.NewLoader(conn, conv, logger)
			if cfg.Database.StatementTimeout > 0 {
				ld.WithTimeout(cfg.Database.StatementTimeout)
			}
		}

		driver, err := batch.NewDriver(batch.Options{
			Inbox:    ingestInbox,
			Table:    ingestTable,
			Mode:     mode,
			Load:     ingestLoad,
			WriteCSV: ingestCSV,
			OutDir:   ingestOut,
			Schema:   schema,
			Reader:   reader.Options{Latin1: cfg.Latin1()},
		}, dataCleaner, ld, logger)
		if err != nil {
			return err
		}

		summary, err := driver.Run(ctx, ingestDir, ingestPrefix)
		if summary != nil {
			printSummary(summary)
		}
		if err != nil {
			return err
		}

		if summary.FailedFiles > 0 {
			return fmt.Errorf("%d of %d files failed", summary.FailedFiles, summary.TotalFiles)
		}
		return nil
	},
}

func printSummary(s *batch.Summary) {
	if s.TotalFiles == 0 {
		pterm.Warning.Printf("No files starting with %q found in %s\n", s.Prefix, s.Dir)
		return
	}

	data := pterm.TableData{{"File", "Status", "Rows", "Loaded", "Quarantined", "Detail"}}
	for _, r := range s.Results {
		status, detail := "ok", ""
		switch {
		case r.HasErrors():
			status = "failed"
			detail = r.Errors[0].Category.String() + ": " + r.Errors[0].Message
		case r.Skipped:
			status = "empty"
			detail = "nothing to load"
		case r.QuarantinePath != "":
			detail = r.QuarantinePath
		case r.CleanedPath != "":
			detail = r.CleanedPath
		}
		data = append(data, []string{
			filepath.Base(r.File),
			status,
			strconv.Itoa(r.RowsRead),
			strconv.FormatInt(r.RowsWritten, 10),
			strconv.Itoa(r.RowsQuarantined),
			detail,
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	pterm.Println()
	pterm.Printf("Files: %d processed, %d failed (%.0f%% success) in %.2f seconds\n",
		s.TotalFiles, s.FailedFiles, s.SuccessRate(), s.Duration.Seconds())
	pterm.Printf("Rows: %d read, %d loaded, %d quarantined\n",
		s.TotalRowsRead, s.TotalRowsWritten, s.TotalQuarantined)

	for _, r := range s.Failures() {
		for _, rec := range r.Errors {
			pterm.Error.Println(logging.Mask(rec.String()))
		}
	}
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "files", "Directory holding the exports")
	ingestCmd.Flags().StringVar(&ingestPrefix, "prefix", "", "File name prefix to match")
	ingestCmd.Flags().StringVar(&ingestInbox, "inbox", "", "Channel label stamped in the INBOX column")
	ingestCmd.Flags().StringVar(&ingestTable, "table", "", "Target table name")
	ingestCmd.Flags().StringVar(&ingestMode, "mode", string(loader.ModeReplace), "Load mode: replace or append")
	ingestCmd.Flags().BoolVar(&ingestLoad, "load", false, "Load the cleaned rows into --table")
	ingestCmd.Flags().BoolVar(&ingestCSV, "csv", false, "Write a _cleaned.csv copy of every file")
	ingestCmd.Flags().StringVar(&ingestOut, "out", ".", "Directory for the cleaned and quarantine CSVs")
	ingestCmd.Flags().StringVar(&ingestSchema, "schema", "", "YAML file describing the target table")
	_ = ingestCmd.MarkFlagRequired("prefix")
}

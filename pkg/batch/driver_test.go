package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/David-Botos/leadsync/pkg/cleaner"
	"github.com/David-Botos/leadsync/pkg/config"
	"github.com/David-Botos/leadsync/pkg/connector"
	"github.com/David-Botos/leadsync/pkg/converter"
	"github.com/David-Botos/leadsync/pkg/loader"
)

func writeInput(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestLoader(t *testing.T) *loader.Loader {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Target: config.TargetSQLite,
		SQLite: &config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "leads.db")},
	}
	conn, err := connector.NewConnector(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewConnector() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return loader.NewLoader(conn, converter.NewTypeConverter(zap.NewNop()), zap.NewNop())
}

func newTestCleaner(t *testing.T) *cleaner.DataCleaner {
	t.Helper()
	c, err := cleaner.NewDataCleaner(cleaner.DefaultOptions(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestDriverRun(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInput(t, in, "leads_1.csv",
		"Nome,Data Entrada,WhatsApp,Valor\n"+
			"joão,20/07/2025,(11) 99999-0000,150.5\n")
	writeInput(t, in, "leads_2.json", `{"nome":"ana"}`)
	writeInput(t, in, "leads_3.csv", "Nome,Valor\n")
	writeInput(t, in, "other.csv", "Nome\nx\n")

	ld := newTestLoader(t)
	d, err := NewDriver(Options{
		Inbox:    "SITE",
		Table:    "LEADS",
		Mode:     loader.ModeAppend,
		Load:     true,
		WriteCSV: true,
		OutDir:   out,
	}, newTestCleaner(t), ld, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	summary, err := d.Run(context.Background(), in, "leads_")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.TotalFiles != 3 || summary.SuccessfulFiles != 2 || summary.FailedFiles != 1 || summary.SkippedFiles != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.TotalRowsWritten != 1 {
		t.Errorf("TotalRowsWritten = %d, want 1", summary.TotalRowsWritten)
	}
	if summary.ErrorCategories[ErrorCategoryRead] != 1 {
		t.Errorf("ErrorCategories = %v", summary.ErrorCategories)
	}

	failed := summary.Failures()
	if len(failed) != 1 || !strings.HasSuffix(failed[0].File, "leads_2.json") {
		t.Fatalf("Failures() = %+v", failed)
	}
	if !strings.Contains(failed[0].Errors[0].Message, "unsupported file extension") {
		t.Errorf("failure message = %s", failed[0].Errors[0].Message)
	}

	mirror, err := os.ReadFile(filepath.Join(out, "leads_1_cleaned.csv"))
	if err != nil {
		t.Fatalf("cleaned CSV missing: %v", err)
	}
	want := "NOME;DATA ENTRADA;WHATSAPP;VALOR;INBOX;ARQUIVO_ORIGEM\n" +
		"JOÃO;2025-07-20 00:00:00;11999990000;150.5;SITE;leads_1.csv\n"
	if string(mirror) != want {
		t.Errorf("cleaned CSV = %q, want %q", mirror, want)
	}

	rows, err := ld.Query(context.Background(), `SELECT "NOME" AS nome, "WHATSAPP" AS phone, "ARQUIVO_ORIGEM" AS arquivo FROM "LEADS"`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(rows) != 1 || rows[0]["nome"] != "JOÃO" || rows[0]["phone"] != "11999990000" || rows[0]["arquivo"] != "leads_1.csv" {
		t.Errorf("loaded rows = %v", rows)
	}
}

func TestDriverReplaceKeepsEveryFileOfTheRun(t *testing.T) {
	in := t.TempDir()
	writeInput(t, in, "leads_1.csv", "Nome,Valor\nana,1\nbia,2\n")
	writeInput(t, in, "leads_2.csv", "Nome,Valor\ncaio,3\n")

	ld := newTestLoader(t)
	d, err := NewDriver(Options{Table: "LEADS", Mode: loader.ModeReplace, Load: true, OutDir: t.TempDir()},
		newTestCleaner(t), ld, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	// A second run replaces the first run's rows instead of adding to them
	for run := 1; run <= 2; run++ {
		summary, err := d.Run(context.Background(), in, "leads_")
		if err != nil {
			t.Fatalf("run %d: Run() error = %v", run, err)
		}
		if summary.FailedFiles != 0 || summary.TotalRowsWritten != 3 {
			t.Errorf("run %d: summary = %+v", run, summary)
		}

		rows, err := ld.Query(context.Background(), `SELECT COUNT(*) AS n FROM "LEADS"`)
		if err != nil {
			t.Fatalf("run %d: Query() error = %v", run, err)
		}
		if len(rows) != 1 || rows[0]["n"] != int64(3) {
			t.Errorf("run %d: table rows = %v, want 3", run, rows)
		}
	}
}

func TestDriverQuarantineAndSchemaErrors(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInput(t, in, "leads_1.csv", "Nome,Valor\nana,1\nbartolomeu,2\n")

	schema := &converter.Schema{Name: "LEADS", Version: 1, Columns: []converter.ColumnDef{
		{Name: "NOME", Type: "text", Length: 5},
		{Name: "VALOR", Type: "numeric"},
	}}
	if err := schema.Validate(); err != nil {
		t.Fatal(err)
	}

	d, err := NewDriver(Options{Table: "LEADS", Load: true, OutDir: out, Schema: schema},
		newTestCleaner(t), newTestLoader(t), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	summary, err := d.Run(context.Background(), in, "leads_")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	res := summary.Results[0]
	if !res.Success || res.RowsWritten != 1 || res.RowsQuarantined != 1 {
		t.Errorf("result = %+v", res)
	}
	if res.QuarantinePath == "" {
		t.Fatal("QuarantinePath is empty")
	}
	data, err := os.ReadFile(res.QuarantinePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "BARTOLOMEU") {
		t.Errorf("quarantine file = %q", data)
	}

	// A schema sharing no column with the file fails it as a schema error
	mismatch := &converter.Schema{Name: "OTHER", Version: 1, Columns: []converter.ColumnDef{{Name: "PLACA", Type: "text"}}}
	if err := mismatch.Validate(); err != nil {
		t.Fatal(err)
	}
	d, _ = NewDriver(Options{Table: "OTHER", Load: true, OutDir: out, Schema: mismatch},
		newTestCleaner(t), newTestLoader(t), zap.NewNop())

	summary, err = d.Run(context.Background(), in, "leads_")
	if err != nil {
		t.Fatal(err)
	}
	if summary.ErrorCategories[ErrorCategorySchema] != 1 {
		t.Errorf("ErrorCategories = %v, want one schema error", summary.ErrorCategories)
	}
}

func TestDriverRunMissingDirectory(t *testing.T) {
	d, err := NewDriver(Options{}, newTestCleaner(t), nil, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), "leads_"); err == nil {
		t.Fatal("Run() expected discovery error")
	}
}

func TestDriverRunCancelled(t *testing.T) {
	in := t.TempDir()
	writeInput(t, in, "leads_1.csv", "Nome\nana\n")

	d, _ := NewDriver(Options{}, newTestCleaner(t), nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := d.Run(ctx, in, "leads_")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if summary.TotalFiles != 0 {
		t.Errorf("TotalFiles = %d, want 0", summary.TotalFiles)
	}
}

func TestNewDriverValidation(t *testing.T) {
	c := newTestCleaner(t)
	if _, err := NewDriver(Options{Load: true, Table: "LEADS"}, c, nil, zap.NewNop()); err == nil {
		t.Error("expected error when loading without a loader")
	}
	if _, err := NewDriver(Options{}, nil, nil, zap.NewNop()); err == nil {
		t.Error("expected error without a cleaner")
	}
}

func TestErrorCategoryString(t *testing.T) {
	tests := map[ErrorCategory]string{
		ErrorCategoryNone:   "None",
		ErrorCategoryRead:   "Read",
		ErrorCategorySchema: "Schema",
		ErrorCategoryLoad:   "Load",
		ErrorCategory(42):   "Unknown(42)",
	}
	for cat, want := range tests {
		if got := cat.String(); got != want {
			t.Errorf("String() = %s, want %s", got, want)
		}
	}
}

func TestCategorizeError(t *testing.T) {
	schemaErr := errors.Join(errors.New("planning"), converter.ErrSchemaMismatch)
	if got := CategorizeError(ErrorCategoryLoad, schemaErr); got != ErrorCategorySchema {
		t.Errorf("CategorizeError(schema) = %v", got)
	}
	if got := CategorizeError(ErrorCategoryLoad, errors.New("ORA-01017")); got != ErrorCategoryLoad {
		t.Errorf("CategorizeError(db) = %v", got)
	}
	if got := CategorizeError(ErrorCategoryRead, nil); got != ErrorCategoryNone {
		t.Errorf("CategorizeError(nil) = %v", got)
	}
}

func TestErrorRecordString(t *testing.T) {
	rec := NewErrorRecord(errors.New("unsupported file extension"), ErrorCategoryRead).WithFile("in/leads_2.json")
	want := "[Read] File: in/leads_2.json Error: unsupported file extension"
	if got := rec.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	rec = ErrorRecord{Category: ErrorCategoryLoad, Message: "ORA-01017"}
	if got := rec.String(); got != "[Load] Error: ORA-01017" {
		t.Errorf("String() = %q", got)
	}
}

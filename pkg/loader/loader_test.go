package loader

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/leadsync/pkg/config"
	"github.com/David-Botos/leadsync/pkg/connector"
	"github.com/David-Botos/leadsync/pkg/converter"
	"github.com/David-Botos/leadsync/pkg/model"
)

func newSQLiteLoader(t *testing.T) *Loader {
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

	return NewLoader(conn, converter.NewTypeConverter(zap.NewNop()), zap.NewNop())
}

func cleanedFrame() *model.Frame {
	return &model.Frame{
		Columns: []model.Column{
			{Name: "NOME", Kind: model.KindText},
			{Name: "DATA ENTRADA", Kind: model.KindTimestamp},
			{Name: "VALOR", Kind: model.KindNumeric},
		},
		Rows: [][]interface{}{
			{"JOÃO", time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC), 150.5},
			{"MARIA", nil, nil},
		},
	}
}

func countRows(t *testing.T, l *Loader, table string) int64 {
	t.Helper()
	rows, err := l.Query(context.Background(), `SELECT COUNT(*) AS n FROM "`+table+`"`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	n, ok := rows[0]["n"].(int64)
	if !ok {
		t.Fatalf("count = %#v", rows[0]["n"])
	}
	return n
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{input: "replace", want: ModeReplace},
		{input: " Append ", want: ModeAppend},
		{input: "upsert", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v", tt.input, got, err)
		}
	}
}

func TestLoadReplace(t *testing.T) {
	l := newSQLiteLoader(t)
	ctx := context.Background()

	res, err := l.Load(ctx, cleanedFrame(), "LEADS", ModeReplace, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.RowsWritten != 2 || !res.Verified || res.Skipped {
		t.Errorf("result = %+v", res)
	}

	// Replace again with a single row: the old rows are gone
	frame := cleanedFrame()
	frame.Rows = frame.Rows[:1]
	if _, err := l.Load(ctx, frame, "LEADS", ModeReplace, nil); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if n := countRows(t, l, "LEADS"); n != 1 {
		t.Errorf("row count = %d, want 1", n)
	}

	rows, err := l.Query(ctx, `SELECT "NOME" AS nome, "VALOR" AS valor FROM "LEADS"`)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0]["nome"] != "JOÃO" || rows[0]["valor"] != 150.5 {
		t.Errorf("row = %v", rows[0])
	}
}

func TestLoadAppend(t *testing.T) {
	l := newSQLiteLoader(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := l.Load(ctx, cleanedFrame(), "LEADS", ModeAppend, nil)
		if err != nil {
			t.Fatalf("Load() #%d error = %v", i, err)
		}
		if res.Verified {
			t.Error("append mode should not verify row counts")
		}
	}
	if n := countRows(t, l, "LEADS"); n != 4 {
		t.Errorf("row count = %d, want 4", n)
	}
}

func TestLoadQuarantinesInvalidRows(t *testing.T) {
	l := newSQLiteLoader(t)
	schema := &converter.Schema{Name: "LEADS", Version: 2, Columns: []converter.ColumnDef{
		{Name: "NOME", Type: "text", Kind: model.KindText, Length: 4},
		{Name: "VALOR", Type: "numeric", Kind: model.KindNumeric},
	}}

	res, err := l.Load(context.Background(), cleanedFrame(), "LEADS", ModeReplace, schema)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.RowsWritten != 1 {
		t.Errorf("RowsWritten = %d, want 1", res.RowsWritten)
	}
	if len(res.Quarantined) != 1 || res.Quarantined[0].Row != 1 || res.Quarantined[0].Column != "NOME" {
		t.Errorf("Quarantined = %+v", res.Quarantined)
	}
	if len(res.Ignored) != 1 || res.Ignored[0] != "DATA ENTRADA" {
		t.Errorf("Ignored = %v", res.Ignored)
	}
}

func TestLoadSchemaMismatch(t *testing.T) {
	l := newSQLiteLoader(t)
	schema := &converter.Schema{Name: "OTHER", Version: 1, Columns: []converter.ColumnDef{
		{Name: "PLACA", Type: "text", Kind: model.KindText},
	}}

	_, err := l.Load(context.Background(), cleanedFrame(), "LEADS", ModeReplace, schema)
	if !errors.Is(err, converter.ErrSchemaMismatch) {
		t.Fatalf("Load() error = %v, want ErrSchemaMismatch", err)
	}
}

// untouchedConnector fails the test on any database access
type untouchedConnector struct {
	t *testing.T
}

func (c untouchedConnector) DB() *sqlx.DB {
	c.t.Error("DB() called")
	return nil
}

func (c untouchedConnector) Dialect() connector.Dialect {
	c.t.Error("Dialect() called")
	return connector.OracleDialect{}
}

func (c untouchedConnector) Validate(context.Context) error { return nil }
func (c untouchedConnector) Close() error                   { return nil }

func (c untouchedConnector) ExecWithTimeout(context.Context, string, time.Duration, ...interface{}) (sql.Result, error) {
	c.t.Error("ExecWithTimeout() called")
	return nil, errors.New("unexpected exec")
}

func TestLoadEmptyFrameWritesNothing(t *testing.T) {
	l := NewLoader(untouchedConnector{t: t}, converter.NewTypeConverter(zap.NewNop()), zap.NewNop())

	frame := model.NewFrame([]string{"NOME"})
	res, err := l.Load(context.Background(), frame, "LEADS", ModeReplace, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !res.Skipped || res.RowsWritten != 0 {
		t.Errorf("result = %+v", res)
	}
}

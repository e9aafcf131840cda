package reader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/David-Botos/leadsync/pkg/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "leads_b.csv", "a\n1\n")
	writeFile(t, dir, "leads_a.xlsx", "")
	writeFile(t, dir, "other.csv", "a\n1\n")
	if err := os.Mkdir(filepath.Join(dir, "leads_dir"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := Discover(dir, "leads_")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	want := []string{filepath.Join(dir, "leads_a.xlsx"), filepath.Join(dir, "leads_b.csv")}
	if len(files) != len(want) {
		t.Fatalf("Discover() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("Discover()[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestDiscoverMissingDirectory(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "missing"), "x"); err == nil {
		t.Fatal("Discover() expected error for missing directory")
	}
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	// The file does not exist: the extension check must come first
	_, err := ReadFile(filepath.Join(t.TempDir(), "leads.json"), Options{})
	if !errors.Is(err, ErrUnsupportedExtension) {
		t.Fatalf("ReadFile() error = %v, want ErrUnsupportedExtension", err)
	}
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "leads_1.csv",
		"\ufeffNome,Data Entrada,WhatsApp,Valor,CEP\n"+
			"joão,20/07/2025,(11) 99999-0000,150.5,01310100\n"+
			"maria,,,NA,\n")

	frame, err := ReadFile(path, Options{})
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if frame.Source != path {
		t.Errorf("Source = %q, want %q", frame.Source, path)
	}
	wantNames := []string{"Nome", "Data Entrada", "WhatsApp", "Valor", "CEP"}
	for i, n := range wantNames {
		if frame.Columns[i].Name != n {
			t.Errorf("column %d = %q, want %q", i, frame.Columns[i].Name, n)
		}
	}
	if frame.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", frame.Len())
	}

	if frame.Columns[3].Kind != model.KindNumeric {
		t.Errorf("Valor kind = %v, want numeric", frame.Columns[3].Kind)
	}
	if frame.Rows[0][3] != 150.5 || frame.Rows[1][3] != nil {
		t.Errorf("Valor = %v, %v", frame.Rows[0][3], frame.Rows[1][3])
	}
	if frame.Columns[4].Kind != model.KindText || frame.Rows[0][4] != "01310100" {
		t.Errorf("CEP = %v (%v), want text with leading zero", frame.Rows[0][4], frame.Columns[4].Kind)
	}
	if frame.Rows[0][0] != "joão" {
		t.Errorf("Nome = %v", frame.Rows[0][0])
	}
	if frame.Rows[1][1] != nil {
		t.Errorf("empty cell = %v, want nil", frame.Rows[1][1])
	}
}

func TestReadCSVLatin1(t *testing.T) {
	dir := t.TempDir()
	// 0xE3 is ã in ISO-8859-1
	path := writeFile(t, dir, "leads_latin.csv", "Nome\nJo\xe3o\n")

	frame, err := ReadFile(path, Options{Latin1: true})
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if frame.Rows[0][0] != "João" {
		t.Errorf("Nome = %q, want João", frame.Rows[0][0])
	}
}

func TestReadSpreadsheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leads_1.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]interface{}{
		"A1": "Nome", "B1": "Modelo", "C1": "Valor",
		"A2": "ana", "B2": "onix", "C2": 89900.5,
		"A3": "bruno", "B3": "hb20", "C3": 75000,
	}
	for cell, v := range cells {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	frame, err := ReadFile(path, Options{})
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if frame.Len() != 2 || len(frame.Columns) != 3 {
		t.Fatalf("frame = %d rows x %d cols, want 2 x 3", frame.Len(), len(frame.Columns))
	}
	if frame.Columns[2].Kind != model.KindNumeric || frame.Rows[0][2] != 89900.5 {
		t.Errorf("Valor = %v (%v)", frame.Rows[0][2], frame.Columns[2].Kind)
	}
	if frame.Rows[1][1] != "hb20" {
		t.Errorf("Modelo = %v", frame.Rows[1][1])
	}
}

func TestInferKinds(t *testing.T) {
	frame := model.NewFrame([]string{"n", "t", "empty", "zero"})
	frame.Rows = [][]interface{}{
		{"1", "a", nil, "0"},
		{"2.5", "3", nil, "0.5"},
	}

	InferKinds(frame)

	want := []model.Kind{model.KindNumeric, model.KindText, model.KindText, model.KindNumeric}
	for i, k := range want {
		if frame.Columns[i].Kind != k {
			t.Errorf("column %s kind = %v, want %v", frame.Columns[i].Name, frame.Columns[i].Kind, k)
		}
	}
	if frame.Rows[1][0] != 2.5 {
		t.Errorf("converted value = %v, want 2.5", frame.Rows[1][0])
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	path := writeFile(t, t.TempDir(), "leads_empty.csv", "Nome,Valor\n")

	frame, err := ReadFile(path, Options{})
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !frame.Empty() || len(frame.Columns) != 2 {
		t.Errorf("frame = %d rows x %d cols, want 0 x 2", frame.Len(), len(frame.Columns))
	}
}

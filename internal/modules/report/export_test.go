package report

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func sampleTable() *Table {
	return &Table{
		Name:    string(ExportExpenses),
		Columns: []string{"category", "description", "amount", "date"},
		Rows: [][]string{
			{"Operational", "rent - October", "50000", "2026-10-01"},
			{"Waste", "paper_waste - misprint, \"A4\"", "1200.50", "2026-10-03"},
		},
	}
}

func TestEncodeCSV(t *testing.T) {
	t.Parallel()

	out, err := encode(sampleTable(), FormatCSV, "expenses_2026-10-01_to_2026-10-31")
	if err != nil {
		t.Fatalf("encode() error = %v", err)
	}
	if out.Filename != "expenses_2026-10-01_to_2026-10-31.csv" {
		t.Errorf("Filename = %q", out.Filename)
	}
	if out.ContentType != contentTypeCSV {
		t.Errorf("ContentType = %q, want %q", out.ContentType, contentTypeCSV)
	}

	records, err := csv.NewReader(bytes.NewReader(out.Body)).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	want := append([][]string{sampleTable().Columns}, sampleTable().Rows...)
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %v, want %v", records, want)
	}
}

func TestEncodeXLSX(t *testing.T) {
	t.Parallel()

	out, err := encode(sampleTable(), FormatXLSX, "expenses_2026-10-01_to_2026-10-31")
	if err != nil {
		t.Fatalf("encode() error = %v", err)
	}
	if out.Filename != "expenses_2026-10-01_to_2026-10-31.xlsx" || out.ContentType != contentTypeXLSX {
		t.Errorf("Filename/ContentType = %q/%q", out.Filename, out.ContentType)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out.Body))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(string(ExportExpenses))
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0][0] != "category" || rows[2][1] != "paper_waste - misprint, \"A4\"" {
		t.Errorf("unexpected rows %v", rows)
	}
}

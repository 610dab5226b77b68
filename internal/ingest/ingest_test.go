package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseSalesCSV_AggregatesDuplicates(t *testing.T) {
	in := "Product_ID,Product_Name,Date,Demand\n" +
		"P1,Laptop,2024-01-01,10\n" +
		"P2,,2024-01-01,3\n" +
		"P1,Laptop,2024-01-01,5\n" +
		"P1,Laptop,2024-01-02T08:00:00Z,7\n" +
		",orphan,2024-01-02,1\n"

	got, err := ParseSalesCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseSalesCSV: %v", err)
	}

	if len(got.Products) != 2 || got.Products[0].ProductID != "P1" || got.Products[1].Name != "P2" {
		t.Fatalf("unexpected products: %+v", got.Products)
	}
	if len(got.Demand) != 3 {
		t.Fatalf("expected 3 demand rows, got %+v", got.Demand)
	}
	if got.Demand[0].Demand != 15 {
		t.Fatalf("duplicate rows should sum to 15, got %v", got.Demand[0].Demand)
	}
	if got.Demand[2].Date != "2024-01-02" {
		t.Fatalf("timestamps should normalize to dates, got %q", got.Demand[2].Date)
	}
}

func TestParseSalesCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		missing bool
	}{
		{name: "empty", in: "", missing: true},
		{name: "no demand column", in: "product_id,date\nP1,2024-01-01\n", missing: true},
		{name: "bad date", in: "product_id,date,demand\nP1,yesterday,4\n"},
		{name: "bad demand", in: "product_id,date,demand\nP1,2024-01-01,lots\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSalesCSV(strings.NewReader(tt.in))
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := errors.Is(err, ErrMissingColumn); got != tt.missing {
				t.Fatalf("errors.Is(ErrMissingColumn) = %v, want %v (%v)", got, tt.missing, err)
			}
		})
	}
}

func writeWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestToCSV_ConvertsSpreadsheet(t *testing.T) {
	data := writeWorkbook(t, [][]interface{}{
		{"product_id", "product_name", "date", "demand"},
		{"P9", "Monitor", "2024-03-01", 12},
	})

	name, csvData, err := ToCSV("sales.XLSX", data)
	if err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	if name != "sales.csv" {
		t.Fatalf("unexpected name %q", name)
	}

	parsed, err := ParseSalesCSV(strings.NewReader(string(csvData)))
	if err != nil {
		t.Fatalf("parse converted csv: %v", err)
	}
	if len(parsed.Demand) != 1 || parsed.Demand[0].Demand != 12 || parsed.Products[0].Name != "Monitor" {
		t.Fatalf("unexpected parse result: %+v", parsed)
	}
}

func TestToCSV_PassesThroughCSV(t *testing.T) {
	name, data, err := ToCSV("sales.csv", []byte("a,b\n"))
	if err != nil || name != "sales.csv" || string(data) != "a,b\n" {
		t.Fatalf("unexpected passthrough: %q %q %v", name, data, err)
	}
}

func TestParseFiles_MergesInOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.csv")
	second := filepath.Join(dir, "b.csv")
	if err := os.WriteFile(first, []byte("product_id,product_name,date,demand\nP1,Laptop,2024-01-01,4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("product_id,product_name,date,demand\nP2,Mouse,2024-01-01,2\nP1,Laptop,2024-01-01,6\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ParseFiles(context.Background(), []string{first, second})
	if err != nil {
		t.Fatalf("ParseFiles: %v", err)
	}
	if len(got.Products) != 2 || got.Products[0].ProductID != "P1" {
		t.Fatalf("unexpected products: %+v", got.Products)
	}
	if len(got.Demand) != 2 || got.Demand[0].Demand != 10 {
		t.Fatalf("unexpected demand: %+v", got.Demand)
	}
}

func TestParseFiles_PropagatesErrors(t *testing.T) {
	_, err := ParseFiles(context.Background(), []string{filepath.Join(t.TempDir(), "missing.csv")})
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// IsSpreadsheet reports whether the file name has an .xlsx extension.
func IsSpreadsheet(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

// CSVName replaces the extension of a spreadsheet file name with .csv.
func CSVName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".csv"
}

// XLSXToCSV converts the first sheet of a workbook to CSV.
func XLSXToCSV(r io.Reader, w io.Writer) error {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("xlsx has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("failed to read row from sheet %s: %w", sheet, err)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	if err := rows.Error(); err != nil {
		return fmt.Errorf("error iterating rows in %s: %w", sheet, err)
	}

	cw.Flush()
	return cw.Error()
}

// ToCSV returns the CSV form of an uploaded file, converting spreadsheets.
// The returned name carries the .csv extension.
func ToCSV(name string, data []byte) (string, []byte, error) {
	if !IsSpreadsheet(name) {
		return name, data, nil
	}
	var buf bytes.Buffer
	if err := XLSXToCSV(bytes.NewReader(data), &buf); err != nil {
		return "", nil, fmt.Errorf("convert %s: %w", name, err)
	}
	return CSVName(name), buf.Bytes(), nil
}

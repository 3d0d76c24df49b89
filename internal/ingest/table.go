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

// Table is a row-oriented view of one uploaded sheet. Rows are aligned to
// Headers; short rows are padded with empty cells at decode time, and rows
// whose every cell is blank are discarded.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Decode parses the raw upload into a Table, dispatching on the file
// extension (.xlsx, .xls or .csv).
func Decode(filename string, data []byte) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return DecodeXLSX(data)
	case ".csv":
		return DecodeCSV(data)
	default:
		return nil, fmt.Errorf("unsupported upload format: %s", filepath.Ext(filename))
	}
}

// DecodeXLSX reads the first sheet of an Excel workbook.
func DecodeXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse the Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyUpload
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return tableFromRecords(rows), nil
}

// DecodeCSV reads a comma-separated upload.
func DecodeCSV(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // spreadsheet exports ragged rows; pad later

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse the CSV file: %w", err)
		}
		records = append(records, rec)
	}
	return tableFromRecords(records), nil
}

func tableFromRecords(records [][]string) *Table {
	t := &Table{}
	if len(records) == 0 {
		return t
	}
	for _, h := range records[0] {
		t.Headers = append(t.Headers, strings.TrimSpace(h))
	}
	for _, rec := range records[1:] {
		row := make([]string, len(t.Headers))
		blank := true
		for i := range t.Headers {
			if i < len(rec) {
				row[i] = rec[i]
				if strings.TrimSpace(rec[i]) != "" {
					blank = false
				}
			}
		}
		if blank {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// columnIndex returns the position of an exact header match, or -1.
func (t *Table) columnIndex(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// appendColumn adds a column with the given values, padding or truncating to
// the row count.
func (t *Table) appendColumn(header string, values []string) {
	t.Headers = append(t.Headers, header)
	for i := range t.Rows {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		t.Rows[i] = append(t.Rows[i], v)
	}
}

// columnValues copies out one column by index.
func (t *Table) columnValues(idx int) []string {
	vals := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		vals[i] = row[idx]
	}
	return vals
}

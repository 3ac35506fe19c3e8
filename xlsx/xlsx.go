// Package xlsx implements the workbook-reading capability the normalizer
// consumes: it turns uploaded spreadsheet bytes into a raw header/row table
// without interpreting any of the cells. Binary format handling is entirely
// delegated to excelize; this package only flattens the first sheet.
package xlsx

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"shareline"
)

// Read parses workbook bytes into a raw table from the first sheet. The
// first row is the header set; every following row becomes a map keyed by
// those headers. Any failure to read the workbook surfaces as a
// shareline.ParseError with the UnreadableWorkbook reason, rejecting the
// upload wholesale.
func Read(data []byte) (shareline.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return shareline.RawTable{}, &shareline.ParseError{Reason: shareline.UnreadableWorkbook, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return shareline.RawTable{}, &shareline.ParseError{
			Reason: shareline.UnreadableWorkbook,
			Err:    fmt.Errorf("workbook has no sheet"),
		}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return shareline.RawTable{}, &shareline.ParseError{Reason: shareline.UnreadableWorkbook, Err: err}
	}
	return tableFromRows(rows), nil
}

// ReadCSV parses a comma-separated upload the same way: first line headers,
// every following line a row. Some registrars export text instead of a
// workbook, the engine does not care which.
func ReadCSV(data []byte) (shareline.RawTable, error) {
	records, err := csvRecords(data)
	if err != nil {
		return shareline.RawTable{}, &shareline.ParseError{Reason: shareline.UnreadableWorkbook, Err: err}
	}
	return tableFromRows(records), nil
}

// ReadFile dispatches on the file extension: .csv is read as text, anything
// else as a workbook.
func ReadFile(name string, data []byte) (shareline.RawTable, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return ReadCSV(data)
	}
	return Read(data)
}

// tableFromRows flattens a cell grid into a RawTable. Rows shorter than the
// header set are padded with empty cells, longer ones truncated.
func tableFromRows(rows [][]string) shareline.RawTable {
	if len(rows) == 0 {
		return shareline.RawTable{}
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	table := shareline.RawTable{Headers: headers}
	for _, row := range rows[1:] {
		m := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				m[h] = row[i]
			} else {
				m[h] = ""
			}
		}
		table.Rows = append(table.Rows, m)
	}
	return table
}

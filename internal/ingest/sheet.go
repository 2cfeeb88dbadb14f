package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one spreadsheet data row, fields keyed by the header text of row 1.
// Number is the 1-based row number in the source file (data starts at 2), so
// reported errors point at the row the user sees in Excel.
type Row struct {
	Number int
	Fields map[string]string
}

// Field returns the trimmed cell value for a header, empty when absent.
func (r Row) Field(name string) string {
	return strings.TrimSpace(r.Fields[name])
}

// ReadSheet opens an .xlsx file and returns its first sheet as header-keyed
// rows. Fully empty rows are skipped but keep their row numbers, so error
// reporting stays aligned with the file.
func ReadSheet(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	headers := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(cells)-1)
	for i := 1; i < len(cells); i++ {
		fields := make(map[string]string, len(headers))
		empty := true
		for j, h := range headers {
			if h == "" {
				continue
			}
			var v string
			if j < len(cells[i]) {
				v = strings.TrimSpace(cells[i][j])
			}
			fields[h] = v
			if v != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, Row{Number: i + 1, Fields: fields})
	}

	return rows, nil
}

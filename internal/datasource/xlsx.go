package datasource

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxReader streams the rows of one sheet; the first row holds column names
type xlsxReader struct {
	path   string
	file   *excelize.File
	rows   *excelize.Rows
	header []string
}

func openXLSX(path, sheet string) (*xlsxReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			_ = f.Close()
			return nil, &FormatError{Path: path, Message: "workbook has no sheets"}
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, &FormatError{Path: path, Message: fmt.Sprintf("failed to read sheet %q", sheet), Cause: err}
	}

	r := &xlsxReader{path: path, file: f, rows: rows}
	if rows.Next() {
		header, err := rows.Columns()
		if err != nil {
			_ = r.close()
			return nil, &FormatError{Path: path, Line: 1, Message: "failed to read header row", Cause: err}
		}
		r.header = header
	}
	return r, nil
}

func (r *xlsxReader) next() (Record, error) {
	if r.header == nil || !r.rows.Next() {
		if err := r.rows.Error(); err != nil {
			return nil, &FormatError{Path: r.path, Message: "failed to iterate rows", Cause: err}
		}
		return nil, io.EOF
	}

	cells, err := r.rows.Columns()
	if err != nil {
		return nil, &FormatError{Path: r.path, Message: "failed to read row", Cause: err}
	}

	rec := make(Record, len(cells))
	for i, cell := range cells {
		rec[r.columnName(i)] = cell
	}
	return rec, nil
}

func (r *xlsxReader) columnName(i int) string {
	if i < len(r.header) {
		if name := strings.TrimSpace(r.header[i]); name != "" {
			return name
		}
	}
	return fmt.Sprintf("col_%d", i+1)
}

func (r *xlsxReader) close() error {
	_ = r.rows.Close()
	return r.file.Close()
}

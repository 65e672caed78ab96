package fileconv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var errNoSheets = errors.New("workbook has no sheets")

// xlsxRows returns the rows of the first worksheet. With raw set, cell values
// are returned without number formatting applied. isNumber reports whether a
// cell holds a numeric value.
func xlsxRows(payload []byte, raw bool) (rows [][]string, isNumber func(row, col int) bool, err error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, nil, &ValidationError{Format: XLSX, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, &ValidationError{Format: XLSX, Err: errNoSheets}
	}
	sheet := sheets[0]

	rows, err = f.GetRows(sheet, excelize.Options{RawCellValue: raw})
	if err != nil {
		return nil, nil, &ValidationError{Format: XLSX, Err: err}
	}

	types := make(map[[2]int]excelize.CellType)
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			if t, err := f.GetCellType(sheet, name); err == nil {
				types[[2]int{r, c}] = t
			}
		}
	}
	isNumber = func(r, c int) bool {
		switch types[[2]int{r, c}] {
		case excelize.CellTypeNumber, excelize.CellTypeUnset:
			_, err := strconv.ParseFloat(rows[r][c], 64)
			return err == nil
		}
		return false
	}
	return rows, isNumber, nil
}

func xlsxToCSV(_ context.Context, payload []byte, _ ProgressFunc) (*Result, error) {
	rows, _, err := xlsxRows(payload, false)
	if err != nil {
		return nil, err
	}
	return rowsToCSV(rows)
}

func xlsxToJSON(_ context.Context, payload []byte, _ ProgressFunc) (*Result, error) {
	rows, isNumber, err := xlsxRows(payload, true)
	if err != nil {
		return nil, err
	}
	return rowsToJSON(rows, isNumber), nil
}

// xlsRows returns the rows of the first sheet of a legacy workbook. The
// decoder panics on some malformed files; that is reported as invalid input.
func xlsRows(payload []byte) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, &ValidationError{Format: XLS, Err: fmt.Errorf("%v", r)}
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(payload), "utf-8")
	if err != nil {
		return nil, &ValidationError{Format: XLS, Err: err}
	}
	if wb.NumSheets() == 0 {
		return nil, &ValidationError{Format: XLS, Err: errNoSheets}
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, &ValidationError{Format: XLS, Err: errNoSheets}
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func xlsToCSV(_ context.Context, payload []byte, _ ProgressFunc) (*Result, error) {
	rows, err := xlsRows(payload)
	if err != nil {
		return nil, err
	}
	return rowsToCSV(rows)
}

func xlsToJSON(_ context.Context, payload []byte, _ ProgressFunc) (*Result, error) {
	rows, err := xlsRows(payload)
	if err != nil {
		return nil, err
	}
	return rowsToJSON(rows, func(r, c int) bool {
		_, err := strconv.ParseFloat(rows[r][c], 64)
		return err == nil
	}), nil
}

func rowsToCSV(rows [][]string) (*Result, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, &ConversionError{Target: CSV, Err: err}
	}
	return &Result{Data: buf.Bytes(), MIMEType: MIMEType(CSV)}, nil
}

// rowsToJSON uses the first row as the header and emits one object per
// following row. Empty cells are left out; numeric cells become numbers.
func rowsToJSON(rows [][]string, isNumber func(row, col int) bool) *Result {
	records := newArray()
	if len(rows) > 0 {
		header := rows[0]
		for r := 1; r < len(rows); r++ {
			rec := newObject()
			for c, v := range rows[r] {
				if v == "" || c >= len(header) {
					continue
				}
				key := header[c]
				if key == "" {
					key, _ = excelize.ColumnNumberToName(c + 1)
				}
				if isNumber(r, c) {
					f, _ := strconv.ParseFloat(v, 64)
					rec.set(key, newNumber(f))
				} else {
					rec.set(key, newString(v))
				}
			}
			records.items = append(records.items, rec)
		}
	}
	return &Result{Data: []byte(marshalJSON(records, "  ")), MIMEType: MIMEType(JSON)}
}

const defaultSheet = "Sheet1"

// writeXLSX stores rows in the first worksheet of a new workbook.
func writeXLSX(rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(defaultSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvToXLSX(_ context.Context, payload []byte, _ ProgressFunc) (*Result, error) {
	r := csv.NewReader(strings.NewReader(decodeText(payload)))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, &ValidationError{Format: CSV, Err: err}
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = make([]any, len(rec))
		for j, v := range rec {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				rows[i][j] = f
			} else {
				rows[i][j] = v
			}
		}
	}

	data, err := writeXLSX(rows)
	if err != nil {
		return nil, &ConversionError{Target: XLSX, Err: err}
	}
	return &Result{Data: data, MIMEType: MIMEType(XLSX)}, nil
}

// jsonToXLSX writes an array of records as a sheet. The header is the union
// of all record keys in first-seen order; nested values are stored as JSON.
func jsonToXLSX(_ context.Context, payload []byte, _ ProgressFunc) (*Result, error) {
	root, err := parseJSON(decodeText(payload))
	if err != nil {
		return nil, err
	}
	records := []*node{root}
	if root.kind == arrayNode {
		records = root.items
	}

	var header []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, k := range recordKeys(rec) {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}

	rows := make([][]any, 0, len(records)+1)
	head := make([]any, len(header))
	for i, k := range header {
		head[i] = k
	}
	rows = append(rows, head)

	for _, rec := range records {
		row := make([]any, len(header))
		for i, k := range header {
			row[i] = cellValue(recordField(rec, k))
		}
		rows = append(rows, row)
	}

	data, err := writeXLSX(rows)
	if err != nil {
		return nil, &ConversionError{Target: XLSX, Err: err}
	}
	return &Result{Data: data, MIMEType: MIMEType(XLSX)}, nil
}

func cellValue(n *node) any {
	if n == nil {
		return nil
	}
	switch n.kind {
	case nullNode:
		return nil
	case boolNode:
		return n.b
	case numberNode:
		return n.num
	case stringNode:
		return n.str
	}
	return marshalJSON(n, "")
}

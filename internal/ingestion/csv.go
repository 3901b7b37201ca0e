package ingestion

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"flighttest/ftias/internal/apperrors"
)

// FileKind is the upload format, derived from the file name.
type FileKind string

const (
	FileKindCSV   FileKind = "csv"
	FileKindExcel FileKind = "excel"
)

// DetectFileKind classifies an upload by extension, case-insensitively.
func DetectFileKind(filename string) (FileKind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FileKindCSV, nil
	case ".xlsx", ".xlsm":
		return FileKindExcel, nil
	case ".xls":
		return "", apperrors.UnsupportedFileType("legacy .xls workbooks are not supported")
	default:
		return "", apperrors.UnsupportedFileType("unsupported file type: " + filename)
	}
}

// timestampColumns is the lookup order for the row's time cell.
var timestampColumns = []string{"timestamp", "Timestamp", "TIME", "Description"}

// reservedColumns never become parameters (compared lower-case).
var reservedColumns = map[string]bool{
	"timestamp":   true,
	"time":        true,
	"description": true,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type valueColumn struct {
	index int
	name  string
	unit  string
}

// csvTable is a parsed upload: headers, optional units row and data rows.
type csvTable struct {
	headers      []string
	hasUnitsRow  bool
	tsIndexes    []int
	valueColumns []valueColumn
	rows         [][]string
}

// timestamp returns the first non-blank cell among the timestamp columns.
func (t *csvTable) timestamp(row []string) (string, bool) {
	for _, idx := range t.tsIndexes {
		if cell := cellAt(row, idx); strings.TrimSpace(cell) != "" {
			return cell, true
		}
	}
	return "", false
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// readCSVTable parses either the two-header layout (names, units, data...)
// or the single-header layout (names, data...). Row 2 is treated as units
// when none of its value cells is numeric and its timestamp cell matches no
// timestamp grammar.
func readCSVTable(r io.Reader, normalizer *Normalizer) (*csvTable, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && string(prefix) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, apperrors.MalformedRow(parseErr.Line, "unreadable CSV")
		}
		return nil, apperrors.MalformedFile("failed to read CSV: " + err.Error())
	}

	if len(records) == 0 {
		return nil, apperrors.MalformedFile("CSV file is empty")
	}

	table := &csvTable{headers: make([]string, len(records[0]))}
	blankHeader := true
	for i, h := range records[0] {
		table.headers[i] = strings.TrimSpace(h)
		if table.headers[i] != "" {
			blankHeader = false
		}
	}
	if blankHeader {
		return nil, apperrors.MalformedFile("CSV header row is empty")
	}
	if len(records) < 2 {
		return nil, apperrors.MalformedFile("CSV file must have at least one data row")
	}

	for _, name := range timestampColumns {
		for i, h := range table.headers {
			if h == name {
				table.tsIndexes = append(table.tsIndexes, i)
				break
			}
		}
	}
	if len(table.tsIndexes) == 0 {
		return nil, apperrors.MissingTimestamp(1)
	}

	table.hasUnitsRow = isUnitsRow(records[1], table, normalizer)
	dataStart := 1
	if table.hasUnitsRow {
		dataStart = 2
		if len(records) < 3 {
			return nil, apperrors.MalformedFile("CSV file must have at least 3 rows (headers + units + data)")
		}
	}

	for i, name := range table.headers {
		if name == "" || reservedColumns[strings.ToLower(name)] {
			continue
		}
		col := valueColumn{index: i, name: name}
		if table.hasUnitsRow {
			col.unit = strings.TrimSpace(cellAt(records[1], i))
		}
		table.valueColumns = append(table.valueColumns, col)
	}

	table.rows = records[dataStart:]
	return table, nil
}

// isUnitsRow decides whether row 2 holds units. A non-blank timestamp cell
// decides alone, since units such as "1" are numeric. Only a blank timestamp
// cell falls back to the value cells.
func isUnitsRow(row []string, table *csvTable, normalizer *Normalizer) bool {
	if ts, ok := table.timestamp(row); ok {
		return !normalizer.isParseable(ts)
	}
	for i, name := range table.headers {
		if name == "" || reservedColumns[strings.ToLower(name)] {
			continue
		}
		if _, ok := parseValue(cellAt(row, i)); ok {
			return false
		}
	}
	return true
}

// parseValue reads a finite float from a cell.
func parseValue(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

package ingestion

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"flighttest/ftias/internal/apperrors"
)

// Column headers of a parameter-definition sheet, matched case-insensitively.
const (
	colName        = "name"
	colDescription = "description"
	colUnit        = "unit"
	colSystem      = "system"
	colCategory    = "category"
	colMinValue    = "min value"
	colMaxValue    = "max value"
)

var requiredSheetColumns = []struct {
	key   string
	label string
}{
	{colName, "Name"},
	{colUnit, "Unit"},
}

// readParameterSheet reads the first worksheet of an Excel workbook. Rows
// with a blank Name are dropped. Row numbers in errors are sheet row numbers.
func readParameterSheet(r io.Reader) ([]ParameterFields, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.MalformedFile("unable to read Excel file: " + err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.MalformedFile("Excel file has no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.MalformedFile("unable to read worksheet " + sheets[0] + ": " + err.Error())
	}
	if len(rows) == 0 {
		return nil, apperrors.MalformedFile("Excel file has no header row")
	}

	columns := make(map[string]int)
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := columns[key]; key != "" && !dup {
			columns[key] = i
		}
	}

	var missing []string
	for _, req := range requiredSheetColumns {
		if _, ok := columns[req.key]; !ok {
			missing = append(missing, req.label)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.MalformedFile("missing required columns: " + strings.Join(missing, ", "))
	}

	cell := func(row []string, key string) string {
		idx, ok := columns[key]
		if !ok {
			return ""
		}
		return strings.TrimSpace(cellAt(row, idx))
	}

	var out []ParameterFields
	for i, row := range rows[1:] {
		sheetRow := i + 2
		name := cell(row, colName)
		if name == "" {
			continue
		}

		fields := ParameterFields{
			Row:         sheetRow,
			Name:        name,
			Description: cell(row, colDescription),
			Unit:        cell(row, colUnit),
			System:      cell(row, colSystem),
			Category:    cell(row, colCategory),
		}

		if fields.MinValue, err = optionalFloat(cell(row, colMinValue), sheetRow, "Min Value"); err != nil {
			return nil, err
		}
		if fields.MaxValue, err = optionalFloat(cell(row, colMaxValue), sheetRow, "Max Value"); err != nil {
			return nil, err
		}

		out = append(out, fields)
	}

	return out, nil
}

func optionalFloat(raw string, row int, label string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, ok := parseValue(raw)
	if !ok {
		return nil, apperrors.MalformedRow(row, "invalid "+label+" "+raw)
	}
	return &v, nil
}

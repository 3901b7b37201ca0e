// Package ingestion turns uploaded spreadsheets into parameters and
// time-series data points.
//
// CSV uploads carry measurements for one flight test: a header row of
// parameter names (one of them the timestamp column), an optional units
// row, then one row per sample instant. Every numeric cell becomes a data
// point; unknown column names are registered as parameters on first sight.
//
// Excel uploads carry parameter definitions only and are applied with
// upsert semantics.
//
// The pipeline never commits. It writes through a UnitOfWork owned by the
// caller, who commits on success and rolls back on any returned error.
package ingestion

import (
	"context"
	"errors"
	"io"
	"strings"

	"flighttest/ftias/internal/apperrors"
	"flighttest/ftias/internal/logging"
	gormModels "flighttest/ftias/internal/models/gorm"
)

// ctxCheckInterval is how many rows are walked between cancellation checks.
const ctxCheckInterval = 256

// CSVResult summarizes one CSV upload.
type CSVResult struct {
	RowsProcessed       int
	DataPointsCreated   int
	ParametersCreated   int
	SkippedCells        int
	SyntheticTimestamps int
	HasUnitsRow         bool
}

// SheetResult summarizes one parameter-definition upload.
type SheetResult struct {
	RowsProcessed     int
	ParametersCreated int
	ParametersUpdated int
}

type Pipeline struct {
	normalizer *Normalizer
}

func NewPipeline(normalizer *Normalizer) *Pipeline {
	return &Pipeline{normalizer: normalizer}
}

// IngestCSV parses a CSV upload and writes its data points for flightTestID.
// A row without a timestamp aborts the whole upload; a non-numeric cell is
// skipped.
func (p *Pipeline) IngestCSV(ctx context.Context, uow UnitOfWork, flightTestID string, r io.Reader) (*CSVResult, error) {
	table, err := readCSVTable(r, p.normalizer)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry(uow)
	result := &CSVResult{HasUnitsRow: table.hasUnitsRow}
	points := make([]gormModels.DataPoint, 0, len(table.rows)*len(table.valueColumns))

	for i, row := range table.rows {
		rowNum := i + 1
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, apperrors.Persistence("CSV ingestion interrupted", err)
			}
		}

		rawTS, ok := table.timestamp(row)
		if !ok {
			return nil, apperrors.MissingTimestamp(rowNum)
		}
		ts, grammar := p.normalizer.NormalizeWithGrammar(rawTS, rowNum)
		if grammar == GrammarFallback {
			result.SyntheticTimestamps++
		}
		result.RowsProcessed++

		for _, col := range table.valueColumns {
			cell := cellAt(row, col.index)
			if strings.TrimSpace(cell) == "" {
				continue
			}
			value, ok := parseValue(cell)
			if !ok {
				result.SkippedCells++
				logging.Debug("Skipping non-numeric cell",
					"flight_test_id", flightTestID,
					"row", rowNum,
					"column", col.name,
				)
				continue
			}

			param, err := registry.ResolveOrCreate(ctx, col.name, col.unit)
			if err != nil {
				return nil, apperrors.Persistence("Error processing CSV file", err)
			}

			points = append(points, gormModels.DataPoint{
				FlightTestID: flightTestID,
				ParameterID:  param.ID,
				Timestamp:    ts,
				Value:        value,
			})
		}
	}

	if len(points) > 0 {
		if err := uow.InsertDataPoints(ctx, points); err != nil {
			return nil, apperrors.Persistence("Error saving data points", err)
		}
	}

	result.DataPointsCreated = len(points)
	result.ParametersCreated = registry.Created()
	return result, nil
}

// ImportParameterSheet applies a parameter-definition workbook. The first
// invalid row aborts the import; the caller rolls back rows applied before it.
func (p *Pipeline) ImportParameterSheet(ctx context.Context, uow UnitOfWork, r io.Reader) (*SheetResult, error) {
	rows, err := readParameterSheet(r)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry(uow)
	result := &SheetResult{}

	for i, fields := range rows {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, apperrors.Persistence("Excel import interrupted", err)
			}
		}

		if _, _, err := registry.Upsert(ctx, fields); err != nil {
			var appErr *apperrors.Error
			if errors.As(err, &appErr) {
				return nil, err
			}
			return nil, apperrors.Persistence("Error processing Excel file", err)
		}
		result.RowsProcessed++
	}

	result.ParametersCreated = registry.Created()
	result.ParametersUpdated = registry.Updated()
	return result, nil
}

package services

import (
	"context"
	"errors"
	"io"
	"time"

	"flighttest/ftias/internal/apperrors"
	"flighttest/ftias/internal/db/repositories"
	"flighttest/ftias/internal/ingestion"
	"flighttest/ftias/internal/logging"
	"flighttest/ftias/internal/metrics"
)

// IngestionService is the gateway in front of the ingestion pipeline. It
// checks the file kind and flight-test ownership, then runs the pipeline
// inside one transaction so a failed upload leaves nothing behind.
type IngestionService struct {
	store       *repositories.Store
	flightTests *FlightTestService
	pipeline    *ingestion.Pipeline
	metrics     *metrics.MetricsRegistry
}

// NewIngestionService wires the gateway. metricsReg may be nil.
func NewIngestionService(store *repositories.Store, flightTests *FlightTestService, pipeline *ingestion.Pipeline, metricsReg *metrics.MetricsRegistry) *IngestionService {
	return &IngestionService{
		store:       store,
		flightTests: flightTests,
		pipeline:    pipeline,
		metrics:     metricsReg,
	}
}

// UploadCSV ingests a CSV of measurements into a flight test owned by ownerID.
func (s *IngestionService) UploadCSV(ctx context.Context, flightTestID, ownerID, filename string, body io.Reader) (*ingestion.CSVResult, error) {
	if err := requireKind(filename, ingestion.FileKindCSV, "Only CSV files are supported"); err != nil {
		s.observe(ingestion.FileKindCSV, err, time.Now())
		return nil, err
	}

	test, err := s.flightTests.GetOwned(ctx, flightTestID, ownerID)
	if err != nil {
		s.observe(ingestion.FileKindCSV, err, time.Now())
		return nil, err
	}

	start := time.Now()
	var result *ingestion.CSVResult
	err = s.store.WithinTransaction(ctx, func(uow *repositories.UnitOfWork) error {
		var err error
		result, err = s.pipeline.IngestCSV(ctx, uow, test.ID, body)
		return err
	})
	err = commitError(err, "Error saving data points")
	s.observe(ingestion.FileKindCSV, err, start)
	if err != nil {
		logging.Warn("CSV upload rejected",
			"flight_test_id", test.ID,
			"filename", filename,
			"error", err,
		)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DataPointsIngested.Add(float64(result.DataPointsCreated))
		s.metrics.ParametersCreated.WithLabelValues(string(ingestion.FileKindCSV)).Add(float64(result.ParametersCreated))
		s.metrics.SkippedCellsTotal.Add(float64(result.SkippedCells))
		s.metrics.SyntheticTimestamps.Add(float64(result.SyntheticTimestamps))
	}
	logging.Info("CSV upload committed",
		"flight_test_id", test.ID,
		"filename", filename,
		"rows", result.RowsProcessed,
		"data_points", result.DataPointsCreated,
		"parameters_created", result.ParametersCreated,
		"skipped_cells", result.SkippedCells,
		"units_row", result.HasUnitsRow,
		"duration", time.Since(start),
	)
	return result, nil
}

// UploadParameterSheet applies an Excel workbook of parameter definitions.
func (s *IngestionService) UploadParameterSheet(ctx context.Context, filename string, body io.Reader) (*ingestion.SheetResult, error) {
	if err := requireKind(filename, ingestion.FileKindExcel, "Only Excel files are supported"); err != nil {
		s.observe(ingestion.FileKindExcel, err, time.Now())
		return nil, err
	}

	start := time.Now()
	var result *ingestion.SheetResult
	err := s.store.WithinTransaction(ctx, func(uow *repositories.UnitOfWork) error {
		var err error
		result, err = s.pipeline.ImportParameterSheet(ctx, uow, body)
		return err
	})
	err = commitError(err, "Error processing Excel file")
	s.observe(ingestion.FileKindExcel, err, start)
	if err != nil {
		logging.Warn("Excel import rejected", "filename", filename, "error", err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ParametersCreated.WithLabelValues(string(ingestion.FileKindExcel)).Add(float64(result.ParametersCreated))
		s.metrics.ParametersUpdated.Add(float64(result.ParametersUpdated))
	}
	logging.Info("Excel import committed",
		"filename", filename,
		"rows", result.RowsProcessed,
		"parameters_created", result.ParametersCreated,
		"parameters_updated", result.ParametersUpdated,
		"duration", time.Since(start),
	)
	return result, nil
}

func requireKind(filename string, want ingestion.FileKind, msg string) error {
	kind, err := ingestion.DetectFileKind(filename)
	if err != nil || kind != want {
		return apperrors.UnsupportedFileType(msg)
	}
	return nil
}

// commitError keeps classified pipeline errors and wraps anything else,
// typically a failed commit, as a persistence error.
func commitError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Persistence(msg, err)
}

func (s *IngestionService) observe(kind ingestion.FileKind, err error, start time.Time) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			outcome = string(appErr.Kind)
		}
	}
	s.metrics.UploadsTotal.WithLabelValues(string(kind), outcome).Inc()
	s.metrics.UploadDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
}

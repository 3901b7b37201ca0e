package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"flighttest/ftias/internal/apperrors"
	gormModels "flighttest/ftias/internal/models/gorm"
)

// workbook builds an in-memory xlsx whose first sheet holds rows.
func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("Failed to build cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("Failed to write row %d: %v", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	return buf
}

var sheetHeader = []interface{}{"Name", "Description", "Unit", "System", "Category", "Min Value", "Max Value"}

func importSheet(t *testing.T, uow *memoryUnitOfWork, rows ...[]interface{}) (*SheetResult, error) {
	t.Helper()
	p := NewPipeline(NewNormalizer(ReferenceEpoch))
	return p.ImportParameterSheet(context.Background(), uow, workbook(t, rows...))
}

func TestImportParameterSheet_CreatesParameters(t *testing.T) {
	uow := newMemoryUnitOfWork()
	result, err := importSheet(t, uow,
		sheetHeader,
		[]interface{}{"ALT", "Pressure altitude", "ft", "Air Data", "Altitude", "-1000", "60000"},
		[]interface{}{"IAS", "", "kt", "", "", "", ""},
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.RowsProcessed != 2 || result.ParametersCreated != 2 || result.ParametersUpdated != 0 {
		t.Errorf("Unexpected result %+v", result)
	}

	alt := uow.params["ALT"]
	if alt.System == nil || *alt.System != "Air Data" {
		t.Errorf("Expected system Air Data, got %v", alt.System)
	}
	if alt.MinValue == nil || *alt.MinValue != -1000 || alt.MaxValue == nil || *alt.MaxValue != 60000 {
		t.Errorf("Unexpected range %v..%v", alt.MinValue, alt.MaxValue)
	}

	ias := uow.params["IAS"]
	if ias.Description != nil || ias.MinValue != nil {
		t.Error("Blank optional fields must stay unset")
	}
}

func TestImportParameterSheet_UpdatesOnlyProvidedFields(t *testing.T) {
	uow := newMemoryUnitOfWork()
	uow.params["ALT"] = &gormModels.Parameter{
		ID:          "p1",
		Name:        "ALT",
		Description: strPtr("old"),
		Unit:        strPtr("m"),
		System:      strPtr("Air Data"),
		MinValue:    floatPtr(0),
		MaxValue:    floatPtr(100),
	}

	result, err := importSheet(t, uow,
		sheetHeader,
		[]interface{}{"ALT", "Pressure altitude", "ft", "", "", "", "50000"},
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.ParametersUpdated != 1 || result.ParametersCreated != 0 {
		t.Errorf("Unexpected result %+v", result)
	}

	alt := uow.params["ALT"]
	if alt.ID != "p1" {
		t.Errorf("Expected identity to be kept, got %s", alt.ID)
	}
	if *alt.Description != "Pressure altitude" || *alt.Unit != "ft" {
		t.Errorf("Expected description and unit to be overwritten, got %s / %s", *alt.Description, *alt.Unit)
	}
	if alt.System == nil || *alt.System != "Air Data" {
		t.Error("Blank system cell must not clear the stored value")
	}
	if *alt.MinValue != 0 || *alt.MaxValue != 50000 {
		t.Errorf("Expected range 0..50000, got %v..%v", *alt.MinValue, *alt.MaxValue)
	}
}

func TestImportParameterSheet_InvalidRangeAbortsImport(t *testing.T) {
	uow := newMemoryUnitOfWork()
	_, err := importSheet(t, uow,
		sheetHeader,
		[]interface{}{"ALT", "", "ft", "", "", "0", "1000"},
		[]interface{}{"IAS", "", "kt", "", "", "100", "50"},
	)

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindInvalidRange {
		t.Fatalf("Expected InvalidRange, got %v", err)
	}
	if appErr.Row != 3 {
		t.Errorf("Expected sheet row 3, got %d", appErr.Row)
	}
	if _, ok := uow.params["IAS"]; ok {
		t.Error("Invalid row must not be written")
	}
}

func TestImportParameterSheet_RangeChecksStoredBound(t *testing.T) {
	uow := newMemoryUnitOfWork()
	uow.params["ALT"] = &gormModels.Parameter{ID: "p1", Name: "ALT", Unit: strPtr("ft"), MaxValue: floatPtr(10)}

	_, err := importSheet(t, uow,
		sheetHeader,
		[]interface{}{"ALT", "", "", "", "", "20", ""},
	)
	if !errors.Is(err, apperrors.ErrInvalidRange) {
		t.Fatalf("Expected InvalidRange against stored max, got %v", err)
	}
	if uow.params["ALT"].MinValue != nil {
		t.Error("Stored parameter must be untouched")
	}
}

func TestImportParameterSheet_MissingRequiredColumns(t *testing.T) {
	_, err := importSheet(t, newMemoryUnitOfWork(),
		[]interface{}{"Name", "Description"},
		[]interface{}{"ALT", "altitude"},
	)
	if !errors.Is(err, apperrors.ErrMalformedFile) {
		t.Fatalf("Expected MalformedFile, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unit") {
		t.Errorf("Expected message to name the missing column, got %q", err.Error())
	}
}

func TestImportParameterSheet_HeadersAreCaseInsensitive(t *testing.T) {
	uow := newMemoryUnitOfWork()
	_, err := importSheet(t, uow,
		[]interface{}{" name ", "UNIT", "min value"},
		[]interface{}{"ALT", "ft", "5"},
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if p := uow.params["ALT"]; p == nil || *p.MinValue != 5 {
		t.Errorf("Expected ALT with min 5, got %+v", p)
	}
}

func TestImportParameterSheet_SkipsBlankNames(t *testing.T) {
	uow := newMemoryUnitOfWork()
	result, err := importSheet(t, uow,
		sheetHeader,
		[]interface{}{"", "orphan", "ft"},
		[]interface{}{"ALT", "", "ft"},
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.RowsProcessed != 1 || len(uow.params) != 1 {
		t.Errorf("Expected one row applied, got %+v", result)
	}
}

func TestImportParameterSheet_NonNumericBound(t *testing.T) {
	_, err := importSheet(t, newMemoryUnitOfWork(),
		sheetHeader,
		[]interface{}{"ALT", "", "ft", "", "", "low", ""},
	)

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindMalformedFile || appErr.Row != 2 {
		t.Fatalf("Expected MalformedFile at row 2, got %v", err)
	}
}

func TestImportParameterSheet_NotAWorkbook(t *testing.T) {
	p := NewPipeline(NewNormalizer(ReferenceEpoch))
	_, err := p.ImportParameterSheet(context.Background(), newMemoryUnitOfWork(), strings.NewReader("Name,Unit\nALT,ft\n"))
	if !errors.Is(err, apperrors.ErrMalformedFile) {
		t.Errorf("Expected MalformedFile, got %v", err)
	}
}

type failingUnitOfWork struct {
	*memoryUnitOfWork
}

func (f failingUnitOfWork) CreateParameter(ctx context.Context, p *gormModels.Parameter) error {
	return fmt.Errorf("unique violation on %s", p.Name)
}

func TestImportParameterSheet_StorageFailure(t *testing.T) {
	p := NewPipeline(NewNormalizer(ReferenceEpoch))
	uow := failingUnitOfWork{newMemoryUnitOfWork()}
	_, err := p.ImportParameterSheet(context.Background(), uow, workbook(t,
		sheetHeader,
		[]interface{}{"ALT", "", "ft"},
	))
	if !errors.Is(err, apperrors.ErrPersistence) {
		t.Errorf("Expected PersistenceError, got %v", err)
	}
}

func TestRegistry_ResolveOrCreateMemoizes(t *testing.T) {
	uow := newMemoryUnitOfWork()
	reg := NewRegistry(uow)
	ctx := context.Background()

	first, err := reg.ResolveOrCreate(ctx, "ALT", "ft")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := reg.ResolveOrCreate(ctx, "ALT", "m")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if first.ID != second.ID {
		t.Error("Expected same parameter on second resolve")
	}
	if *second.Unit != "ft" {
		t.Errorf("Expected unit from first sighting, got %s", *second.Unit)
	}
	if reg.Created() != 1 || uow.lookups != 1 {
		t.Errorf("Expected 1 create and 1 lookup, got %d / %d", reg.Created(), uow.lookups)
	}
}

func TestRegistry_NamesAreCaseSensitive(t *testing.T) {
	uow := newMemoryUnitOfWork()
	reg := NewRegistry(uow)
	ctx := context.Background()

	if _, err := reg.ResolveOrCreate(ctx, "alt", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.ResolveOrCreate(ctx, "ALT", ""); err != nil {
		t.Fatal(err)
	}
	if len(uow.params) != 2 {
		t.Errorf("Expected two distinct parameters, got %d", len(uow.params))
	}
}

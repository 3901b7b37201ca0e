package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"flighttest/ftias/internal/apperrors"
	"flighttest/ftias/internal/common"
	"flighttest/ftias/internal/ingestion"
	"flighttest/ftias/internal/models/dtos"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temp files.
const multipartMemory = 32 << 20

// CSVIngester runs a CSV upload against a flight test.
type CSVIngester interface {
	UploadCSV(ctx context.Context, flightTestID, ownerID, filename string, body io.Reader) (*ingestion.CSVResult, error)
}

// ParameterSheetImporter applies a parameter-definition workbook.
type ParameterSheetImporter interface {
	UploadParameterSheet(ctx context.Context, filename string, body io.Reader) (*ingestion.SheetResult, error)
}

// UploadCSVHandler handles POST /api/flight-tests/{id}/upload-csv
//
// @Summary      Upload flight-test measurements
// @Description  Multipart field "file" holding a CSV. The whole file is committed or nothing is.
// @Tags         FlightTests
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Flight test ID"
// @Param        file  formData  file    true  "CSV file"
// @Success      201  {object}  dtos.APIResponse
// @Failure      400  {object}  dtos.APIResponse
// @Failure      404  {object}  dtos.APIResponse
// @Failure      413  {object}  dtos.APIResponse
// @Failure      500  {object}  dtos.APIResponse
// @Router       /api/flight-tests/{id}/upload-csv [post]
func UploadCSVHandler(svc CSVIngester, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, err := requireClaims(r)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		file, header, cleanup, err := readUpload(w, r, maxBytes)
		if err != nil {
			respondUploadError(w, initTime, err)
			return
		}
		defer cleanup()

		result, err := svc.UploadCSV(r.Context(), chi.URLParam(r, "id"), claims.UserID(), header.Filename, file)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "CSV data uploaded successfully", dtos.CSVUploadResponse{
			RowsProcessed:     result.RowsProcessed,
			DataPointsCreated: result.DataPointsCreated,
			ParametersCreated: result.ParametersCreated,
		}, http.StatusCreated)
	}
}

// UploadExcelHandler handles POST /api/parameters/upload-excel
//
// @Summary      Upload parameter definitions
// @Description  Multipart field "file" holding an xlsx workbook. Responds 201 when any parameter was created.
// @Tags         Parameters
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Excel workbook"
// @Success      200  {object}  dtos.APIResponse
// @Success      201  {object}  dtos.APIResponse
// @Failure      400  {object}  dtos.APIResponse
// @Failure      413  {object}  dtos.APIResponse
// @Router       /api/parameters/upload-excel [post]
func UploadExcelHandler(svc ParameterSheetImporter, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		file, header, cleanup, err := readUpload(w, r, maxBytes)
		if err != nil {
			respondUploadError(w, initTime, err)
			return
		}
		defer cleanup()

		result, err := svc.UploadParameterSheet(r.Context(), header.Filename, file)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		code := http.StatusOK
		if result.ParametersCreated > 0 {
			code = http.StatusCreated
		}
		common.RespondSuccess(w, initTime, "Excel parameters uploaded successfully", dtos.ExcelUploadResponse{
			RowsProcessed:     result.RowsProcessed,
			ParametersCreated: result.ParametersCreated,
			ParametersUpdated: result.ParametersUpdated,
		}, code)
	}
}

var errUploadTooLarge = errors.New("upload exceeds the size limit")

// readUpload caps the body at maxBytes and returns the "file" part. The
// cleanup func removes any temp files the multipart reader created.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (multipart.File, *multipart.FileHeader, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, nil, nil, errUploadTooLarge
		}
		return nil, nil, nil, apperrors.Validation("Expected a multipart/form-data body")
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		cleanup()
		return nil, nil, nil, apperrors.Validation("Missing upload field \"file\"")
	}
	return file, header, func() {
		file.Close()
		cleanup()
	}, nil
}

func respondUploadError(w http.ResponseWriter, initTime time.Time, err error) {
	if errors.Is(err, errUploadTooLarge) {
		common.RespondError(w, initTime, err, "", http.StatusRequestEntityTooLarge)
		return
	}
	common.RespondAppError(w, initTime, err)
}

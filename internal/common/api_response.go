package common

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"flighttest/ftias/internal/apperrors"
	"flighttest/ftias/internal/constants"
	"flighttest/ftias/internal/logging"
	"flighttest/ftias/internal/models/dtos"
)

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}

	writeJSON(w, code, response)
}

// RespondError sends a standardized JSON error response.
func RespondError(w http.ResponseWriter, initTime time.Time, err error, message string, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	msg := message
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      msg,
		ResponseTime: GetResponseTime(initTime),
	}

	writeJSON(w, code, response)
}

// RespondAppError maps err to a status code by its apperrors kind. Internal
// failures are logged and answered with a generic message.
func RespondAppError(w http.ResponseWriter, initTime time.Time, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		logging.Error("Unhandled error", "error", err)
		RespondError(w, initTime, nil, "Internal server error", http.StatusInternalServerError)
		return
	}

	code := apperrors.HTTPStatus(appErr.Kind)
	if code >= http.StatusInternalServerError {
		logging.Error("Request failed", "kind", appErr.Kind, "error", err)
		RespondError(w, initTime, nil, appErr.Message, code)
		return
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      appErr.Error(),
		ResponseTime: GetResponseTime(initTime),
		Data:         errorDetail(appErr),
	}
	writeJSON(w, code, response)
}

func errorDetail(e *apperrors.Error) *dtos.ErrorDetail {
	detail := &dtos.ErrorDetail{Kind: string(e.Kind)}
	if e.Row > 0 {
		row := e.Row
		detail.Row = &row
	}
	return detail
}

// writeJSON marshals data and writes it to the HTTP response.
func writeJSON(w http.ResponseWriter, code int, body dtos.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err)
	}
}

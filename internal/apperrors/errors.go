package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and for HTTP status mapping.
type Kind string

const (
	KindUnsupportedFileType Kind = "UNSUPPORTED_FILE_TYPE"
	KindMalformedFile       Kind = "MALFORMED_FILE"
	KindMissingTimestamp    Kind = "MISSING_TIMESTAMP"
	KindInvalidRange        Kind = "INVALID_RANGE"
	KindNotFound            Kind = "NOT_FOUND"
	KindPersistence         Kind = "PERSISTENCE_ERROR"

	KindValidation   Kind = "VALIDATION_ERROR"
	KindConflict     Kind = "CONFLICT"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
)

// Error is a classified failure. Row is the 1-based data row the failure
// refers to, or 0 when it is not tied to a row.
type Error struct {
	Kind    Kind
	Row     int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Row == 0 && t.Err == nil
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnsupportedFileType = &Error{Kind: KindUnsupportedFileType}
	ErrMalformedFile       = &Error{Kind: KindMalformedFile}
	ErrMissingTimestamp    = &Error{Kind: KindMissingTimestamp}
	ErrInvalidRange        = &Error{Kind: KindInvalidRange}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrPersistence         = &Error{Kind: KindPersistence}
	ErrValidation          = &Error{Kind: KindValidation}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrForbidden           = &Error{Kind: KindForbidden}
)

func UnsupportedFileType(msg string) *Error {
	return &Error{Kind: KindUnsupportedFileType, Message: msg}
}

func MalformedFile(msg string) *Error {
	return &Error{Kind: KindMalformedFile, Message: msg}
}

// MalformedRow reports a malformed cell or row inside an otherwise readable file.
func MalformedRow(row int, msg string) *Error {
	return &Error{Kind: KindMalformedFile, Row: row, Message: fmt.Sprintf("%s in row %d", msg, row)}
}

func MissingTimestamp(row int) *Error {
	return &Error{Kind: KindMissingTimestamp, Row: row, Message: fmt.Sprintf("Missing timestamp in row %d", row)}
}

func InvalidRange(row int, min, max float64) *Error {
	msg := fmt.Sprintf("min_value %g is greater than max_value %g", min, max)
	if row > 0 {
		msg = fmt.Sprintf("%s in row %d", msg, row)
	}
	return &Error{Kind: KindInvalidRange, Row: row, Message: msg}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Persistence(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindPersistence for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindPersistence
}

// HTTPStatus maps a kind to the response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnsupportedFileType, KindMalformedFile, KindMissingTimestamp, KindInvalidRange, KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

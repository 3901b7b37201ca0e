package services

import (
	"github.com/google/uuid"

	"flighttest/ftias/internal/apperrors"
)

// validID reports whether id is a well-formed UUID. Malformed ids can never
// match a row, so callers answer them with NotFound.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// checkRange rejects min > max. row is 0 outside bulk requests.
func checkRange(row int, minValue, maxValue *float64) error {
	if minValue != nil && maxValue != nil && *minValue > *maxValue {
		return apperrors.InvalidRange(row, *minValue, *maxValue)
	}
	return nil
}

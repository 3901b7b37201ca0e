package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"flighttest/ftias/internal/apperrors"
	"flighttest/ftias/internal/auth"
	"flighttest/ftias/internal/validation"
)

const (
	defaultPageLimit = 100
	defaultDataLimit = 1000
	maxPageLimit     = 1000
	maxJSONBodyBytes = 1 << 20
)

// decodeJSON reads a JSON body into dst and runs its validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("Request body is required")
		}
		return apperrors.Validation("Invalid JSON body: " + err.Error())
	}
	return validation.ValidateStruct(dst)
}

// pagination reads skip and limit. skip must be >= 0 and limit 1..1000.
func pagination(r *http.Request, defaultLimit int) (skip, limit int, err error) {
	query := r.URL.Query()
	skip, limit = 0, defaultLimit

	if raw := query.Get("skip"); raw != "" {
		skip, err = strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return 0, 0, apperrors.Validation("skip must be a non-negative integer")
		}
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxPageLimit {
			return 0, 0, apperrors.Validation("limit must be between 1 and 1000")
		}
	}
	return skip, limit, nil
}

func requireClaims(r *http.Request) (auth.UserClaims, error) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		return nil, apperrors.Unauthorized("Not authenticated")
	}
	return claims, nil
}

func respondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

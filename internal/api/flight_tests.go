package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"flighttest/ftias/internal/common"
	"flighttest/ftias/internal/models/dtos"
)

// CreateFlightTestHandler handles POST /api/flight-tests
//
// @Summary      Create a flight test
// @Tags         FlightTests
// @Accept       json
// @Produce      json
// @Param        input  body  dtos.FlightTestCreateRequest  true  "Flight test"
// @Success      201  {object}  dtos.APIResponse
// @Failure      409  {object}  dtos.APIResponse
// @Router       /api/flight-tests [post]
func CreateFlightTestHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, err := requireClaims(r)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		var req dtos.FlightTestCreateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		test, err := deps.Services.FlightTests.Create(r.Context(), claims.UserID(), &req)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Flight test created successfully", dtos.NewFlightTestResponse(test), http.StatusCreated)
	}
}

// ListFlightTestsHandler handles GET /api/flight-tests, newest first.
func ListFlightTestsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, err := requireClaims(r)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		skip, limit, err := pagination(r, defaultPageLimit)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		tests, err := deps.Services.FlightTests.List(r.Context(), claims.UserID(), skip, limit)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		resp := make([]dtos.FlightTestResponse, len(tests))
		for i := range tests {
			resp[i] = dtos.NewFlightTestResponse(&tests[i])
		}
		common.RespondSuccess(w, initTime, "Flight tests fetched successfully", resp)
	}
}

// GetFlightTestHandler handles GET /api/flight-tests/{id}
func GetFlightTestHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, err := requireClaims(r)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		test, err := deps.Services.FlightTests.GetOwned(r.Context(), chi.URLParam(r, "id"), claims.UserID())
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Flight test fetched successfully", dtos.NewFlightTestResponse(test))
	}
}

// UpdateFlightTestHandler handles PUT /api/flight-tests/{id}
func UpdateFlightTestHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, err := requireClaims(r)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		var req dtos.FlightTestUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		test, err := deps.Services.FlightTests.Update(r.Context(), chi.URLParam(r, "id"), claims.UserID(), &req)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Flight test updated successfully", dtos.NewFlightTestResponse(test))
	}
}

// DeleteFlightTestHandler handles DELETE /api/flight-tests/{id}
func DeleteFlightTestHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, err := requireClaims(r)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		if err := deps.Services.FlightTests.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID()); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		respondNoContent(w)
	}
}

// ListFlightTestDataHandler handles GET /api/flight-tests/{id}/data
//
// @Summary      Recorded samples
// @Tags         FlightTests
// @Produce      json
// @Param        id            path   string  true   "Flight test ID"
// @Param        parameter_id  query  string  false  "Only this parameter"
// @Param        skip          query  int     false  "Offset"
// @Param        limit         query  int     false  "Page size, 1..1000"
// @Success      200  {object}  dtos.APIResponse
// @Router       /api/flight-tests/{id}/data [get]
func ListFlightTestDataHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, err := requireClaims(r)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		skip, limit, err := pagination(r, defaultDataLimit)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		rows, err := deps.Services.FlightTests.ListData(
			r.Context(),
			chi.URLParam(r, "id"),
			claims.UserID(),
			r.URL.Query().Get("parameter_id"),
			skip,
			limit,
		)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Data points fetched successfully", rows)
	}
}

// FlightTestParametersHandler handles GET /api/flight-tests/{id}/parameters
func FlightTestParametersHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, err := requireClaims(r)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		stats, err := deps.Services.FlightTests.ParameterStats(r.Context(), chi.URLParam(r, "id"), claims.UserID())
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Parameter statistics fetched successfully", stats)
	}
}

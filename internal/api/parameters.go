package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"flighttest/ftias/internal/common"
	"flighttest/ftias/internal/db/repositories"
	"flighttest/ftias/internal/models/dtos"
)

// CreateParameterHandler handles POST /api/parameters (superuser only)
//
// @Summary      Create a parameter
// @Tags         Parameters
// @Accept       json
// @Produce      json
// @Param        input  body  dtos.ParameterCreateRequest  true  "Parameter"
// @Success      201  {object}  dtos.APIResponse
// @Failure      400  {object}  dtos.APIResponse
// @Failure      409  {object}  dtos.APIResponse
// @Router       /api/parameters [post]
func CreateParameterHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ParameterCreateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		param, err := deps.Services.Parameters.Create(r.Context(), &req)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Parameter created successfully", dtos.NewParameterResponse(param), http.StatusCreated)
	}
}

// ListParametersHandler handles GET /api/parameters
//
// @Summary      List parameters
// @Tags         Parameters
// @Produce      json
// @Param        search    query  string  false  "Substring of name or description"
// @Param        system    query  string  false  "Exact system"
// @Param        category  query  string  false  "Exact category"
// @Param        skip      query  int     false  "Offset"
// @Param        limit     query  int     false  "Page size, 1..1000"
// @Success      200  {object}  dtos.APIResponse
// @Router       /api/parameters [get]
func ListParametersHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		skip, limit, err := pagination(r, defaultPageLimit)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		query := r.URL.Query()
		params, err := deps.Services.Parameters.List(r.Context(), repositories.ParameterFilter{
			Search:   query.Get("search"),
			System:   query.Get("system"),
			Category: query.Get("category"),
			Skip:     skip,
			Limit:    limit,
		})
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Parameters fetched successfully", dtos.NewParameterResponses(params))
	}
}

// GetParameterHandler handles GET /api/parameters/{id}
func GetParameterHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		param, err := deps.Services.Parameters.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Parameter fetched successfully", dtos.NewParameterResponse(param))
	}
}

// UpdateParameterHandler handles PUT /api/parameters/{id} (superuser only)
func UpdateParameterHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ParameterUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		param, err := deps.Services.Parameters.Update(r.Context(), chi.URLParam(r, "id"), &req)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Parameter updated successfully", dtos.NewParameterResponse(param))
	}
}

// DeleteParameterHandler handles DELETE /api/parameters/{id} (superuser only)
func DeleteParameterHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if err := deps.Services.Parameters.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		respondNoContent(w)
	}
}

// BulkCreateParametersHandler handles POST /api/parameters/bulk (superuser only)
func BulkCreateParametersHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ParameterBulkCreateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		created, err := deps.Services.Parameters.BulkCreate(r.Context(), req.Parameters)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Parameters created successfully", dtos.BulkCreateResponse{Created: created}, http.StatusCreated)
	}
}

// BulkUpdateParametersHandler handles PUT /api/parameters/bulk (superuser only)
func BulkUpdateParametersHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ParameterBulkUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		updated, err := deps.Services.Parameters.BulkUpdate(r.Context(), req.Parameters)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Parameters updated successfully", dtos.BulkUpdateResponse{Updated: updated})
	}
}

// BulkDeleteParametersHandler handles DELETE /api/parameters/bulk (superuser only)
func BulkDeleteParametersHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ParameterBulkDeleteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		if _, err := deps.Services.Parameters.BulkDelete(r.Context(), req.IDs); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		respondNoContent(w)
	}
}

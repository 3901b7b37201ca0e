package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"flighttest/ftias/internal/common"
	"flighttest/ftias/internal/models/dtos"
)

// CreateUserHandler handles POST /api/users
//
// @Summary      Register a user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        input  body  dtos.UserCreateRequest  true  "New user"
// @Success      201  {object}  dtos.APIResponse
// @Failure      409  {object}  dtos.APIResponse
// @Router       /api/users [post]
func CreateUserHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.UserCreateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		user, err := deps.Services.User.Create(r.Context(), &req)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "User created successfully", dtos.NewUserResponse(user), http.StatusCreated)
	}
}

// ListUsersHandler handles GET /api/users (superuser only)
func ListUsersHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		skip, limit, err := pagination(r, defaultPageLimit)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		users, err := deps.Services.User.List(r.Context(), skip, limit)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		resp := make([]dtos.UserResponse, len(users))
		for i := range users {
			resp[i] = dtos.NewUserResponse(&users[i])
		}
		common.RespondSuccess(w, initTime, "Users fetched successfully", resp)
	}
}

// GetUserHandler handles GET /api/users/{id}
func GetUserHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, err := requireClaims(r)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		user, err := deps.Services.User.Get(r.Context(), claims, chi.URLParam(r, "id"))
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "User fetched successfully", dtos.NewUserResponse(user))
	}
}

// UpdateUserHandler handles PUT /api/users/{id}
func UpdateUserHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, err := requireClaims(r)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		var req dtos.UserUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		user, err := deps.Services.User.Update(r.Context(), claims, chi.URLParam(r, "id"), &req)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "User updated successfully", dtos.NewUserResponse(user))
	}
}

// DeleteUserHandler handles DELETE /api/users/{id}
func DeleteUserHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, err := requireClaims(r)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		if err := deps.Services.User.Delete(r.Context(), claims, chi.URLParam(r, "id")); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "User deleted successfully", nil)
	}
}

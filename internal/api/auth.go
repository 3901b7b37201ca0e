package api

import (
	"mime"
	"net/http"
	"time"

	"flighttest/ftias/internal/apperrors"
	"flighttest/ftias/internal/common"
	"flighttest/ftias/internal/models/dtos"
	"flighttest/ftias/internal/validation"
)

// LoginHandler handles POST /api/auth/login
//
// @Summary      Log in
// @Description  Accepts a username or email with a password, as JSON or as an OAuth2 password form.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        input  body  dtos.LoginRequest  true  "Credentials"
// @Success      200  {object}  dtos.APIResponse
// @Failure      401  {object}  dtos.APIResponse
// @Router       /api/auth/login [post]
func LoginHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.LoginRequest
		if isFormRequest(r) {
			if err := r.ParseForm(); err != nil {
				common.RespondAppError(w, initTime, apperrors.Validation("Invalid form body"))
				return
			}
			req.Username = r.PostForm.Get("username")
			req.Password = r.PostForm.Get("password")
			if err := validation.ValidateStruct(&req); err != nil {
				common.RespondAppError(w, initTime, err)
				return
			}
		} else if err := decodeJSON(w, r, &req); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		tokens, err := deps.Services.Auth.Login(r.Context(), &req)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindUnauthorized {
				w.Header().Set("WWW-Authenticate", "Bearer")
			}
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Login successful", tokens)
	}
}

// RefreshHandler handles POST /api/auth/refresh
//
// @Summary      Rotate tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        input  body  dtos.RefreshRequest  true  "Refresh token"
// @Success      200  {object}  dtos.APIResponse
// @Failure      401  {object}  dtos.APIResponse
// @Router       /api/auth/refresh [post]
func RefreshHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.RefreshRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		tokens, err := deps.Services.Auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Token refreshed", tokens)
	}
}

// LogoutHandler handles POST /api/auth/logout
//
// @Summary      Log out
// @Description  Revokes the presented access token and, if sent, the refresh token.
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  dtos.APIResponse
// @Router       /api/auth/logout [post]
func LogoutHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, err := requireClaims(r)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		var req dtos.LogoutRequest
		if r.ContentLength != 0 {
			if err := decodeJSON(w, r, &req); err != nil {
				common.RespondAppError(w, initTime, err)
				return
			}
		}

		if err := deps.Services.Auth.Logout(r.Context(), claims, req.RefreshToken); err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Successfully logged out", nil)
	}
}

// MeHandler handles GET /api/auth/me
//
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  dtos.APIResponse
// @Router       /api/auth/me [get]
func MeHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims, err := requireClaims(r)
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		user, err := deps.Services.User.GetActive(r.Context(), claims.UserID())
		if err != nil {
			common.RespondAppError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "User fetched successfully", dtos.NewUserResponse(user))
	}
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}

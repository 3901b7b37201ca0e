package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"flighttest/ftias/internal/apperrors"
	"flighttest/ftias/internal/auth"
	"flighttest/ftias/internal/common"
	gormModels "flighttest/ftias/internal/models/gorm"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string, expected auth.TokenType) (*auth.JWTClaims, error)
}

// ActiveUserLoader resolves the user behind a token. Inactive users are
// rejected by the loader.
type ActiveUserLoader interface {
	GetActive(ctx context.Context, id string) (*gormModels.User, error)
}

// AuthMiddleware accepts "Authorization: Bearer <access token>". The
// superuser flag placed in the request claims comes from the stored user,
// not from the token.
func AuthMiddleware(tokens TokenVerifier, users ActiveUserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()

			authHeader := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				unauthorized(w, initTime, apperrors.Unauthorized("Not authenticated"))
				return
			}

			claims, err := tokens.Verify(r.Context(), strings.TrimSpace(token), auth.TokenTypeAccess)
			if err != nil {
				unauthorized(w, initTime, err)
				return
			}

			user, err := users.GetActive(r.Context(), claims.UserID())
			if err != nil {
				unauthorized(w, initTime, err)
				return
			}
			claims.Superuser = user.IsSuperuser
			if carrier, ok := w.(claimsCarrier); ok {
				carrier.setClaims(claims)
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, initTime time.Time, err error) {
	if apperrors.KindOf(err) == apperrors.KindUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	common.RespondAppError(w, initTime, err)
}

// IsSuperuserMiddleware must run after AuthMiddleware.
func IsSuperuserMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetUserClaims(r.Context())
			if claims == nil {
				unauthorized(w, time.Now(), apperrors.Unauthorized("Not authenticated"))
				return
			}
			if !claims.IsSuperuser() {
				common.RespondAppError(w, time.Now(), apperrors.Forbidden("Not enough permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

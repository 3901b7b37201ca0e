package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"flighttest/ftias/internal/apperrors"
	"flighttest/ftias/internal/auth"
	"flighttest/ftias/internal/config"
	"flighttest/ftias/internal/metrics"
	gormModels "flighttest/ftias/internal/models/gorm"
)

// Mock TokenVerifier
type mockTokenVerifier struct {
	verifyFunc func(ctx context.Context, token string, expected auth.TokenType) (*auth.JWTClaims, error)
}

func (m *mockTokenVerifier) Verify(ctx context.Context, token string, expected auth.TokenType) (*auth.JWTClaims, error) {
	return m.verifyFunc(ctx, token, expected)
}

// Mock ActiveUserLoader
type mockUserLoader struct {
	getActiveFunc func(ctx context.Context, id string) (*gormModels.User, error)
}

func (m *mockUserLoader) GetActive(ctx context.Context, id string) (*gormModels.User, error) {
	return m.getActiveFunc(ctx, id)
}

func acceptingVerifier() *mockTokenVerifier {
	return &mockTokenVerifier{
		verifyFunc: func(ctx context.Context, token string, expected auth.TokenType) (*auth.JWTClaims, error) {
			if token != "good" || expected != auth.TokenTypeAccess {
				return nil, apperrors.Unauthorized("Could not validate credentials")
			}
			return &auth.JWTClaims{UserUUID: "user-1", JTI: "jti-1", Expiry: time.Now().Add(time.Hour), Type: auth.TokenTypeAccess}, nil
		},
	}
}

func userLoader(user *gormModels.User, err error) *mockUserLoader {
	return &mockUserLoader{
		getActiveFunc: func(ctx context.Context, id string) (*gormModels.User, error) {
			return user, err
		},
	}
}

func serveAuth(t *testing.T, header string, loader ActiveUserLoader, next http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	handler := AuthMiddleware(acceptingVerifier(), loader)(next)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware_RejectsMissingOrBadTokens(t *testing.T) {
	reached := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler must not be reached")
	})
	loader := userLoader(&gormModels.User{ID: "user-1", IsActive: true}, nil)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer bad"} {
		rec := serveAuth(t, header, loader, reached)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%q: expected 401, got %d", header, rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") != "Bearer" {
			t.Errorf("%q: expected WWW-Authenticate header", header)
		}
	}
}

func TestAuthMiddleware_InactiveUser(t *testing.T) {
	loader := userLoader(nil, apperrors.Forbidden("Inactive user"))
	rec := serveAuth(t, "Bearer good", loader, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler must not be reached")
	}))
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rec.Code)
	}
}

func TestAuthMiddleware_SuperuserFlagComesFromUser(t *testing.T) {
	loader := userLoader(&gormModels.User{ID: "user-1", IsActive: true, IsSuperuser: true}, nil)

	var got auth.UserClaims
	rec := serveAuth(t, "bearer good", loader, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.GetUserClaims(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	if got == nil || got.UserID() != "user-1" || !got.IsSuperuser() {
		t.Errorf("Unexpected claims %+v", got)
	}
}

func TestIsSuperuserMiddleware(t *testing.T) {
	handler := IsSuperuserMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		claims auth.UserClaims
		want   int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"regular user", &auth.JWTClaims{UserUUID: "u1"}, http.StatusForbidden},
		{"superuser", &auth.JWTClaims{UserUUID: "u1", Superuser: true}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/parameters", nil)
			if tt.claims != nil {
				req = req.WithContext(auth.SetUserClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{RPS: 0.001, Burst: 2})
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("10.0.0.1:5000"); code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := call("10.0.0.1:5001"); code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after burst, got %d", code)
	}
	if code := call("10.0.0.2"); code != http.StatusOK {
		t.Errorf("Expected other client to pass, got %d", code)
	}
}

func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	metricsReg := metrics.NewMetricsRegistryWith(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(MetricsMiddleware(metricsReg))
	r.Get("/api/flight-tests/{id}", func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Error("Expected request id in context")
		}
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/flight-tests/2b7e1f0c-1d3a-4c1e-9a59-0d7c4c2b6f11", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID response header")
	}
	got := testutil.ToFloat64(metricsReg.HTTPRequestsTotal.WithLabelValues("/api/flight-tests/{id}", http.MethodGet, "418"))
	if got != 1 {
		t.Errorf("Expected one request recorded, got %v", got)
	}
}

func TestRequestIDMiddleware_KeepsIncomingID(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := GetRequestID(r.Context()); id != "abc" {
			t.Errorf("Expected abc, got %q", id)
		}
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "abc" {
		t.Error("Expected incoming request id to be echoed")
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := map[string]string{
		"/api/flight-tests/2b7e1f0c-1d3a-4c1e-9a59-0d7c4c2b6f11/data": "/api/flight-tests/{id}/data",
		"/api/users/42":   "/api/users/{id}",
		"/api/parameters": "/api/parameters",
	}
	for in, want := range tests {
		if got := NormalizeEndpoint(in); got != want {
			t.Errorf("NormalizeEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"flighttest/ftias/internal/apperrors"
	"flighttest/ftias/internal/auth"
	"flighttest/ftias/internal/common"
	"flighttest/ftias/internal/db/repositories"
	"flighttest/ftias/internal/ingestion"
	"flighttest/ftias/internal/metrics"
	"flighttest/ftias/internal/models/dtos"
	gormModels "flighttest/ftias/internal/models/gorm"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db          *gorm.DB
	users       *UserService
	auth        *AuthService
	tokens      *auth.TokenService
	flightTests *FlightTestService
	parameters  *ParameterService
	ingestion   *IngestionService
	metrics     *metrics.MetricsRegistry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}

	metricsReg := metrics.NewMetricsRegistryWith(prometheus.NewRegistry())
	userRepo := repositories.NewUserRepository(db)
	tokens := auth.NewTokenService("test-secret-that-is-long-enough-123456", 30*time.Minute, 24*time.Hour, auth.NewMemoryRevocationStore())
	flightTests := NewFlightTestService(
		repositories.NewFlightTestRepository(db),
		repositories.NewDataPointQueryRepository(sqlx.NewDb(sqlDB, "sqlite3"), nil),
	)

	return &testEnv{
		db:          db,
		users:       NewUserService(userRepo, common.NewCacheService("users", time.Minute, time.Minute, nil)),
		auth:        NewAuthService(userRepo, tokens),
		tokens:      tokens,
		flightTests: flightTests,
		parameters:  NewParameterService(repositories.NewParameterRepository(db)),
		ingestion: NewIngestionService(
			repositories.NewStore(db),
			flightTests,
			ingestion.NewPipeline(ingestion.NewNormalizer(ingestion.ReferenceEpoch)),
			metricsReg,
		),
		metrics: metricsReg,
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *gormModels.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), &dtos.UserCreateRequest{
		Email:    username + "@example.com",
		Username: username,
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func (e *testEnv) createFlightTest(t *testing.T, ownerID, name string) *gormModels.FlightTest {
	t.Helper()
	test, err := e.flightTests.Create(context.Background(), ownerID, &dtos.FlightTestCreateRequest{TestName: name})
	if err != nil {
		t.Fatalf("Failed to create flight test: %v", err)
	}
	return test
}

func caller(user *gormModels.User) auth.UserClaims {
	return &auth.JWTClaims{UserUUID: user.ID, Superuser: user.IsSuperuser, JTI: uuid.NewString(), Expiry: time.Now().Add(time.Hour), Type: auth.TokenTypeAccess}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	return n
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func expectKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Kind != kind {
		t.Fatalf("Expected %s, got %v", kind, err)
	}
}

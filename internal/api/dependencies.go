package api

import (
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"flighttest/ftias/internal/auth"
	"flighttest/ftias/internal/common"
	"flighttest/ftias/internal/config"
	"flighttest/ftias/internal/db/repositories"
	"flighttest/ftias/internal/ingestion"
	"flighttest/ftias/internal/metrics"
	"flighttest/ftias/internal/services"
)

type Repositories struct {
	User        *repositories.UserRepository
	FlightTests *repositories.FlightTestRepository
	Parameters  *repositories.ParameterRepository
	DataPoints  *repositories.DataPointQueryRepository
	Store       *repositories.Store
}

type Services struct {
	Cache       *common.CacheService
	Tokens      *auth.TokenService
	Revocations auth.RevocationStore
	User        *services.UserService
	Auth        *services.AuthService
	FlightTests *services.FlightTestService
	Parameters  *services.ParameterService
	Ingestion   *services.IngestionService
}

type Dependencies struct {
	Config   *config.Config
	Repo     *Repositories
	Services *Services
	Metrics  *metrics.MetricsRegistry
	UpSince  time.Time
}

// InitDependencies wires repositories and services over the given
// connections. gormDB carries writes and transactions; sqlxDB serves the
// read-side queries and the health probe.
func InitDependencies(cfg *config.Config, gormDB *gorm.DB, sqlxDB *sqlx.DB, revocations auth.RevocationStore, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	repos := &Repositories{
		User:        repositories.NewUserRepository(gormDB),
		FlightTests: repositories.NewFlightTestRepository(gormDB),
		Parameters:  repositories.NewParameterRepository(gormDB),
		DataPoints:  repositories.NewDataPointQueryRepository(sqlxDB, metricsReg),
		Store:       repositories.NewStore(gormDB),
	}

	cacheSvc := common.NewCacheService("users", time.Minute, 10*time.Minute, metricsReg)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, revocations)
	flightTests := services.NewFlightTestService(repos.FlightTests, repos.DataPoints)
	pipeline := ingestion.NewPipeline(ingestion.NewNormalizer(ingestion.ReferenceEpoch))

	svcs := &Services{
		Cache:       cacheSvc,
		Tokens:      tokens,
		Revocations: revocations,
		User:        services.NewUserService(repos.User, cacheSvc),
		Auth:        services.NewAuthService(repos.User, tokens),
		FlightTests: flightTests,
		Parameters:  services.NewParameterService(repos.Parameters),
		Ingestion:   services.NewIngestionService(repos.Store, flightTests, pipeline, metricsReg),
	}

	return &Dependencies{
		Config:   cfg,
		Repo:     repos,
		Services: svcs,
		Metrics:  metricsReg,
		UpSince:  time.Now(),
	}, nil
}

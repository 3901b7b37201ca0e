package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flighttest/ftias/internal/api"
	"flighttest/ftias/internal/auth"
	"flighttest/ftias/internal/common"
	"flighttest/ftias/internal/config"
	"flighttest/ftias/internal/db"
	"flighttest/ftias/internal/logging"
	"flighttest/ftias/internal/metrics"
	"flighttest/ftias/internal/routes"
)

const shutdownTimeout = 15 * time.Second

// @title Flight Test Data API
// @version 1.0
// @description Flight-test measurement ingestion and parameter registry.
// @BasePath /api
func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if err := logging.Init(cfg.App.Env); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("FTIAS starting up",
		"environment", cfg.App.Env,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error("Server stopped with error", "error", err.Error())
		logging.Close()
		os.Exit(1)
	}
	logging.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	dsn := cfg.Postgres.DSN()

	// Connect to DB with sqlx
	sqlxDB, err := db.InitPostgres(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres (sqlx): %w", err)
	}
	defer sqlxDB.Close()
	logging.Info("Connected to Postgres (sqlx)")

	// Connect to DB with GORM
	gormDB, err := db.InitPostgresORM(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres (GORM): %w", err)
	}
	logging.Info("Connected to Postgres (GORM)")

	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	var revocations auth.RevocationStore
	if cfg.Redis.Enabled() {
		redisClient := common.NewRedisClient(ctx, cfg.Redis)
		defer redisClient.Close()
		revocations = auth.NewRedisRevocationStore(redisClient)
	} else {
		logging.Warn("Redis not configured, token revocations are kept in memory")
		revocations = auth.NewMemoryRevocationStore()
	}

	metricsReg := metrics.NewMetricsRegistry()

	deps, err := api.InitDependencies(cfg, gormDB, sqlxDB, revocations, metricsReg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	router := routes.RegisterRoutes(deps)

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Server starting", "port", cfg.Server.Port, "environment", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

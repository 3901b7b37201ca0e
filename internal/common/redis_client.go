package common

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"flighttest/ftias/internal/config"
	"flighttest/ftias/internal/logging"
)

// NewRedisClient connects to Redis. A failed ping is logged, not fatal; the
// pool keeps retrying.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logging.Warn("Failed to ping Redis", "addr", cfg.Addr(), "error", fmt.Sprint(err))
		return client
	}

	logging.Info("Connected to Redis", "addr", cfg.Addr(), "db", cfg.DB)
	return client
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ftias/config.yaml",
}

const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{Env: "development"},
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: 2 * time.Minute,
		},
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "ftias",
			DB:      "ftias",
			SSLMode: "disable",
		},
		Auth: AuthConfig{
			AccessTokenTTL:  30 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Redis: RedisConfig{Port: 6379},
		Upload: UploadConfig{
			MaxBytes: 100 << 20,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		RateLimit: RateLimitConfig{
			RPS:   20,
			Burst: 40,
		},
	}
}

// Load builds the configuration and validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitListValue(k, "cors.allowed_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// splitListValue turns a comma separated env value into a list.
func splitListValue(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var items []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	if err := k.Set(path, items); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

var envMappings = map[string]string{
	"app_env":              "app.env",
	"port":                 "server.port",
	"request_timeout":      "server.request_timeout",
	"pg_host":              "postgres.host",
	"pg_port":              "postgres.port",
	"pg_user":              "postgres.user",
	"pg_password":          "postgres.password",
	"pg_db":                "postgres.db",
	"pg_sslmode":           "postgres.sslmode",
	"jwt_secret":           "auth.jwt_secret",
	"access_token_ttl":     "auth.access_token_ttl",
	"refresh_token_ttl":    "auth.refresh_token_ttl",
	"redis_host":           "redis.host",
	"redis_port":           "redis.port",
	"redis_password":       "redis.password",
	"redis_db":             "redis.db",
	"upload_max_bytes":     "upload.max_bytes",
	"cors_allowed_origins": "cors.allowed_origins",
	"rate_limit_rps":       "rate_limit.rps",
	"rate_limit_burst":     "rate_limit.burst",
}

// envTransformFunc maps known variables to config keys; anything else is
// dropped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != 30*time.Minute {
		t.Errorf("Auth.AccessTokenTTL = %v, want 30m", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Redis.Enabled() {
		t.Error("Redis should be disabled by default")
	}
	if cfg.Upload.MaxBytes != 100<<20 {
		t.Errorf("Upload.MaxBytes = %d, want 100MiB", cfg.Upload.MaxBytes)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PG_HOST", "db.internal")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Postgres.Host != "db.internal" || cfg.Postgres.Port != 6543 {
		t.Errorf("Postgres = %s:%d, want db.internal:6543", cfg.Postgres.Host, cfg.Postgres.Port)
	}
	if !cfg.Redis.Enabled() || cfg.Redis.Addr() != "cache:6379" {
		t.Errorf("Redis.Addr() = %q, want cache:6379", cfg.Redis.Addr())
	}
	if cfg.Auth.AccessTokenTTL != 5*time.Minute {
		t.Errorf("Auth.AccessTokenTTL = %v, want 5m", cfg.Auth.AccessTokenTTL)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORS.AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Auth.JWTSecret == "" {
		t.Error("Development config should get a placeholder secret")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 9090\nupload:\n  max_bytes: 1024\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PORT", "9191")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Upload.MaxBytes != 1024 {
		t.Errorf("Upload.MaxBytes = %d, want 1024 from file", cfg.Upload.MaxBytes)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want env to win over file", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"production without secret", func(c *Config) { c.App.Env = "production" }, "jwt_secret is required"},
		{"production short secret", func(c *Config) {
			c.App.Env = "production"
			c.Auth.JWTSecret = "short"
		}, "at least 32"},
		{"refresh shorter than access", func(c *Config) { c.Auth.RefreshTokenTTL = time.Minute }, "refresh_token_ttl"},
		{"zero upload cap", func(c *Config) { c.Upload.MaxBytes = 0 }, "max_bytes"},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, "rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "h", Port: 5432, User: "u", Password: "p@ss", DB: "ftias", SSLMode: "require"}
	want := "postgres://u:p%40ss@h:5432/ftias?sslmode=require"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("MOONSHOT_MODEL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.MoonshotModel != "moonshot-v1-8k" {
		t.Errorf("MoonshotModel = %q, want moonshot-v1-8k", cfg.MoonshotModel)
	}
	if cfg.CSRFSecret != cfg.SessionSecret {
		t.Error("CSRFSecret should fall back to SessionSecret")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("AWS_S3_PATH_STYLE", "true")
	t.Setenv("RATE_LIMIT_REQUESTS", "3")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()

	if cfg.ServerPort != "9000" {
		t.Errorf("ServerPort = %q, want 9000", cfg.ServerPort)
	}
	if !cfg.S3UsePathStyle {
		t.Error("S3UsePathStyle should be true")
	}
	if cfg.RateLimitRequests != 3 {
		t.Errorf("RateLimitRequests = %d, want 3", cfg.RateLimitRequests)
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Errorf("RateLimitWindow = %s, want 30s", cfg.RateLimitWindow)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("CORSAllowedOrigins = %v, want 2 entries", cfg.CORSAllowedOrigins)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "lots")
	t.Setenv("SESSION_DURATION", "forever")
	t.Setenv("DEBUG", "maybe")

	cfg := Load()

	if cfg.RateLimitRequests != 10 {
		t.Errorf("RateLimitRequests = %d, want default 10", cfg.RateLimitRequests)
	}
	if cfg.SessionDuration != 30*24*time.Hour {
		t.Errorf("SessionDuration = %s, want default", cfg.SessionDuration)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

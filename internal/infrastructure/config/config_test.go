package config_test

import (
	"testing"
	"time"

	"github.com/propfolio/backoffice/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.JWTSecret != "" {
		t.Fatalf("expected JWT secret default to be empty, got %q", cfg.JWTSecret)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.QueueRedeliveryBudget != 2 {
		t.Fatalf("expected default redelivery budget 2, got %d", cfg.QueueRedeliveryBudget)
	}

	if cfg.JobStateTTL != 168*time.Hour {
		t.Fatalf("expected default job state TTL of 7 days, got %s", cfg.JobStateTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.GeminiModel != "gemini-2.5-pro" {
		t.Fatalf("expected model override, got %s", cfg.GeminiModel)
	}
}

func TestProcessURL(t *testing.T) {
	t.Setenv("PROCESS_BASE_URL", "http://svc.internal:8080")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	want := "http://svc.internal:8080/api/vendor-import/process"
	if got := cfg.ProcessURL(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

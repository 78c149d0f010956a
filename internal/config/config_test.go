package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "Development")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("DB_DRIVER", "")

	cfg := Load()
	if !cfg.Development() {
		t.Error("expected development mode to be case-insensitive")
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("expected 1h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.DB.Driver != "sqlite3" {
		t.Errorf("expected sqlite3 driver by default, got %q", cfg.DB.Driver)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Errorf("unexpected secret %q", cfg.JWTSecret)
	}
}

func TestProductionIsDefault(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("APP_ENV", "")
	if Load().Development() {
		t.Error("expected production when APP_ENV is unset")
	}
}

func TestEnvBoolFallsBack(t *testing.T) {
	t.Setenv("SOME_FLAG", "maybe")
	if !envBool("SOME_FLAG", true) {
		t.Error("unrecognised values should return the default")
	}
	t.Setenv("SOME_FLAG", "off")
	if envBool("SOME_FLAG", true) {
		t.Error("expected off to parse as false")
	}
}

func TestRateLimitNormalized(t *testing.T) {
	c := RateLimitConfig{Capacity: 0, RefillTokens: 0, RefillInterval: 0, TTL: time.Second}.normalized()
	if c.Capacity != 1 || c.RefillTokens != 1 || c.RefillInterval != time.Second {
		t.Errorf("unexpected normalized config %+v", c)
	}
	if c.TTL != 5*time.Second {
		t.Errorf("expected ttl raised to 5 intervals, got %s", c.TTL)
	}
}

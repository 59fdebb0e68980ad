package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("DATABASE_URL", "postgres://localhost:5432/lifelink_test")
	t.Cleanup(func() { os.Unsetenv("DATABASE_URL") })
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if cfg.DBMaxConns != 20 {
		t.Errorf("expected default max conns 20, got %d", cfg.DBMaxConns)
	}
	if cfg.InventoryTTL != 300 {
		t.Errorf("expected default inventory TTL 300, got %d", cfg.InventoryTTL)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("PORT", "9090")
	os.Setenv("ENV", "production")
	defer os.Unsetenv("PORT")
	defer os.Unsetenv("ENV")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
}

func TestValidate_ProductionRequiresAuth(t *testing.T) {
	cfg := &Config{Env: "production", RateLimitRPS: 10, InventoryTTL: 60}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for production config without JWT secret")
	}

	cfg.JWTSecret = "shhh"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_DevNeedsNoSecret(t *testing.T) {
	cfg := &Config{Env: "development", InventoryTTL: 60}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_InventoryTTL(t *testing.T) {
	cfg := &Config{Env: "development", InventoryTTL: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero inventory TTL")
	}
}

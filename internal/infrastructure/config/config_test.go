package config

import (
	"context"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected base url: %s", cfg.API.BaseURL)
	}
	if cfg.API.LoginPath != "/api/auth/login/" {
		t.Fatalf("unexpected login path: %s", cfg.API.LoginPath)
	}
	if cfg.Poll.Interval != 5*time.Second {
		t.Fatalf("expected 5s poll interval, got %s", cfg.Poll.Interval)
	}
	if cfg.Session.Backend != SessionBackendFile || cfg.Session.Key != "accessToken" {
		t.Fatalf("unexpected session config: %+v", cfg.Session)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_URL", "https://market.example.com")
	t.Setenv("POLL_INTERVAL", "2s")
	t.Setenv("SESSION_BACKEND", "memory")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://market.example.com" {
		t.Fatalf("unexpected base url: %s", cfg.API.BaseURL)
	}
	if cfg.Poll.Interval != 2*time.Second {
		t.Fatalf("unexpected interval: %s", cfg.Poll.Interval)
	}
	if cfg.Session.Backend != SessionBackendMemory {
		t.Fatalf("unexpected backend: %s", cfg.Session.Backend)
	}
}

func TestLoad_RedisSessionRequiresRedis(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "redis")
	if _, err := Load(context.Background()); err == nil {
		t.Fatalf("expected error when redis is disabled")
	}

	t.Setenv("REDIS_ENABLED", "true")
	if _, err := Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "cookie")
	if _, err := Load(context.Background()); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("WATCH_INTERVAL_MS", "")

	cfg := Load()
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.DatabaseDriver != "sqlite3" {
		t.Fatalf("unexpected driver %q", cfg.DatabaseDriver)
	}
	if cfg.WatchInterval != 2*time.Second {
		t.Fatalf("unexpected watch interval %v", cfg.WatchInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("WS_PING_INTERVAL_MS", "1500")
	t.Setenv("SHUTDOWN_TIMEOUT_MS", "not-a-number")

	cfg := Load()
	if cfg.HTTPPort != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
	}
	if cfg.DatabaseDriver != "postgres" {
		t.Fatalf("unexpected driver %q", cfg.DatabaseDriver)
	}
	if cfg.PingInterval != 1500*time.Millisecond {
		t.Fatalf("unexpected ping interval %v", cfg.PingInterval)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("invalid value should fall back to default, got %v", cfg.ShutdownTimeout)
	}
}

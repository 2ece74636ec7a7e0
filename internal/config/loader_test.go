package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"PLACEMENT_HTTP_PORT",
	"PLACEMENT_STORE",
	"PLACEMENT_SQLITE_DSN",
	"PLACEMENT_MONGO_URI",
	"PLACEMENT_MONGO_DATABASE",
	"PLACEMENT_JWT_SECRET",
	"PLACEMENT_TOKEN_TTL",
	"PLACEMENT_REDIS_ADDR",
	"PLACEMENT_RABBITMQ_URL",
	"PLACEMENT_EVENTS_QUEUE",
	"PLACEMENT_STATS_CACHE_TTL",
	"PLACEMENT_STATS_PUSH_INTERVAL",
	"PLACEMENT_STRICT_TERMINAL",
	"PLACEMENT_RATE_LIMIT",
	"PLACEMENT_CORS_ORIGIN",
	"PLACEMENT_LOG_LEVEL",
	"PLACEMENT_CONFIG_FILE",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PLACEMENT_JWT_SECRET", "super-secret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 5000 || cfg.Addr() != ":5000" {
			t.Fatalf("expected default HTTP port 5000, got %d", cfg.HTTPPort)
		}
		if cfg.Store != StoreSQLite || cfg.SQLiteDSN != "placement.db" {
			t.Fatalf("unexpected store defaults: %q %q", cfg.Store, cfg.SQLiteDSN)
		}
		if cfg.TokenTTL != 24*time.Hour || cfg.StatsCacheTTL != 10*time.Second || cfg.StatsPushInterval != 2*time.Second {
			t.Fatalf("unexpected duration defaults: %+v", cfg)
		}
		if cfg.RateLimit != 20 || cfg.CORSOrigin != "*" || cfg.EventsQueue != "placement.events" {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
		if cfg.StrictTerminal || cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PLACEMENT_STORE", "mongo")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error when required values are missing")
		}
		expected := "required environment variables are not set: PLACEMENT_MONGO_URI, PLACEMENT_JWT_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PLACEMENT_JWT_SECRET", "s")
		t.Setenv("PLACEMENT_HTTP_PORT", "zero")
		t.Setenv("PLACEMENT_TOKEN_TTL", "-1h")
		t.Setenv("PLACEMENT_STORE", "postgres")
		t.Setenv("PLACEMENT_LOG_LEVEL", "loud")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		for _, key := range []string{"PLACEMENT_HTTP_PORT", "PLACEMENT_TOKEN_TTL", "PLACEMENT_STORE", "PLACEMENT_LOG_LEVEL"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected %s in %q", key, err.Error())
			}
		}
	})

	t.Run("parses duration, numeric and boolean fields", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PLACEMENT_JWT_SECRET", "secret-value")
		t.Setenv("PLACEMENT_HTTP_PORT", "9090")
		t.Setenv("PLACEMENT_STORE", "MEMORY")
		t.Setenv("PLACEMENT_TOKEN_TTL", "2h")
		t.Setenv("PLACEMENT_STRICT_TERMINAL", "true")
		t.Setenv("PLACEMENT_RATE_LIMIT", "5")
		t.Setenv("PLACEMENT_REDIS_ADDR", "localhost:6379")
		t.Setenv("PLACEMENT_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9090 || cfg.Store != StoreMemory || cfg.TokenTTL != 2*time.Hour {
			t.Fatalf("unexpected config: %+v", cfg)
		}
		if !cfg.StrictTerminal || cfg.RateLimit != 5 || cfg.RedisAddr != "localhost:6379" || cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("unexpected config: %+v", cfg)
		}
	})

	t.Run("reads a config file and lets the environment override it", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "placement.yaml")
		content := "jwt_secret: from-file\nhttp_port: 7000\nrate_limit: 3\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		t.Setenv("PLACEMENT_CONFIG_FILE", path)
		t.Setenv("PLACEMENT_HTTP_PORT", "7100")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.JWTSecret != "from-file" || cfg.RateLimit != 3 {
			t.Fatalf("file values not applied: %+v", cfg)
		}
		if cfg.HTTPPort != 7100 {
			t.Fatalf("expected environment override 7100, got %d", cfg.HTTPPort)
		}
	})
}

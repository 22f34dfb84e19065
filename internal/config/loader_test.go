package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var variables = []string{
	"TRIPLINKER_HTTP_PORT",
	"TRIPLINKER_SQLITE_DSN",
	"TRIPLINKER_TIMEZONE",
	"TRIPLINKER_HOLIDAY_WINDOW_MONTHS",
	"TRIPLINKER_OPEN_DELAY",
	"TRIPLINKER_SESSION_TTL",
	"TRIPLINKER_DESTINATIONS_FILE",
	"TRIPLINKER_HOLIDAYS_FILE",
	"TRIPLINKER_DESKTOP",
	"TRIPLINKER_LOG_LEVEL",
}

// clearEnv unsets every variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range variables {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load(noEnvFile(t))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 8080 || cfg.SQLiteDSN != "triplinker.db" {
			t.Fatalf("unexpected defaults %+v", cfg)
		}
		if cfg.Location == nil || cfg.Location.String() != "Europe/Berlin" {
			t.Fatalf("expected Europe/Berlin, got %v", cfg.Location)
		}
		if cfg.HolidayWindowMonths != 18 || cfg.OpenDelay != 300*time.Millisecond || cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("unexpected defaults %+v", cfg)
		}
		if cfg.Desktop || cfg.LogLevel != slog.LevelInfo {
			t.Fatalf("unexpected defaults %+v", cfg)
		}
	})

	t.Run("parses every variable", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TRIPLINKER_HTTP_PORT", "9090")
		t.Setenv("TRIPLINKER_SQLITE_DSN", "file:/tmp/triplinker.db")
		t.Setenv("TRIPLINKER_TIMEZONE", "UTC")
		t.Setenv("TRIPLINKER_HOLIDAY_WINDOW_MONTHS", "0")
		t.Setenv("TRIPLINKER_OPEN_DELAY", "1s")
		t.Setenv("TRIPLINKER_SESSION_TTL", "30m")
		t.Setenv("TRIPLINKER_DESTINATIONS_FILE", "/etc/triplinker/destinations.yaml")
		t.Setenv("TRIPLINKER_HOLIDAYS_FILE", "/etc/triplinker/holidays.yaml")
		t.Setenv("TRIPLINKER_DESKTOP", "true")
		t.Setenv("TRIPLINKER_LOG_LEVEL", "debug")

		cfg, err := Load(noEnvFile(t))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9090 || cfg.SQLiteDSN != "file:/tmp/triplinker.db" || cfg.Location != time.UTC {
			t.Fatalf("unexpected config %+v", cfg)
		}
		if cfg.HolidayWindowMonths != 0 || cfg.OpenDelay != time.Second || cfg.SessionTTL != 30*time.Minute {
			t.Fatalf("unexpected config %+v", cfg)
		}
		if cfg.DestinationsFile == "" || cfg.HolidaysFile == "" || !cfg.Desktop || cfg.LogLevel != slog.LevelDebug {
			t.Fatalf("unexpected config %+v", cfg)
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TRIPLINKER_HTTP_PORT", "http")
		t.Setenv("TRIPLINKER_TIMEZONE", "Mars/Olympus")
		t.Setenv("TRIPLINKER_SESSION_TTL", "-1h")

		_, err := Load(noEnvFile(t))
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "Ungültige Werte in Umgebungsvariablen: TRIPLINKER_HTTP_PORT, TRIPLINKER_TIMEZONE, TRIPLINKER_SESSION_TTL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("reads env file without overriding the environment", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "triplinker.env")
		content := "TRIPLINKER_HTTP_PORT=7070\nTRIPLINKER_OPEN_DELAY=500ms\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv("TRIPLINKER_OPEN_DELAY", "100ms")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 7070 {
			t.Fatalf("expected port from env file, got %d", cfg.HTTPPort)
		}
		if cfg.OpenDelay != 100*time.Millisecond {
			t.Fatalf("expected environment to win, got %s", cfg.OpenDelay)
		}
	})
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/trip-linker/internal/logging"
)

// DefaultEnvFile is read before the environment when present.
const DefaultEnvFile = ".env"

// Config captures environment driven configuration values for the trip planner.
type Config struct {
	HTTPPort  int
	SQLiteDSN string
	// Location defines the calendar day used for holiday states and windows.
	Location            *time.Location
	HolidayWindowMonths int
	OpenDelay           time.Duration
	SessionTTL          time.Duration
	DestinationsFile    string
	HolidaysFile        string
	Desktop             bool
	LogLevel            slog.Level
}

// Load reads optional env files, then parses configuration values from the
// process environment. Variables already set in the environment win over
// env file entries. Without arguments DefaultEnvFile is tried.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("Umgebungsdatei %s konnte nicht gelesen werden: %w", file, err)
		}
	}

	cfg := Config{
		HTTPPort:            8080,
		SQLiteDSN:           "triplinker.db",
		HolidayWindowMonths: 18,
		OpenDelay:           300 * time.Millisecond,
		SessionTTL:          12 * time.Hour,
		LogLevel:            slog.LevelInfo,
	}

	invalid := make([]string, 0, 2)

	if portValue := lookup("TRIPLINKER_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "TRIPLINKER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := lookup("TRIPLINKER_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	zone := lookup("TRIPLINKER_TIMEZONE")
	if zone == "" {
		zone = "Europe/Berlin"
	}
	if loc, err := time.LoadLocation(zone); err != nil {
		invalid = append(invalid, "TRIPLINKER_TIMEZONE")
	} else {
		cfg.Location = loc
	}

	if windowValue := lookup("TRIPLINKER_HOLIDAY_WINDOW_MONTHS"); windowValue != "" {
		months, err := strconv.Atoi(windowValue)
		if err != nil || months < 0 {
			invalid = append(invalid, "TRIPLINKER_HOLIDAY_WINDOW_MONTHS")
		} else {
			cfg.HolidayWindowMonths = months
		}
	}

	if delayValue := lookup("TRIPLINKER_OPEN_DELAY"); delayValue != "" {
		delay, err := time.ParseDuration(delayValue)
		if err != nil || delay < 0 {
			invalid = append(invalid, "TRIPLINKER_OPEN_DELAY")
		} else {
			cfg.OpenDelay = delay
		}
	}

	if ttlValue := lookup("TRIPLINKER_SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "TRIPLINKER_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	cfg.DestinationsFile = lookup("TRIPLINKER_DESTINATIONS_FILE")
	cfg.HolidaysFile = lookup("TRIPLINKER_HOLIDAYS_FILE")

	if desktopValue := lookup("TRIPLINKER_DESKTOP"); desktopValue != "" {
		desktop, err := strconv.ParseBool(desktopValue)
		if err != nil {
			invalid = append(invalid, "TRIPLINKER_DESKTOP")
		} else {
			cfg.Desktop = desktop
		}
	}

	if levelValue := lookup("TRIPLINKER_LOG_LEVEL"); levelValue != "" {
		level, err := logging.ParseLevel(levelValue)
		if err != nil {
			invalid = append(invalid, "TRIPLINKER_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("Ungültige Werte in Umgebungsvariablen: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

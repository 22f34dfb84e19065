package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

var (
	journalModes     = []string{"DELETE", "TRUNCATE", "PERSIST", "MEMORY", "WAL", "OFF"}
	synchronousModes = []string{"OFF", "NORMAL", "FULL", "EXTRA"}
)

// SQLiteConfig describes how the key-value database is opened.
type SQLiteConfig struct {
	DSN             string // file path, file: URI or ":memory:"
	BusyTimeout     time.Duration
	JournalMode     string // PRAGMA journal_mode when set
	Synchronous     string // PRAGMA synchronous when set
	CacheSize       int    // PRAGMA cache_size; negative values are KiB
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultSQLiteConfig returns the configuration used for the on-disk store.
// A single connection keeps the PRAGMAs in effect for every statement.
func DefaultSQLiteConfig(databasePath string) SQLiteConfig {
	return SQLiteConfig{
		DSN:          databasePath,
		BusyTimeout:  5 * time.Second,
		JournalMode:  "WAL",
		Synchronous:  "NORMAL",
		CacheSize:    -2000,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
}

// Validate reports every invalid setting in one error.
func (c SQLiteConfig) Validate() error {
	var problems []string
	if strings.TrimSpace(c.DSN) == "" {
		problems = append(problems, "dsn is empty")
	}
	if c.BusyTimeout < 0 {
		problems = append(problems, "busy timeout is negative")
	}
	if c.JournalMode != "" && !slices.Contains(journalModes, c.JournalMode) {
		problems = append(problems, fmt.Sprintf("journal mode %q is unknown", c.JournalMode))
	}
	if c.Synchronous != "" && !slices.Contains(synchronousModes, c.Synchronous) {
		problems = append(problems, fmt.Sprintf("synchronous mode %q is unknown", c.Synchronous))
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 || c.ConnMaxLifetime < 0 {
		problems = append(problems, "pool limits are negative")
	}
	if len(problems) > 0 {
		return errors.New("sqlite config: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c SQLiteConfig) pragmas() []string {
	pragmas := []string{fmt.Sprintf("PRAGMA busy_timeout = %d", c.BusyTimeout.Milliseconds())}
	if c.JournalMode != "" {
		pragmas = append(pragmas, "PRAGMA journal_mode = "+c.JournalMode)
	}
	if c.Synchronous != "" {
		pragmas = append(pragmas, "PRAGMA synchronous = "+c.Synchronous)
	}
	if c.CacheSize != 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA cache_size = %d", c.CacheSize))
	}
	return pragmas
}

// OpenDB creates the database file and its directory when needed, opens it
// with the modernc driver and applies the configured PRAGMAs.
func OpenDB(c SQLiteConfig) (*sql.DB, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if path := filePath(c.DSN); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", c.DSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.ConnMaxLifetime)
	}

	for _, pragma := range c.pragmas() {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	return db, nil
}

// filePath extracts the filesystem path from a DSN; it is empty for
// in-memory databases.
func filePath(dsn string) string {
	path := strings.TrimPrefix(strings.TrimSpace(dsn), "file:")
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	return path
}

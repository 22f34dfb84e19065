// Package sqlite implements persistence.KeyValueStore on an embedded SQLite
// database using the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/trip-linker/internal/persistence"
	"github.com/example/trip-linker/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store keeps JSON documents in the kv_entries table.
type Store struct {
	db     *sql.DB
	pool   *ConnectionPool
	retry  retryHelper
	now    func() time.Time
	logger *slog.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the logger used for migrations and retries.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRetry overrides the retry policy applied to lock contention.
func WithRetry(config RetryConfig) Option {
	return func(s *Store) {
		s.retry = retryHelper{config: config}
	}
}

// Open connects to the database described by config and applies pending
// migrations.
func Open(ctx context.Context, config migration.SQLiteConfig, opts ...Option) (*Store, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}

	store := New(pool.DB(), opts...)
	store.pool = pool
	if err := store.Migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an already opened database. The schema is expected to exist.
func New(db *sql.DB, opts ...Option) *Store {
	store := &Store{
		db:     db,
		retry:  retryHelper{config: DefaultRetryConfig()},
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(store)
	}
	store.logger = store.logger.With("component", "sqlite_store")
	return store
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	migrations, err := migration.Load(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: load migrations: %w", err)
	}
	manager := migration.NewManager(migration.NewSQLiteExecutor(s.db), migrations, s.logger)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Close releases the database when the store opened it.
func (s *Store) Close() error {
	if s.pool != nil {
		return s.pool.Close()
	}
	return nil
}

// Get returns the value stored under key or persistence.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if strings.TrimSpace(key) == "" {
		return nil, persistence.ErrEmptyKey
	}

	const query = `SELECT value FROM kv_entries WHERE key = ?`
	var value []byte
	err := s.retry.do(ctx, func() error {
		return s.db.QueryRowContext(ctx, query, key).Scan(&value)
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set inserts or replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return persistence.ErrEmptyKey
	}

	const upsert = `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	updatedAt := s.now().UTC().Format(time.RFC3339Nano)
	return s.retry.do(ctx, func() error {
		return withTransaction(ctx, s.db, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, upsert, key, value, updatedAt)
			return err
		})
	})
}

// Delete removes key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return persistence.ErrEmptyKey
	}

	const stmt = `DELETE FROM kv_entries WHERE key = ?`
	return s.retry.do(ctx, func() error {
		_, err := s.db.ExecContext(ctx, stmt, key)
		return err
	})
}

// Keys returns every stored key in ascending order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	const query = `SELECT key FROM kv_entries ORDER BY key ASC`

	var keys []string
	err := s.retry.do(ctx, func() error {
		keys = keys[:0]
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				return err
			}
			keys = append(keys, key)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

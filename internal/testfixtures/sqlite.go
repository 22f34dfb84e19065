package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/trip-linker/internal/persistence/sqlite"
	"github.com/example/trip-linker/internal/persistence/sqlite/migration"
)

// SQLiteHarness provides a migrated key-value store in a temporary database
// file.
type SQLiteHarness struct {
	Store *sqlite.Store
	Path  string

	cleanup func()
}

// Close releases the database. It is also registered with tb.Cleanup.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// Reopen closes the store and opens the same file again.
func (h *SQLiteHarness) Reopen(tb testing.TB) *sqlite.Store {
	tb.Helper()
	h.Close()
	store := openStore(tb, h.Path)
	h.Store = store
	h.cleanup = func() { _ = store.Close() }
	return store
}

// NewSQLiteHarness opens a store on a fresh temporary file.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "triplinker.db")
	store := openStore(tb, path)
	harness := &SQLiteHarness{
		Store: store,
		Path:  path,
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

func openStore(tb testing.TB, path string) *sqlite.Store {
	tb.Helper()
	store, err := sqlite.Open(context.Background(), migration.DefaultSQLiteConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	return store
}

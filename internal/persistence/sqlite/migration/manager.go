package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Manager applies pending migrations in version order.
type Manager struct {
	executor   Executor
	migrations []Migration
	logger     *slog.Logger
}

// NewManager creates a Manager for an already loaded, ordered migration set.
func NewManager(executor Executor, migrations []Migration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		executor:   executor,
		migrations: append([]Migration(nil), migrations...),
		logger:     logger.With("component", "migration"),
	}
}

// RunMigrations executes all pending migrations in sequential order
func (m *Manager) RunMigrations(ctx context.Context) error {
	start := time.Now()

	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		m.logger.ErrorContext(ctx, "failed to initialize schema_migrations table", "error", err)
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	pending, err := m.PendingMigrations(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		m.logger.DebugContext(ctx, "schema is up to date")
		return nil
	}

	for i, migration := range pending {
		logger := m.logger.With("version", migration.Version, "description", migration.Description)
		logger.InfoContext(ctx, "applying migration", "position", i+1, "pending", len(pending))

		migrationStart := time.Now()
		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return NewMigrationError(migration.Version, migration.FilePath, "execute migration",
				fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}

		elapsed := time.Since(migrationStart)
		if err := m.executor.RecordMigration(ctx, migration, elapsed); err != nil {
			logger.ErrorContext(ctx, "failed to record migration", "error", err)
			return NewMigrationError(migration.Version, migration.FilePath, "record migration", err)
		}
		logger.InfoContext(ctx, "migration applied", "duration", elapsed)
	}

	m.logger.InfoContext(ctx, "migrations completed", "count", len(pending), "duration", time.Since(start))
	return nil
}

// PendingMigrations returns migrations that are not yet applied. Applied
// scripts whose checksum changed are reported as ErrChecksumMismatch.
func (m *Manager) PendingMigrations(ctx context.Context) ([]Migration, error) {
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}

	appliedByVersion := make(map[string]AppliedMigration, len(applied))
	for _, a := range applied {
		appliedByVersion[a.Version] = a
	}

	var pending []Migration
	for _, migration := range m.migrations {
		a, ok := appliedByVersion[migration.Version]
		if !ok {
			pending = append(pending, migration)
			continue
		}
		if a.Checksum != "" && a.Checksum != migration.Checksum {
			return nil, NewMigrationError(migration.Version, migration.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}
	return pending, nil
}

// Status reports applied and pending migrations.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize version table: %w", err)
	}
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	pending, err := m.PendingMigrations(ctx)
	if err != nil {
		return nil, err
	}

	current := ""
	maxVersion := -1
	for _, a := range applied {
		if v, err := strconv.Atoi(a.Version); err == nil && v > maxVersion {
			maxVersion = v
			current = a.Version
		}
	}

	return &Status{
		CurrentVersion:    current,
		PendingCount:      len(pending),
		AppliedMigrations: applied,
		PendingMigrations: pending,
	}, nil
}

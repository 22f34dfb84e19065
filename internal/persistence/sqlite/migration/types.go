package migration

import (
	"context"
	"time"
)

// Migration is one versioned script.
type Migration struct {
	Version     string // "0001"
	Description string // "create kv entries"
	SQL         string
	FilePath    string // path inside the source filesystem
	Checksum    string // hex BLAKE2b-256 of SQL
}

// Executor is the database side of a Manager.
type Executor interface {
	ExecuteMigration(ctx context.Context, migration Migration) error
	InitializeVersionTable(ctx context.Context) error
	RecordMigration(ctx context.Context, migration Migration, executionTime time.Duration) error
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}

// Status summarizes applied and pending scripts.
type Status struct {
	CurrentVersion    string
	PendingCount      int
	AppliedMigrations []AppliedMigration
	PendingMigrations []Migration
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

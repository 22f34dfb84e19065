package migration

import (
	"errors"
	"fmt"
)

// Sentinels wrapped by MigrationError.
var (
	ErrMigrationFailed      = errors.New("migration: execution failed")
	ErrInvalidMigrationFile = errors.New("migration: invalid script")
	ErrDuplicateVersion     = errors.New("migration: duplicate version")
	ErrChecksumMismatch     = errors.New("migration: checksum mismatch") // applied script was edited
)

// MigrationError ties a failure to the script it occurred in.
type MigrationError struct {
	Version   string
	FilePath  string
	Operation string
	Err       error
}

func (e *MigrationError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("migration %s: %s: %v", e.FilePath, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration %s (%s): %s: %v", e.Version, e.FilePath, e.Operation, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

func NewMigrationError(version, filePath, operation string, err error) *MigrationError {
	return &MigrationError{Version: version, FilePath: filePath, Operation: operation, Err: err}
}

// DatabaseError reports a failed statement against the schema_migrations
// bookkeeping or a script statement.
type DatabaseError struct {
	Version   string
	Query     string
	Operation string
	Err       error
}

func (e *DatabaseError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("migration database: %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("migration database %s: %s: %v", e.Version, e.Operation, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

func NewDatabaseError(version, query, operation string, err error) *DatabaseError {
	return &DatabaseError{Version: version, Query: query, Operation: operation, Err: err}
}

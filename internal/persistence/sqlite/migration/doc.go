// Package migration applies versioned SQL scripts to a SQLite database.
//
// Scripts are read from an fs.FS (usually an embedded directory) and must be
// named {version}_{description}.sql, e.g. "0001_create_kv_entries.sql".
// Applied versions are tracked in the schema_migrations table together with a
// BLAKE2b-256 checksum of the script so that edited scripts are detected.
//
// Example usage:
//
//	migrations, err := migration.Load(embedded, "migrations")
//	manager := migration.NewManager(migration.NewSQLiteExecutor(db), migrations, logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration

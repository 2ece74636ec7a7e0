// Package migration applies versioned SQL files to a SQLite database.
//
// Migration files follow the naming convention {version}_{description}.sql
// (e.g. "001_create_users.sql") and are read from an fs.FS, usually an
// embedded directory. Each file runs in its own transaction and is recorded
// in a schema_migrations table so it is applied at most once.
//
// Example usage:
//
//	manager := migration.NewManager(migration.NewScanner(files, "migrations"), migration.NewSQLiteExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration

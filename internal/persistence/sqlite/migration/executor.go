package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteExecutor applies migrations to a SQLite database.
type SQLiteExecutor struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteExecutor creates a SQLite migration executor.
func NewSQLiteExecutor(db *sql.DB) *SQLiteExecutor {
	return &SQLiteExecutor{db: db, now: time.Now}
}

// InitializeVersionTable creates schema_migrations if it does not exist.
func (e *SQLiteExecutor) InitializeVersionTable(ctx context.Context) error {
	const createTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT,
			execution_time_ms INTEGER
		)`
	if _, err := e.db.ExecContext(ctx, createTableSQL); err != nil {
		return NewDatabaseError("", "create schema_migrations table", err)
	}
	return nil
}

// ExecuteMigration runs every statement of migration in one transaction.
func (e *SQLiteExecutor) ExecuteMigration(ctx context.Context, migration Migration) (err error) {
	statements := splitStatements(migration.SQL)
	if len(statements) == 0 {
		return NewMigrationError(migration.Version, migration.FilePath, "parse SQL",
			fmt.Errorf("%w: no SQL statements found", ErrInvalidMigrationFile))
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return NewDatabaseError(migration.Version, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback error: %v)", err, rbErr)
			}
		}
	}()

	for i, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return NewDatabaseError(migration.Version, fmt.Sprintf("execute statement %d", i+1), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return NewDatabaseError(migration.Version, "commit transaction", err)
	}
	return nil
}

// RecordMigration stores a successful migration in schema_migrations.
func (e *SQLiteExecutor) RecordMigration(ctx context.Context, migration Migration, executionTime time.Duration) error {
	const insertSQL = `
		INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms)
		VALUES (?, ?, ?, ?)`
	appliedAt := e.now().UTC().Format(time.RFC3339Nano)
	if _, err := e.db.ExecContext(ctx, insertSQL, migration.Version, appliedAt, migration.Checksum, executionTime.Milliseconds()); err != nil {
		return NewDatabaseError(migration.Version, "record migration", err)
	}
	return nil
}

// GetAppliedVersions returns the applied migrations in version order.
func (e *SQLiteExecutor) GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error) {
	const querySQL = `
		SELECT version, applied_at, COALESCE(execution_time_ms, 0), COALESCE(checksum, '')
		FROM schema_migrations
		ORDER BY CAST(version AS INTEGER) ASC`

	rows, err := e.db.QueryContext(ctx, querySQL)
	if err != nil {
		return nil, NewDatabaseError("", "get applied versions", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			record    AppliedMigration
			appliedAt string
			ms        int64
		)
		if err := rows.Scan(&record.Version, &appliedAt, &ms, &record.Checksum); err != nil {
			return nil, NewDatabaseError("", "scan applied migration", err)
		}
		if record.AppliedAt, err = time.Parse(time.RFC3339Nano, appliedAt); err != nil {
			return nil, NewDatabaseError(record.Version, "parse applied_at", err)
		}
		record.ExecutionTime = time.Duration(ms) * time.Millisecond
		applied = append(applied, record)
	}
	if err := rows.Err(); err != nil {
		return nil, NewDatabaseError("", "iterate applied migrations", err)
	}
	return applied, nil
}

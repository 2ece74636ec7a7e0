package migration

import (
	"context"
	"time"
)

// Migration is one versioned SQL file.
type Migration struct {
	Version     string // numeric prefix, e.g. "001"
	Description string // from the filename or a leading "-- Description:" comment
	SQL         string
	FilePath    string
	Checksum    string
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Status summarises what has been applied and what is pending.
type Status struct {
	CurrentVersion string
	Applied        []AppliedMigration
	Pending        []Migration
}

// Source lists the available migrations.
type Source interface {
	ScanMigrations() ([]Migration, error)
}

// Executor applies migrations and tracks them.
type Executor interface {
	InitializeVersionTable(ctx context.Context) error
	ExecuteMigration(ctx context.Context, migration Migration) error
	RecordMigration(ctx context.Context, migration Migration, executionTime time.Duration) error
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}

package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Manager runs pending migrations in version order.
type Manager struct {
	source   Source
	executor Executor
	logger   *slog.Logger
}

// NewManager creates a Manager.
func NewManager(source Source, executor Executor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{source: source, executor: executor, logger: logger.With("component", "migration")}
}

// RunMigrations applies every pending migration. Applied files whose
// checksum changed are reported and stop the run.
func (m *Manager) RunMigrations(ctx context.Context) error {
	start := time.Now()

	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "schema version", "current_version", status.CurrentVersion, "pending", len(status.Pending))

	for i, migration := range status.Pending {
		migrationStart := time.Now()
		logger := m.logger.With("version", migration.Version, "description", migration.Description, "file", migration.FilePath)
		logger.InfoContext(ctx, "applying migration", "position", i+1, "total", len(status.Pending))

		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return NewMigrationError(migration.Version, migration.FilePath, "execute migration", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}

		elapsed := time.Since(migrationStart)
		if err := m.executor.RecordMigration(ctx, migration, elapsed); err != nil {
			return NewMigrationError(migration.Version, migration.FilePath, "record migration", err)
		}
		logger.InfoContext(ctx, "migration applied", "duration", elapsed)
	}

	if len(status.Pending) > 0 {
		m.logger.InfoContext(ctx, "migrations complete", "applied", len(status.Pending), "duration", time.Since(start))
	}
	return nil
}

// Status compares the available files with schema_migrations.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	available, err := m.source.ScanMigrations()
	if err != nil {
		return Status{}, fmt.Errorf("failed to scan migrations: %w", err)
	}
	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to get applied versions: %w", err)
	}

	appliedByVersion := make(map[string]AppliedMigration, len(applied))
	for _, record := range applied {
		appliedByVersion[record.Version] = record
	}

	status := Status{Applied: applied}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}
	for _, migration := range available {
		record, ok := appliedByVersion[migration.Version]
		if !ok {
			status.Pending = append(status.Pending, migration)
			continue
		}
		if record.Checksum != "" && migration.Checksum != "" && record.Checksum != migration.Checksum {
			return Status{}, NewMigrationError(migration.Version, migration.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}
	return status, nil
}

// Package sqlite implements persistence.Store on SQLite through the
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/placement-portal/internal/persistence"
	"github.com/example/placement-portal/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage is a SQLite backed persistence.Store.
type Storage struct {
	*UserRepository
	*JobRepository
	*ApplicationRepository
	*MessageRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

var _ persistence.Store = (*Storage)(nil)

// Open connects to the database named by dsn with the default settings.
func Open(dsn string, logger *slog.Logger) (*Storage, error) {
	return OpenWithConfig(migration.DefaultSQLiteConfig(dsn), logger)
}

// OpenWithConfig connects using config.
func OpenWithConfig(config migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		UserRepository:        NewUserRepository(pool),
		JobRepository:         NewJobRepository(pool),
		ApplicationRepository: NewApplicationRepository(pool),
		MessageRepository:     NewMessageRepository(pool),
		pool:                  pool,
		logger:                logger,
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewManager(
		migration.NewScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		s.logger,
	)
	return manager.RunMigrations(ctx)
}

// Ping checks the connection.
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

package migration

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteConfig holds connection settings.
type SQLiteConfig struct {
	// DSN is a file path, a "file:" URI or ":memory:".
	DSN               string
	BusyTimeout       time.Duration
	EnableForeignKeys bool
	// JournalMode is one of DELETE, TRUNCATE, PERSIST, MEMORY, WAL, OFF.
	JournalMode     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultSQLiteConfig returns the production settings for dsn.
func DefaultSQLiteConfig(dsn string) SQLiteConfig {
	return SQLiteConfig{
		DSN:               dsn,
		BusyTimeout:       5 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "WAL",
		MaxOpenConns:      8,
		MaxIdleConns:      4,
		ConnMaxLifetime:   5 * time.Minute,
	}
}

// InMemoryTestSQLiteConfig returns settings for a private in-memory database.
// A single connection keeps every query on the same database.
func InMemoryTestSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		DSN:               ":memory:",
		BusyTimeout:       time.Second,
		EnableForeignKeys: true,
		JournalMode:       "MEMORY",
		MaxOpenConns:      1,
		MaxIdleConns:      1,
	}
}

// Validate checks the configuration.
func (c SQLiteConfig) Validate() error {
	if strings.TrimSpace(c.DSN) == "" {
		return fmt.Errorf("DSN cannot be empty")
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("BusyTimeout cannot be negative")
	}
	switch strings.ToUpper(c.JournalMode) {
	case "", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "WAL", "OFF":
	default:
		return fmt.Errorf("invalid journal mode: %s", c.JournalMode)
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 || c.ConnMaxLifetime < 0 {
		return fmt.Errorf("connection pool settings cannot be negative")
	}
	return nil
}

// Open validates the configuration and returns a pinged connection pool.
// Pragmas are passed through the DSN so every pooled connection gets them.
func Open(config SQLiteConfig) (*sql.DB, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SQLite configuration: %w", err)
	}
	if err := ensureDirectory(config.DSN); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", config.connectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return db, nil
}

func (c SQLiteConfig) connectionString() string {
	pragmas := url.Values{}
	if c.BusyTimeout > 0 {
		pragmas.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	}
	if c.EnableForeignKeys {
		pragmas.Add("_pragma", "foreign_keys(1)")
	}
	if c.JournalMode != "" {
		pragmas.Add("_pragma", fmt.Sprintf("journal_mode(%s)", strings.ToUpper(c.JournalMode)))
	}

	dsn := c.DSN
	if len(pragmas) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + pragmas.Encode()
}

// ensureDirectory creates the parent directory of a file database.
func ensureDirectory(dsn string) error {
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	filePath := strings.TrimPrefix(dsn, "file:")
	if i := strings.Index(filePath, "?"); i >= 0 {
		filePath = filePath[:i]
	}
	dir := filepath.Dir(filePath)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

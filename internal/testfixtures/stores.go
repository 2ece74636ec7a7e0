package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/placement-portal/internal/persistence"
	"github.com/example/placement-portal/internal/persistence/memory"
	"github.com/example/placement-portal/internal/persistence/sqlite"
)

// StoreOpener returns a fresh, migrated store owned by tb.
type StoreOpener func(tb testing.TB) persistence.Store

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(tb testing.TB) persistence.Store {
	tb.Helper()
	return memory.New()
}

// NewSQLiteStore opens a migrated SQLite database in a temporary directory.
// The store is closed when tb finishes.
func NewSQLiteStore(tb testing.TB) persistence.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "placement.db")
	storage, err := sqlite.Open(path, DiscardLogger())
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	tb.Cleanup(func() { _ = storage.Close() })
	return storage
}

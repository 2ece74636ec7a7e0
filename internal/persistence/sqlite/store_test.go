package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/example/placement-portal/internal/persistence"
	"github.com/example/placement-portal/internal/persistence/sqlite"
	"github.com/example/placement-portal/internal/persistence/sqlite/migration"
	"github.com/example/placement-portal/internal/testfixtures"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "placement.db")

	storage, err := sqlite.Open(path, testfixtures.DiscardLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer storage.Close()

	for i := 0; i < 2; i++ {
		if err := storage.Migrate(ctx); err != nil {
			t.Fatalf("Migrate run %d failed: %v", i+1, err)
		}
	}
	if err := storage.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "placement.db")

	first, err := sqlite.Open(path, testfixtures.DiscardLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	job := testfixtures.NewJobFixture(testfixtures.WithJobID("j-1"), testfixtures.WithBranches("CSE", "IT")).Persistence()
	if err := first.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := sqlite.Open(path, testfixtures.DiscardLogger())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()
	if err := second.Migrate(ctx); err != nil {
		t.Fatalf("Migrate after reopen failed: %v", err)
	}

	stored, err := second.GetJob(ctx, "j-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if len(stored.Branches) != 2 || stored.Branches[1] != "IT" {
		t.Fatalf("branches = %v", stored.Branches)
	}
}

func TestInMemoryConfigRejectsInvalidStatus(t *testing.T) {
	ctx := context.Background()
	storage, err := sqlite.OpenWithConfig(migration.InMemoryTestSQLiteConfig(), testfixtures.DiscardLogger())
	if err != nil {
		t.Fatalf("OpenWithConfig failed: %v", err)
	}
	defer storage.Close()
	if err := storage.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	app := testfixtures.NewApplicationFixture("s-1", "j-1").Persistence()
	app.Status = "withdrawn"
	if err := storage.CreateApplication(ctx, app); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

package persistence_test

import (
	"testing"

	"github.com/example/placement-portal/internal/testfixtures"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	testfixtures.RunStoreContract(t, testfixtures.NewMemoryStore)
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()
	testfixtures.RunStoreContract(t, testfixtures.NewSQLiteStore)
}

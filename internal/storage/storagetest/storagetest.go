// Package storagetest opens throwaway in-memory databases for tests.
package storagetest

import (
	"testing"

	"github.com/claude/liftlog/internal/storage"
)

// New returns a migrated in-memory database that is closed when the test
// finishes.
func New(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db
}

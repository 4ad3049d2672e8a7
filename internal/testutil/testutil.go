// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"researchnest/internal/database"
)

// NewDB opens a migrated SQLite database in t's temp dir
func NewDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

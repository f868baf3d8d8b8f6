package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jbweber/homelab/gamestore/internal/datastore"
	"github.com/jbweber/homelab/gamestore/internal/migrations"
)

// FixedTime is a stable clock value for tests that assert timestamps.
var FixedTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// SetupTestDB opens an empty test database closed at test cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", NewTestDSN(t))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	return db
}

// SetupTestDBWithMigrations opens a test database with the full schema and
// seed data applied.
func SetupTestDBWithMigrations(t *testing.T) *sql.DB {
	t.Helper()

	db := SetupTestDB(t)
	if err := migrations.NewDefaultMigrator(db).RunMigrations(context.Background()); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// SetupTestDatastore wraps a migrated test database in a Datastore.
func SetupTestDatastore(t *testing.T) *datastore.Datastore {
	t.Helper()
	return datastore.New(SetupTestDBWithMigrations(t))
}

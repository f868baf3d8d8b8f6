package testutil

import (
	"context"
	"testing"
)

func TestSetupTestDB(t *testing.T) {
	db := SetupTestDB(t)

	if db == nil {
		t.Fatal("Expected non-nil database")
	}

	if err := db.Ping(); err != nil {
		t.Errorf("Database ping failed: %v", err)
	}

	var fkEnabled bool
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		t.Fatalf("Failed to read foreign_keys pragma: %v", err)
	}
	if !fkEnabled {
		t.Error("Expected foreign keys to be enabled")
	}
}

func TestSetupTestDBWithMigrations(t *testing.T) {
	db := SetupTestDBWithMigrations(t)

	tables := []string{"schema_migrations", "genres", "platforms", "games", "users", "orders", "order_items", "reviews"}
	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Errorf("Error checking for table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("Expected table %s to exist", table)
		}
	}
}

func TestSetupTestDB_MultipleInstances(t *testing.T) {
	first := SetupTestDB(t)
	second := SetupTestDB(t)

	if _, err := first.Exec("CREATE TABLE only_here (id INTEGER)"); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	var count int
	if err := second.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name='only_here'").Scan(&count); err != nil {
		t.Fatalf("Failed to query second database: %v", err)
	}
	if count != 0 {
		t.Error("Expected test databases to be isolated")
	}
}

func TestSetupTestDatastore(t *testing.T) {
	ds := SetupTestDatastore(t)
	if err := ds.Health(context.Background()); err != nil {
		t.Fatalf("Expected healthy datastore: %v", err)
	}
}

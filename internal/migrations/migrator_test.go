package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Logf("Warning: failed to close test database: %v", closeErr)
		}
	})
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestMigrator_RunMigrations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	migrator := NewDefaultMigrator(db)
	require.NoError(t, migrator.RunMigrations(ctx))

	version, err := migrator.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20), version)

	for _, table := range []string{"schema_migrations", "genres", "platforms", "games", "users", "orders", "order_items", "reviews"} {
		assert.True(t, tableExists(t, db, table), "expected table %s", table)
	}

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM genres").Scan(&count))
	assert.Equal(t, 5, count)
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM platforms").Scan(&count))
	assert.Equal(t, 4, count)

	var title string
	require.NoError(t, db.QueryRow("SELECT title FROM games WHERE genre_id = 4 AND platform_id = 1").Scan(&title))
	assert.Equal(t, "Dota 2", title)

	// Running again is a no-op.
	require.NoError(t, migrator.RunMigrations(ctx))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 4, count)
}

func TestMigrator_SchemaConstraints(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewDefaultMigrator(db).RunMigrations(ctx))

	_, err := db.Exec(`INSERT INTO users (username, email, password_hash, first_name, last_name, created_at)
		VALUES ('neo', 'neo@example.com', 'x', 'Thomas', 'Anderson', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	t.Run("RejectRatingOutOfRange", func(t *testing.T) {
		_, err := db.Exec("INSERT INTO reviews (rating, user_id, game_id, created_at) VALUES (6, 1, 1, CURRENT_TIMESTAMP)")
		assert.Error(t, err)
	})

	t.Run("RejectSecondReviewBySameUser", func(t *testing.T) {
		_, err := db.Exec("INSERT INTO reviews (rating, user_id, game_id, created_at) VALUES (4, 1, 1, CURRENT_TIMESTAMP)")
		require.NoError(t, err)
		_, err = db.Exec("INSERT INTO reviews (rating, user_id, game_id, created_at) VALUES (5, 1, 1, CURRENT_TIMESTAMP)")
		assert.Error(t, err)
	})

	t.Run("CompareEmailsCaseInsensitively", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO users (username, email, password_hash, first_name, last_name, created_at)
			VALUES ('neo2', 'NEO@example.com', 'x', 'T', 'A', CURRENT_TIMESTAMP)`)
		assert.Error(t, err)
	})

	t.Run("RestrictDeletingAReferencedGenre", func(t *testing.T) {
		_, err := db.Exec("DELETE FROM genres WHERE id = 4")
		assert.Error(t, err)
	})

	t.Run("CascadeGameDeleteToReviews", func(t *testing.T) {
		_, err := db.Exec("DELETE FROM games WHERE id = 1")
		require.NoError(t, err)
		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM reviews").Scan(&count))
		assert.Zero(t, count)
	})
}

func TestMigrator_AddMigration(t *testing.T) {
	db := openTestDB(t)

	migrator := NewMigrator(db)

	migrator.AddMigration(Migration{Version: 3, Name: "third"})
	migrator.AddMigration(Migration{Version: 1, Name: "first"})
	migrator.AddMigration(Migration{Version: 2, Name: "second"})

	migrations := migrator.GetMigrations()
	assert.Equal(t, int64(1), migrations[0].Version)
	assert.Equal(t, int64(2), migrations[1].Version)
	assert.Equal(t, int64(3), migrations[2].Version)
}

func TestMigrator_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	migrator := NewMigrator(db)
	migrator.AddMigration(Migration{
		Version: 1,
		Name:    "broken",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, "CREATE TABLE half_done (id INTEGER)"); err != nil {
				return err
			}
			return errors.New("boom")
		},
	})

	err := migrator.RunMigrations(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	version, err := migrator.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, tableExists(t, db, "half_done"))
}

func TestMigrator_RollbackLast(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	migrator := NewDefaultMigrator(db)
	require.NoError(t, migrator.RunMigrations(ctx))

	require.NoError(t, migrator.RollbackLast(ctx))
	version, err := migrator.GetCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), version)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM genres").Scan(&count))
	assert.Zero(t, count)

	// Re-applying restores the seed.
	require.NoError(t, migrator.RunMigrations(ctx))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM genres").Scan(&count))
	assert.Equal(t, 5, count)
}

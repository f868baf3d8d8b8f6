package migrations

import (
	"context"
	"database/sql"
	"time"
)

var seedTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// GetSeedMigrations returns the reference data every store starts with.
func GetSeedMigrations() []Migration {
	return []Migration{
		{
			Version: 20,
			Name:    "seed_reference_data",
			Up: func(ctx context.Context, tx *sql.Tx) error {
				genres := [][2]string{
					{"Action", "Fast-paced games with combat and challenges"},
					{"Adventure", "Story-driven exploration games"},
					{"RPG", "Role-playing games with character progression"},
					{"Strategy", "Tactical and strategic thinking games"},
					{"Sports", "Athletic and sports simulation games"},
				}
				for i, g := range genres {
					if _, err := tx.ExecContext(ctx,
						"INSERT INTO genres (id, name, description, created_at) VALUES (?, ?, ?, ?)",
						i+1, g[0], g[1], seedTime); err != nil {
						return err
					}
				}

				platforms := [][2]string{
					{"PC", "Windows, Linux, and Mac computers"},
					{"PlayStation 5", "Sony's latest gaming console"},
					{"Xbox Series X", "Microsoft's latest gaming console"},
					{"Nintendo Switch", "Nintendo's hybrid gaming console"},
				}
				for i, p := range platforms {
					if _, err := tx.ExecContext(ctx,
						"INSERT INTO platforms (id, name, description, created_at) VALUES (?, ?, ?, ?)",
						i+1, p[0], p[1], seedTime); err != nil {
						return err
					}
				}

				_, err := tx.ExecContext(ctx, `
					INSERT INTO games (id, title, description, price, release_date, image_url, is_active, created_at, updated_at, genre_id, platform_id)
					VALUES (1, ?, ?, 0, ?, ?, 1, ?, ?, 4, 1)`,
					"Dota 2",
					"A multiplayer online battle arena (MOBA) game developed by Valve.",
					time.Date(2013, 7, 9, 0, 0, 0, 0, time.UTC),
					"https://dota2.com/dota2.jpg",
					seedTime, seedTime)
				return err
			},
			Down: func(ctx context.Context, tx *sql.Tx) error {
				return execAll(ctx, tx, []string{
					"DELETE FROM games WHERE id = 1",
					"DELETE FROM platforms WHERE id BETWEEN 1 AND 4",
					"DELETE FROM genres WHERE id BETWEEN 1 AND 5",
				})
			},
		},
	}
}

package migrations

import (
	"context"
	"database/sql"
)

// GetPerformanceMigrations returns index migrations for the hot query paths.
func GetPerformanceMigrations() []Migration {
	return []Migration{
		{
			Version: 10,
			Name:    "add_performance_indices",
			Up: func(ctx context.Context, tx *sql.Tx) error {
				return execAll(ctx, tx, []string{
					"CREATE INDEX IF NOT EXISTS idx_games_genre_id ON games(genre_id)",
					"CREATE INDEX IF NOT EXISTS idx_games_platform_id ON games(platform_id)",
					"CREATE INDEX IF NOT EXISTS idx_games_active_title ON games(is_active, title)",
					"CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id)",
					"CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)",
					"CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)",
					"CREATE INDEX IF NOT EXISTS idx_order_items_game_id ON order_items(game_id)",
					"CREATE INDEX IF NOT EXISTS idx_reviews_game_id ON reviews(game_id)",
				})
			},
			Down: func(ctx context.Context, tx *sql.Tx) error {
				return execAll(ctx, tx, []string{
					"DROP INDEX IF EXISTS idx_games_genre_id",
					"DROP INDEX IF EXISTS idx_games_platform_id",
					"DROP INDEX IF EXISTS idx_games_active_title",
					"DROP INDEX IF EXISTS idx_orders_user_id",
					"DROP INDEX IF EXISTS idx_orders_status",
					"DROP INDEX IF EXISTS idx_order_items_order_id",
					"DROP INDEX IF EXISTS idx_order_items_game_id",
					"DROP INDEX IF EXISTS idx_reviews_game_id",
				})
			},
		},
	}
}

package migrations

import (
	"context"
	"database/sql"
)

// GetInitialMigrations returns the table-creating migrations.
func GetInitialMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_catalog_tables",
			Up: func(ctx context.Context, tx *sql.Tx) error {
				return execAll(ctx, tx, []string{
					`CREATE TABLE genres (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						name TEXT NOT NULL UNIQUE CHECK (length(name) <= 50),
						description TEXT CHECK (length(description) <= 500),
						created_at DATETIME NOT NULL
					)`,
					`CREATE TABLE platforms (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						name TEXT NOT NULL UNIQUE CHECK (length(name) <= 50),
						description TEXT CHECK (length(description) <= 500),
						created_at DATETIME NOT NULL
					)`,
					// price is NUMERIC so range filters compare numerically
					`CREATE TABLE games (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						title TEXT NOT NULL UNIQUE CHECK (length(title) <= 200),
						description TEXT CHECK (length(description) <= 2000),
						price NUMERIC NOT NULL CHECK (price >= 0),
						release_date DATETIME NOT NULL,
						image_url TEXT CHECK (length(image_url) <= 500),
						is_active INTEGER NOT NULL DEFAULT 1,
						created_at DATETIME NOT NULL,
						updated_at DATETIME,
						genre_id INTEGER NOT NULL,
						platform_id INTEGER NOT NULL,
						FOREIGN KEY (genre_id) REFERENCES genres(id) ON DELETE RESTRICT,
						FOREIGN KEY (platform_id) REFERENCES platforms(id) ON DELETE RESTRICT
					)`,
				})
			},
			Down: func(ctx context.Context, tx *sql.Tx) error {
				return execAll(ctx, tx, []string{
					"DROP TABLE IF EXISTS games",
					"DROP TABLE IF EXISTS platforms",
					"DROP TABLE IF EXISTS genres",
				})
			},
		},
		{
			Version: 2,
			Name:    "create_user_order_tables",
			Up: func(ctx context.Context, tx *sql.Tx) error {
				return execAll(ctx, tx, []string{
					`CREATE TABLE users (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						username TEXT NOT NULL UNIQUE CHECK (length(username) <= 50),
						email TEXT NOT NULL UNIQUE COLLATE NOCASE CHECK (length(email) <= 100),
						password_hash TEXT NOT NULL,
						first_name TEXT NOT NULL CHECK (length(first_name) <= 50),
						last_name TEXT NOT NULL CHECK (length(last_name) <= 50),
						created_at DATETIME NOT NULL,
						updated_at DATETIME
					)`,
					`CREATE TABLE orders (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						order_number TEXT NOT NULL UNIQUE CHECK (length(order_number) <= 50),
						order_date DATETIME NOT NULL,
						total_amount NUMERIC NOT NULL CHECK (total_amount >= 0),
						status INTEGER NOT NULL DEFAULT 0,
						notes TEXT CHECK (length(notes) <= 500),
						user_id INTEGER NOT NULL,
						created_at DATETIME NOT NULL,
						updated_at DATETIME,
						FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE RESTRICT
					)`,
					`CREATE TABLE order_items (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						quantity INTEGER NOT NULL CHECK (quantity >= 1),
						unit_price NUMERIC NOT NULL,
						total_price NUMERIC NOT NULL,
						order_id INTEGER NOT NULL,
						game_id INTEGER NOT NULL,
						created_at DATETIME NOT NULL,
						FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
						FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
					)`,
					`CREATE TABLE reviews (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
						comment TEXT CHECK (length(comment) <= 2000),
						user_id INTEGER NOT NULL,
						game_id INTEGER NOT NULL,
						created_at DATETIME NOT NULL,
						updated_at DATETIME,
						UNIQUE (user_id, game_id),
						FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
						FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
					)`,
				})
			},
			Down: func(ctx context.Context, tx *sql.Tx) error {
				return execAll(ctx, tx, []string{
					"DROP TABLE IF EXISTS reviews",
					"DROP TABLE IF EXISTS order_items",
					"DROP TABLE IF EXISTS orders",
					"DROP TABLE IF EXISTS users",
				})
			},
		},
	}
}

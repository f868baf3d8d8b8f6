package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// DefaultStatementCacheSize bounds the prepared statement cache.
const DefaultStatementCacheSize = 128

// Datastore owns the shared connection pool and its statement cache.
// Units of work borrow it; they never close it.
type Datastore struct {
	DB         *sql.DB
	statements *StatementCache
}

// New wraps an open database.
func New(db *sql.DB) *Datastore {
	return &Datastore{
		DB:         db,
		statements: NewStatementCache(db, DefaultStatementCacheSize),
	}
}

// Open opens a sqlite database from a DSN and wraps it.
func Open(ctx context.Context, dsn string) (*Datastore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db), nil
}

// Query runs a read through the statement cache.
func (ds *Datastore) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	stmt, cached, err := ds.statements.Get(ctx, query)
	if err != nil {
		return nil, err
	}
	if cached {
		rows, err := stmt.QueryContext(ctx, args...)
		if err != nil && ctx.Err() == nil {
			// A statement that stops working, e.g. after a migration drops
			// its table, is prepared again on next use.
			_ = ds.statements.Clear(query)
		}
		return rows, err
	}
	// Rows keep working after the statement is closed; closing is deferred
	// by database/sql until the rows are released.
	rows, err := stmt.QueryContext(ctx, args...)
	if closeErr := stmt.Close(); closeErr != nil && err == nil {
		_ = rows.Close()
		return nil, closeErr
	}
	return rows, err
}

// CachedStatements reports the number of prepared statements held.
func (ds *Datastore) CachedStatements() int {
	return ds.statements.Size()
}

// Health checks that the database answers.
func (ds *Datastore) Health(ctx context.Context) error {
	var one int
	if err := ds.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Close releases cached statements and the pool.
func (ds *Datastore) Close() error {
	return errors.Join(ds.statements.Close(), ds.DB.Close())
}

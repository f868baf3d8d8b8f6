package datastore

import (
	"context"
	"database/sql"
	"sync"
)

// StatementCache caches prepared statements by query text.
type StatementCache struct {
	mu         sync.RWMutex
	statements map[string]*sql.Stmt
	db         *sql.DB
	maxSize    int
}

// NewStatementCache creates a cache holding at most maxSize statements.
// A non-positive maxSize means unbounded.
func NewStatementCache(db *sql.DB, maxSize int) *StatementCache {
	return &StatementCache{
		statements: make(map[string]*sql.Stmt),
		db:         db,
		maxSize:    maxSize,
	}
}

// Get returns the cached statement for query, preparing it on first use.
// The second return value is false when the cache is full and the caller
// owns (and must close) the returned statement.
func (c *StatementCache) Get(ctx context.Context, query string) (*sql.Stmt, bool, error) {
	c.mu.RLock()
	if stmt, ok := c.statements[query]; ok {
		c.mu.RUnlock()
		return stmt, true, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if stmt, ok := c.statements[query]; ok {
		return stmt, true, nil
	}

	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, false, err
	}

	if c.maxSize > 0 && len(c.statements) >= c.maxSize {
		return stmt, false, nil
	}

	c.statements[query] = stmt
	return stmt, true, nil
}

// Close closes all prepared statements and clears the cache
func (c *StatementCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for _, stmt := range c.statements {
		if err := stmt.Close(); err != nil {
			lastErr = err
		}
	}

	c.statements = make(map[string]*sql.Stmt)
	return lastErr
}

// Clear removes a specific prepared statement from cache
func (c *StatementCache) Clear(query string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if stmt, ok := c.statements[query]; ok {
		delete(c.statements, query)
		return stmt.Close()
	}

	return nil
}

// Size returns the number of cached prepared statements
func (c *StatementCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.statements)
}

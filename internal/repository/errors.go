package repository

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Common repository errors that can be checked with errors.Is()
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a write violates a uniqueness constraint
	ErrDuplicate = errors.New("entity already exists")

	// ErrConstraint is returned when a write violates a foreign key or check constraint
	ErrConstraint = errors.New("constraint violation")

	// ErrInvalidEntity is returned when an entity cannot be staged
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInvalidArgument is returned for out-of-range paging or blank lookup keys
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTransactionActive is returned when a transaction is already open
	ErrTransactionActive = errors.New("transaction already started")

	// ErrUnknownRelation is returned when a relation name cannot be resolved
	ErrUnknownRelation = errors.New("unknown relation")

	// ErrClosed is returned when a unit of work is used after Close
	ErrClosed = errors.New("unit of work is closed")
)

// translateError maps sqlite constraint failures onto the sentinels above.
func translateError(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	code := sqliteErr.Code()
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	if code&0xff == sqlite3.SQLITE_CONSTRAINT {
		if strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %w", ErrDuplicate, err)
		}
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}
	return err
}

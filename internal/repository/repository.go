package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

// MaxPageSize is the largest page GetPaged will return.
const MaxPageSize = 100

// Predicate is a composable row filter, e.g. squirrel.Eq{"is_active": true}.
// A nil Predicate matches every row.
type Predicate = sq.Sqlizer

// And folds the non-nil predicates into a conjunction. It returns nil when
// every predicate is nil.
func And(preds ...Predicate) Predicate {
	var parts sq.And
	for _, p := range preds {
		if p != nil {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return parts[0]
	default:
		return parts
	}
}

// PageRequest selects one page of a filtered, ordered set.
type PageRequest struct {
	PageNumber int       // 1-based
	PageSize   int       // 1 to MaxPageSize
	Filter     Predicate // nil for all rows
	OrderBy    []string  // SQL order terms; defaults to "id"
}

// Repository defines the data access operations shared by every entity.
// Writes are staged and reach the store at UnitOfWork.SaveChanges.
type Repository[T any] interface {
	// GetByID returns ErrNotFound if the entity doesn't exist
	GetByID(ctx context.Context, id int64) (*T, error)

	// GetAll returns every entity in insertion order
	GetAll(ctx context.Context) ([]*T, error)

	Find(ctx context.Context, pred Predicate) ([]*T, error)

	// FirstOrDefault returns nil without error when nothing matches
	FirstOrDefault(ctx context.Context, pred Predicate) (*T, error)

	Exists(ctx context.Context, pred Predicate) (bool, error)

	Count(ctx context.Context, pred Predicate) (int, error)

	// GetPaged returns the requested page and the filtered total.
	// It returns ErrInvalidArgument before touching the store when the page
	// number is below 1 or the page size is outside [1, MaxPageSize].
	GetPaged(ctx context.Context, req PageRequest) ([]*T, int, error)

	// Add stages an insert; the entity's ID is set at SaveChanges
	Add(ctx context.Context, entity *T) (*T, error)

	// Update stages a full-row replace of the entity
	Update(ctx context.Context, entity *T) error

	// Delete stages removal of a loaded entity
	Delete(ctx context.Context, entity *T) error

	// DeleteByID loads and stages removal; a missing id is a no-op
	DeleteByID(ctx context.Context, id int64) error

	// GetByIDWithRelations loads the entity plus the named relations,
	// e.g. "genre" or "reviews.user"
	GetByIDWithRelations(ctx context.Context, id int64, relations ...string) (*T, error)

	GetAllWithRelations(ctx context.Context, relations ...string) ([]*T, error)
}

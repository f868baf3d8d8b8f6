package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// sqlRepository implements Repository for any mapped entity on top of a
// Session.
type sqlRepository[T any] struct {
	session *Session
	m       *entityMapping[T]
}

func newSQLRepository[T any](s *Session, m *entityMapping[T]) *sqlRepository[T] {
	return &sqlRepository[T]{session: s, m: m}
}

func (r *sqlRepository[T]) list(ctx context.Context, b sq.SelectBuilder, relations ...string) ([]*T, error) {
	if err := r.m.validateRelations(relations); err != nil {
		return nil, err
	}
	items, err := queryEntities(ctx, r.session, r.m, b, true)
	if err != nil {
		return nil, err
	}
	if err := includeRelations(ctx, r.session, r.m, items, relations); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *sqlRepository[T]) single(ctx context.Context, b sq.SelectBuilder, relations ...string) (*T, error) {
	items, err := r.list(ctx, b.Limit(1), relations...)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// GetByID retrieves an entity by its ID
func (r *sqlRepository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	return r.GetByIDWithRelations(ctx, id)
}

// GetByIDWithRelations retrieves an entity and the named relations
func (r *sqlRepository[T]) GetByIDWithRelations(ctx context.Context, id int64, relations ...string) (*T, error) {
	entity, err := r.single(ctx, r.m.selectBuilder().Where(sq.Eq{"id": id}), relations...)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", r.m.name, err)
	}
	if entity == nil {
		return nil, fmt.Errorf("%s with ID %d: %w", r.m.name, id, ErrNotFound)
	}
	return entity, nil
}

// GetAll retrieves all entities
func (r *sqlRepository[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.GetAllWithRelations(ctx)
}

// GetAllWithRelations retrieves all entities and the named relations
func (r *sqlRepository[T]) GetAllWithRelations(ctx context.Context, relations ...string) ([]*T, error) {
	items, err := r.list(ctx, r.m.selectBuilder().OrderBy("id"), relations...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.m.table, err)
	}
	return items, nil
}

// Find retrieves the entities matching pred
func (r *sqlRepository[T]) Find(ctx context.Context, pred Predicate) ([]*T, error) {
	items, err := r.list(ctx, r.m.selectBuilder().Where(pred).OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", r.m.table, err)
	}
	return items, nil
}

// FirstOrDefault retrieves the first entity matching pred, or nil
func (r *sqlRepository[T]) FirstOrDefault(ctx context.Context, pred Predicate) (*T, error) {
	entity, err := r.single(ctx, r.m.selectBuilder().Where(pred).OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", r.m.name, err)
	}
	return entity, nil
}

// Exists checks if any entity matches pred
func (r *sqlRepository[T]) Exists(ctx context.Context, pred Predicate) (bool, error) {
	var one int
	err := r.session.queryScalar(ctx, sq.Select("1").From(r.m.table).Where(pred).Limit(1), &one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", r.m.name, err)
	}
	return true, nil
}

// Count counts the entities matching pred; nil counts all
func (r *sqlRepository[T]) Count(ctx context.Context, pred Predicate) (int, error) {
	var count int
	if err := r.session.queryScalar(ctx, sq.Select("COUNT(*)").From(r.m.table).Where(pred), &count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.m.table, err)
	}
	return count, nil
}

// GetPaged retrieves one page of the filtered, ordered set and the filtered total
func (r *sqlRepository[T]) GetPaged(ctx context.Context, req PageRequest) ([]*T, int, error) {
	if err := validatePage(req.PageNumber, req.PageSize); err != nil {
		return nil, 0, err
	}

	total, err := r.Count(ctx, req.Filter)
	if err != nil {
		return nil, 0, err
	}

	items, err := r.list(ctx, pageQuery(r.m.selectBuilder().Where(req.Filter), req))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to page %s: %w", r.m.table, err)
	}
	return items, total, nil
}

func validatePage(pageNumber, pageSize int) error {
	if pageNumber < 1 {
		return fmt.Errorf("page number must be at least 1, got %d: %w", pageNumber, ErrInvalidArgument)
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return fmt.Errorf("page size must be between 1 and %d, got %d: %w", MaxPageSize, pageSize, ErrInvalidArgument)
	}
	return nil
}

func pageQuery(b sq.SelectBuilder, req PageRequest) sq.SelectBuilder {
	orderBy := req.OrderBy
	if len(orderBy) == 0 {
		orderBy = []string{"id"}
	}
	return b.OrderBy(orderBy...).
		Limit(uint64(req.PageSize)).
		Offset(uint64((req.PageNumber - 1) * req.PageSize))
}

// Add stages an insert
func (r *sqlRepository[T]) Add(ctx context.Context, entity *T) (*T, error) {
	if err := r.session.checkOpen(); err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, fmt.Errorf("cannot add nil %s: %w", r.m.name, ErrInvalidEntity)
	}
	if r.m.id(entity) != 0 {
		return nil, fmt.Errorf("%s with ID %d is already persisted: %w", r.m.name, r.m.id(entity), ErrInvalidEntity)
	}

	m := r.m
	r.session.stage(pendingChange{
		kind:   changeInsert,
		table:  m.table,
		target: entity,
		apply: func(ctx context.Context, tx *sql.Tx, now time.Time) (int64, error) {
			if m.onInsert != nil {
				m.onInsert(entity, now)
			}
			query, args, err := sq.Insert(m.table).Columns(m.writable()...).Values(m.values(entity)...).ToSql()
			if err != nil {
				return 0, err
			}
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return 0, translateError(err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return 0, err
			}
			m.setID(entity, id)
			return 1, nil
		},
		undo: func() { m.setID(entity, 0) },
	})
	return entity, nil
}

// Update stages a full-row replace
func (r *sqlRepository[T]) Update(ctx context.Context, entity *T) error {
	if err := r.session.checkOpen(); err != nil {
		return err
	}
	if entity == nil {
		return fmt.Errorf("cannot update nil %s: %w", r.m.name, ErrInvalidEntity)
	}
	if r.m.id(entity) == 0 {
		return fmt.Errorf("cannot update unsaved %s: %w", r.m.name, ErrInvalidEntity)
	}

	m := r.m
	r.session.stage(pendingChange{
		kind:   changeUpdate,
		table:  m.table,
		target: entity,
		apply: func(ctx context.Context, tx *sql.Tx, now time.Time) (int64, error) {
			if m.onUpdate != nil {
				m.onUpdate(entity, now)
			}
			set := make(map[string]any, len(m.writable()))
			values := m.values(entity)
			for i, col := range m.writable() {
				set[col] = values[i]
			}
			query, args, err := sq.Update(m.table).SetMap(set).Where(sq.Eq{"id": m.id(entity)}).ToSql()
			if err != nil {
				return 0, err
			}
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return 0, translateError(err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return 0, err
			}
			if n == 0 {
				return 0, fmt.Errorf("%s with ID %d: %w", m.name, m.id(entity), ErrNotFound)
			}
			return n, nil
		},
	})
	return nil
}

// Delete stages removal of entity
func (r *sqlRepository[T]) Delete(ctx context.Context, entity *T) error {
	if err := r.session.checkOpen(); err != nil {
		return err
	}
	if entity == nil || r.m.id(entity) == 0 {
		return fmt.Errorf("cannot delete unsaved %s: %w", r.m.name, ErrInvalidEntity)
	}

	m := r.m
	id := m.id(entity)
	r.session.stage(pendingChange{
		kind:   changeDelete,
		table:  m.table,
		target: entity,
		apply: func(ctx context.Context, tx *sql.Tx, _ time.Time) (int64, error) {
			query, args, err := sq.Delete(m.table).Where(sq.Eq{"id": id}).ToSql()
			if err != nil {
				return 0, err
			}
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return 0, translateError(err)
			}
			return res.RowsAffected()
		},
	})
	return nil
}

// DeleteByID loads the entity and stages its removal; a missing id is a no-op
func (r *sqlRepository[T]) DeleteByID(ctx context.Context, id int64) error {
	entity, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.Delete(ctx, entity)
}

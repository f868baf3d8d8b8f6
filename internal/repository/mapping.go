package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// entityMapping describes how an entity type maps onto its table.
type entityMapping[T any] struct {
	name    string
	table   string
	columns []string // "id" first, then the writable columns

	id    func(*T) int64
	setID func(*T, int64)

	// fields returns scan destinations in column order.
	fields func(*T) []any
	// values returns the writable column values, i.e. columns[1:].
	values func(*T) []any

	onInsert func(*T, time.Time)
	onUpdate func(*T, time.Time)

	// relations is populated in init() because mappings refer to each other.
	relations map[string]relation[T]
}

// relation loads one navigation for a batch of parents.
type relation[T any] struct {
	load     func(ctx context.Context, s *Session, parents []*T, nested []string) error
	validate func(nested []string) error
}

func (m *entityMapping[T]) selectBuilder() sq.SelectBuilder {
	return sq.Select(m.columns...).From(m.table)
}

func (m *entityMapping[T]) writable() []string {
	return m.columns[1:]
}

// splitRelations groups "items.game.genre" style paths by their first segment.
func splitRelations(paths []string) ([]string, map[string][]string) {
	var heads []string
	nested := make(map[string][]string)
	for _, p := range paths {
		head, rest, _ := strings.Cut(strings.TrimSpace(p), ".")
		if _, seen := nested[head]; !seen {
			heads = append(heads, head)
			nested[head] = nil
		}
		if rest != "" {
			nested[head] = append(nested[head], rest)
		}
	}
	return heads, nested
}

func (m *entityMapping[T]) validateRelations(paths []string) error {
	heads, nested := splitRelations(paths)
	for _, head := range heads {
		rel, ok := m.relations[head]
		if !ok {
			return fmt.Errorf("%s has no relation %q: %w", m.name, head, ErrUnknownRelation)
		}
		if err := rel.validate(nested[head]); err != nil {
			return err
		}
	}
	return nil
}

func includeRelations[T any](ctx context.Context, s *Session, m *entityMapping[T], items []*T, paths []string) error {
	if len(paths) == 0 || len(items) == 0 {
		return nil
	}
	heads, nested := splitRelations(paths)
	for _, head := range heads {
		rel, ok := m.relations[head]
		if !ok {
			return fmt.Errorf("%s has no relation %q: %w", m.name, head, ErrUnknownRelation)
		}
		if err := rel.load(ctx, s, items, nested[head]); err != nil {
			return fmt.Errorf("failed to load %s.%s: %w", m.name, head, err)
		}
	}
	return nil
}

func queryEntities[T any](ctx context.Context, s *Session, m *entityMapping[T], b sq.SelectBuilder, cacheable bool) ([]*T, error) {
	rows, err := s.query(ctx, b, cacheable)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", m.table, err)
	}
	defer rows.Close()

	items := []*T{}
	for rows.Next() {
		entity := new(T)
		if err := rows.Scan(m.fields(entity)...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", m.name, err)
		}
		items = append(items, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", m.table, err)
	}
	return items, nil
}

func distinctIDs[T any](items []*T, key func(*T) int64) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		id := key(it)
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// belongsTo loads the single entity each parent references through fk.
func belongsTo[P, C any](child *entityMapping[C], fk func(*P) int64, set func(*P, *C)) relation[P] {
	return relation[P]{
		validate: func(nested []string) error { return child.validateRelations(nested) },
		load: func(ctx context.Context, s *Session, parents []*P, nested []string) error {
			ids := distinctIDs(parents, fk)
			if len(ids) == 0 {
				return nil
			}
			children, err := queryEntities(ctx, s, child, child.selectBuilder().Where(sq.Eq{"id": ids}), false)
			if err != nil {
				return err
			}
			if err := includeRelations(ctx, s, child, children, nested); err != nil {
				return err
			}
			byID := make(map[int64]*C, len(children))
			for _, c := range children {
				byID[child.id(c)] = c
			}
			for _, p := range parents {
				set(p, byID[fk(p)])
			}
			return nil
		},
	}
}

// hasMany loads the children whose fkColumn points at each parent.
func hasMany[P, C any](parentID func(*P) int64, child *entityMapping[C], fkColumn string, fk func(*C) int64, set func(*P, []*C), orderBy ...string) relation[P] {
	if len(orderBy) == 0 {
		orderBy = []string{"id"}
	}
	return relation[P]{
		validate: func(nested []string) error { return child.validateRelations(nested) },
		load: func(ctx context.Context, s *Session, parents []*P, nested []string) error {
			ids := distinctIDs(parents, parentID)
			if len(ids) == 0 {
				return nil
			}
			q := child.selectBuilder().Where(sq.Eq{fkColumn: ids}).OrderBy(orderBy...)
			children, err := queryEntities(ctx, s, child, q, false)
			if err != nil {
				return err
			}
			if err := includeRelations(ctx, s, child, children, nested); err != nil {
				return err
			}
			grouped := make(map[int64][]*C, len(ids))
			for _, c := range children {
				grouped[fk(c)] = append(grouped[fk(c)], c)
			}
			for _, p := range parents {
				kids := grouped[parentID(p)]
				if kids == nil {
					kids = []*C{}
				}
				set(p, kids)
			}
			return nil
		},
	}
}

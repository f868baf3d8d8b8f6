package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	log "github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/gamestore/internal/domain"
	"github.com/jbweber/homelab/gamestore/internal/metrics"
	"github.com/jbweber/homelab/gamestore/internal/repository"
	"github.com/jbweber/homelab/gamestore/internal/result"
)

// catalogKind binds CatalogService to one reference table.
type catalogKind[T, D any] struct {
	name      string // "Genre"
	gameFK    string // games column referencing the table
	repo      func(*repository.UnitOfWork) repository.Repository[T]
	toDto     func(*T) D
	newEntity func(name string, description *string) *T
}

// CatalogService manages a reference table that games point at, such as
// genres or platforms.
type CatalogService[T, D any] struct {
	base
	kind catalogKind[T, D]
}

type (
	GenreService    = CatalogService[domain.Genre, GenreDto]
	PlatformService = CatalogService[domain.Platform, PlatformDto]
)

func NewGenreService(uows UnitOfWorkFactory, logger *log.Entry, m *metrics.StoreMetrics) *GenreService {
	return &GenreService{
		base: newBase(uows, logger, m, "genre-service"),
		kind: catalogKind[domain.Genre, GenreDto]{
			name:   "Genre",
			gameFK: "genre_id",
			repo:   (*repository.UnitOfWork).Genres,
			toDto:  toGenreDto,
			newEntity: func(name string, description *string) *domain.Genre {
				return &domain.Genre{Name: name, Description: description}
			},
		},
	}
}

func NewPlatformService(uows UnitOfWorkFactory, logger *log.Entry, m *metrics.StoreMetrics) *PlatformService {
	return &PlatformService{
		base: newBase(uows, logger, m, "platform-service"),
		kind: catalogKind[domain.Platform, PlatformDto]{
			name:   "Platform",
			gameFK: "platform_id",
			repo:   (*repository.UnitOfWork).Platforms,
			toDto:  toPlatformDto,
			newEntity: func(name string, description *string) *domain.Platform {
				return &domain.Platform{Name: name, Description: description}
			},
		},
	}
}

func (s *CatalogService[T, D]) op(action string) string {
	return action + "_" + strings.ToLower(s.kind.name)
}

// GetAll lists every entry with its game count.
func (s *CatalogService[T, D]) GetAll(ctx context.Context) result.Result[[]D] {
	op := s.op("list")

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[[]D] {
		items, err := s.kind.repo(uow).GetAllWithRelations(ctx, "games")
		if err != nil {
			return internalError[[]D](s.base, op, err, fmt.Sprintf("Failed to retrieve %s list", s.kind.name), nil)
		}
		s.logger.WithField("count", len(items)).Debug("retrieved catalog entries")
		return result.Ok(mapSlice(items, s.kind.toDto))
	})
}

// GetByID returns one entry with its game count.
func (s *CatalogService[T, D]) GetByID(ctx context.Context, id int64) result.Result[D] {
	op := s.op("get")

	if check := validID(id, fmt.Sprintf("Invalid %s ID", s.kind.name)); check.IsFailure() {
		return fail[D](s.base, op, check.Error(), check.ErrorType())
	}

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[D] {
		item, err := s.kind.repo(uow).GetByIDWithRelations(ctx, id, "games")
		if errors.Is(err, repository.ErrNotFound) {
			return fail[D](s.base, op, s.kind.name+" not found", result.NotFound)
		}
		if err != nil {
			return internalError[D](s.base, op, err, "Failed to retrieve "+s.kind.name, log.Fields{"id": id})
		}
		return result.Ok(s.kind.toDto(item))
	})
}

// Create adds an entry with a unique name.
func (s *CatalogService[T, D]) Create(ctx context.Context, req CreateCatalogEntryRequest) result.Result[D] {
	op := s.op("create")

	if check := validateRequest(req); check.IsFailure() {
		return fail[D](s.base, op, check.Error(), check.ErrorType())
	}
	conflict := fmt.Sprintf("%s with this name already exists", s.kind.name)

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[D] {
		repo := s.kind.repo(uow)
		taken, err := repo.Exists(ctx, sq.Eq{"name": req.Name})
		if err != nil {
			return internalError[D](s.base, op, err, "Failed to create "+s.kind.name, log.Fields{"name": req.Name})
		}
		if taken {
			return fail[D](s.base, op, conflict, result.Conflict)
		}

		item, err := repo.Add(ctx, s.kind.newEntity(req.Name, req.Description))
		if err != nil {
			return internalError[D](s.base, op, err, "Failed to create "+s.kind.name, log.Fields{"name": req.Name})
		}
		if _, err := uow.SaveChanges(ctx); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fail[D](s.base, op, conflict, result.Conflict)
			}
			return internalError[D](s.base, op, err, "Failed to create "+s.kind.name, log.Fields{"name": req.Name})
		}

		s.logger.WithField("name", req.Name).Info("catalog entry created")
		return result.Ok(s.kind.toDto(item))
	})
}

// Delete removes an entry no game refers to.
func (s *CatalogService[T, D]) Delete(ctx context.Context, id int64) result.Status {
	op := s.op("delete")

	if check := validID(id, fmt.Sprintf("Invalid %s ID", s.kind.name)); check.IsFailure() {
		return failStatus(s.base, op, check.Error(), check.ErrorType())
	}
	conflict := fmt.Sprintf("Cannot delete %s with existing games", strings.ToLower(s.kind.name))

	return withUnitOfWorkStatus(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Status {
		repo := s.kind.repo(uow)
		item, err := repo.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return failStatus(s.base, op, s.kind.name+" not found", result.NotFound)
		}
		if err != nil {
			return internalStatus(s.base, op, err, "Failed to delete "+s.kind.name, log.Fields{"id": id})
		}

		used, err := uow.Games().Exists(ctx, sq.Eq{s.kind.gameFK: id})
		if err != nil {
			return internalStatus(s.base, op, err, "Failed to delete "+s.kind.name, log.Fields{"id": id})
		}
		if used {
			return failStatus(s.base, op, conflict, result.Conflict)
		}

		if err := repo.Delete(ctx, item); err != nil {
			return internalStatus(s.base, op, err, "Failed to delete "+s.kind.name, log.Fields{"id": id})
		}
		if _, err := uow.SaveChanges(ctx); err != nil {
			if errors.Is(err, repository.ErrConstraint) {
				return failStatus(s.base, op, conflict, result.Conflict)
			}
			return internalStatus(s.base, op, err, "Failed to delete "+s.kind.name, log.Fields{"id": id})
		}
		return result.Success()
	})
}

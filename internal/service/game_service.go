package service

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	log "github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/gamestore/internal/domain"
	"github.com/jbweber/homelab/gamestore/internal/metrics"
	"github.com/jbweber/homelab/gamestore/internal/repository"
	"github.com/jbweber/homelab/gamestore/internal/result"
)

// GameService handles catalog browsing and game administration.
type GameService struct {
	base
}

func NewGameService(uows UnitOfWorkFactory, logger *log.Entry, m *metrics.StoreMetrics) *GameService {
	return &GameService{base: newBase(uows, logger, m, "game-service")}
}

func validID(id int64, message string) result.Status {
	return result.GreaterThan(id, 0, message)
}

func idExists[T any](ctx context.Context, repo repository.Repository[T], id int64) (bool, error) {
	return repo.Exists(ctx, sq.Eq{"id": id})
}

// SearchGames returns one page of active games matching the request.
func (s *GameService) SearchGames(ctx context.Context, req SearchGamesRequest) result.Result[result.Page[GameSummaryDto]] {
	const op = "search_games"

	check := result.Combine(
		result.GreaterThan(req.PageNumber, 0, "Page number must be at least 1"),
		result.InRange(req.PageSize, 1, repository.MaxPageSize, "Page size must be between 1 and 100"),
		validateRequest(req),
		result.FailureIf(req.MinPrice != nil && req.MaxPrice != nil && req.MinPrice.GreaterThan(*req.MaxPrice),
			"Minimum price cannot exceed maximum price", result.Validation),
	)
	if check.IsFailure() {
		return fail[result.Page[GameSummaryDto]](s.base, op, check.Error(), check.ErrorType())
	}

	s.logger.WithFields(log.Fields{"term": req.SearchTerm, "page": req.PageNumber}).Debug("searching games")

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[result.Page[GameSummaryDto]] {
		games, total, err := uow.Games().SearchGames(ctx, repository.GameSearch{
			SearchTerm: req.SearchTerm,
			GenreID:    req.GenreID,
			PlatformID: req.PlatformID,
			MinPrice:   req.MinPrice,
			MaxPrice:   req.MaxPrice,
			PageNumber: req.PageNumber,
			PageSize:   req.PageSize,
		})
		if err != nil {
			return internalError[result.Page[GameSummaryDto]](s.base, op, err, "Failed to search games", nil)
		}
		return result.Ok(result.NewPage(mapSlice(games, toGameSummaryDto), req.PageNumber, req.PageSize, total))
	})
}

// GetGameByID returns a game with genre, platform and reviews.
func (s *GameService) GetGameByID(ctx context.Context, id int64) result.Result[GameDto] {
	const op = "get_game"

	if check := validID(id, "Invalid game ID"); check.IsFailure() {
		return fail[GameDto](s.base, op, check.Error(), check.ErrorType())
	}

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[GameDto] {
		game, err := uow.Games().GetGameWithDetails(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return fail[GameDto](s.base, op, "Game not found", result.NotFound)
		}
		if err != nil {
			return internalError[GameDto](s.base, op, err, "Failed to retrieve game", log.Fields{"game_id": id})
		}
		return result.Ok(toGameDto(game))
	})
}

// GetActiveGames lists every active game by title.
func (s *GameService) GetActiveGames(ctx context.Context) result.Result[[]GameSummaryDto] {
	const op = "get_active_games"

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[[]GameSummaryDto] {
		games, err := uow.Games().GetActiveGames(ctx)
		if err != nil {
			return internalError[[]GameSummaryDto](s.base, op, err, "Failed to retrieve active games", nil)
		}
		return result.Ok(mapSlice(games, toGameSummaryDto))
	})
}

// checkGameReferences verifies the genre and platform exist and the title is
// free, ignoring the game with excludeID.
func (s *GameService) checkGameReferences(ctx context.Context, uow *repository.UnitOfWork, op, title string, genreID, platformID, excludeID int64) (result.Status, error) {
	genreOK, err := idExists(ctx, uow.Genres(), genreID)
	if err != nil {
		return result.Success(), err
	}
	if !genreOK {
		return failStatus(s.base, op, "Invalid genre", result.NotFound), nil
	}

	platformOK, err := idExists(ctx, uow.Platforms(), platformID)
	if err != nil {
		return result.Success(), err
	}
	if !platformOK {
		return failStatus(s.base, op, "Invalid platform", result.NotFound), nil
	}

	taken, err := uow.Games().TitleExists(ctx, title, excludeID)
	if err != nil {
		return result.Success(), err
	}
	if taken {
		return failStatus(s.base, op, "Game with this title already exists", result.Conflict), nil
	}
	return result.Success(), nil
}

// saveGame saves staged changes, reporting a title collision as Conflict.
func (s *GameService) saveGame(ctx context.Context, uow *repository.UnitOfWork, op string, game *domain.Game, failure string) result.Status {
	if _, err := uow.SaveChanges(ctx); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return failStatus(s.base, op, "Game with this title already exists", result.Conflict)
		}
		return internalStatus(s.base, op, err, failure, log.Fields{"title": game.Title})
	}
	return result.Success()
}

// saveAndReload saves staged changes and reloads the game's detail graph.
func (s *GameService) saveAndReload(ctx context.Context, uow *repository.UnitOfWork, op string, game *domain.Game, failure string) result.Result[GameDto] {
	saved := result.FromStatus(s.saveGame(ctx, uow, op, game, failure), game)
	reloaded := result.AndThen(saved, func(g *domain.Game) result.Result[*domain.Game] {
		details, err := uow.Games().GetGameWithDetails(ctx, g.ID)
		if err != nil {
			return internalError[*domain.Game](s.base, op, err, failure, log.Fields{"game_id": g.ID})
		}
		return result.Ok(details)
	})
	return result.Map(reloaded, toGameDto)
}

// CreateGame validates and adds an active game.
func (s *GameService) CreateGame(ctx context.Context, req CreateGameRequest) result.Result[GameDto] {
	const op = "create_game"

	if check := validateRequest(req); check.IsFailure() {
		return fail[GameDto](s.base, op, check.Error(), check.ErrorType())
	}

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[GameDto] {
		check, err := s.checkGameReferences(ctx, uow, op, req.Title, req.GenreID, req.PlatformID, 0)
		if err != nil {
			return internalError[GameDto](s.base, op, err, "Failed to create game", log.Fields{"title": req.Title})
		}

		return result.Then(check, func() result.Result[GameDto] {
			game := &domain.Game{
				Title:       req.Title,
				Description: req.Description,
				Price:       req.Price,
				ReleaseDate: req.ReleaseDate.UTC(),
				ImageURL:    req.ImageURL,
				IsActive:    true,
				GenreID:     req.GenreID,
				PlatformID:  req.PlatformID,
			}
			if _, err := uow.Games().Add(ctx, game); err != nil {
				return internalError[GameDto](s.base, op, err, "Failed to create game", log.Fields{"title": req.Title})
			}

			return s.saveAndReload(ctx, uow, op, game, "Failed to create game").
				OnSuccess(func(dto GameDto) {
					s.logger.WithField("game_id", dto.ID).Info("game created")
				})
		})
	})
}

// UpdateGame replaces a game's editable fields.
func (s *GameService) UpdateGame(ctx context.Context, id int64, req UpdateGameRequest) result.Result[GameDto] {
	const op = "update_game"

	check := result.Combine(validID(id, "Invalid game ID"), validateRequest(req))
	if check.IsFailure() {
		return fail[GameDto](s.base, op, check.Error(), check.ErrorType())
	}

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[GameDto] {
		game, err := uow.Games().GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return fail[GameDto](s.base, op, "Game not found", result.NotFound)
		}
		if err != nil {
			return internalError[GameDto](s.base, op, err, "Failed to update game", log.Fields{"game_id": id})
		}

		check, err := s.checkGameReferences(ctx, uow, op, req.Title, req.GenreID, req.PlatformID, id)
		if err != nil {
			return internalError[GameDto](s.base, op, err, "Failed to update game", log.Fields{"game_id": id})
		}
		if check.IsFailure() {
			return result.FromStatus(check, GameDto{})
		}

		game.Title = req.Title
		game.Description = req.Description
		game.Price = req.Price
		game.ReleaseDate = req.ReleaseDate.UTC()
		game.ImageURL = req.ImageURL
		game.GenreID = req.GenreID
		game.PlatformID = req.PlatformID
		if req.IsActive != nil {
			game.IsActive = *req.IsActive
		}
		if err := uow.Games().Update(ctx, game); err != nil {
			return internalError[GameDto](s.base, op, err, "Failed to update game", log.Fields{"game_id": id})
		}

		return s.saveAndReload(ctx, uow, op, game, "Failed to update game").
			OnSuccess(func(GameDto) {
				s.logger.WithField("game_id", id).Info("game updated")
			})
	})
}

// DeleteGame deactivates a game. Games that appear in orders cannot be
// deleted and stay untouched.
func (s *GameService) DeleteGame(ctx context.Context, id int64) result.Status {
	const op = "delete_game"

	if check := validID(id, "Invalid game ID"); check.IsFailure() {
		return failStatus(s.base, op, check.Error(), check.ErrorType())
	}

	return withUnitOfWorkStatus(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Status {
		game, err := uow.Games().GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return failStatus(s.base, op, "Game not found", result.NotFound)
		}
		if err != nil {
			return internalStatus(s.base, op, err, "Failed to delete game", log.Fields{"game_id": id})
		}

		ordered, err := uow.OrderItems().Exists(ctx, sq.Eq{"game_id": id})
		if err != nil {
			return internalStatus(s.base, op, err, "Failed to delete game", log.Fields{"game_id": id})
		}
		if ordered {
			return failStatus(s.base, op, "Cannot delete game with existing orders", result.Conflict)
		}

		game.IsActive = false
		if err := uow.Games().Update(ctx, game); err != nil {
			return internalStatus(s.base, op, err, "Failed to delete game", log.Fields{"game_id": id})
		}
		if _, err := uow.SaveChanges(ctx); err != nil {
			return internalStatus(s.base, op, err, "Failed to delete game", log.Fields{"game_id": id})
		}

		s.logger.WithField("game_id", id).Info("game deleted")
		return result.Success()
	})
}

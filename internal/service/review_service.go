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

// ReviewService records and lists game reviews.
type ReviewService struct {
	base
}

func NewReviewService(uows UnitOfWorkFactory, logger *log.Entry, m *metrics.StoreMetrics) *ReviewService {
	return &ReviewService{base: newBase(uows, logger, m, "review-service")}
}

// CreateReview adds a user's only review of a game.
func (s *ReviewService) CreateReview(ctx context.Context, req CreateReviewRequest) result.Result[ReviewDto] {
	const op = "create_review"

	if check := validateRequest(req); check.IsFailure() {
		return fail[ReviewDto](s.base, op, check.Error(), check.ErrorType())
	}
	fields := log.Fields{"user_id": req.UserID, "game_id": req.GameID}
	const duplicate = "User has already reviewed this game"

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[ReviewDto] {
		gameOK, err := idExists[domain.Game](ctx, uow.Games(), req.GameID)
		if err != nil {
			return internalError[ReviewDto](s.base, op, err, "Failed to create review", fields)
		}
		if !gameOK {
			return fail[ReviewDto](s.base, op, "Game not found", result.NotFound)
		}

		userOK, err := idExists[domain.User](ctx, uow.Users(), req.UserID)
		if err != nil {
			return internalError[ReviewDto](s.base, op, err, "Failed to create review", fields)
		}
		if !userOK {
			return fail[ReviewDto](s.base, op, "User not found", result.NotFound)
		}

		reviewed, err := uow.Reviews().Exists(ctx, sq.Eq{"user_id": req.UserID, "game_id": req.GameID})
		if err != nil {
			return internalError[ReviewDto](s.base, op, err, "Failed to create review", fields)
		}
		if reviewed {
			return fail[ReviewDto](s.base, op, duplicate, result.Conflict)
		}

		review := &domain.Review{Rating: req.Rating, Comment: req.Comment, UserID: req.UserID, GameID: req.GameID}
		if _, err := uow.Reviews().Add(ctx, review); err != nil {
			return internalError[ReviewDto](s.base, op, err, "Failed to create review", fields)
		}
		if _, err := uow.SaveChanges(ctx); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fail[ReviewDto](s.base, op, duplicate, result.Conflict)
			}
			return internalError[ReviewDto](s.base, op, err, "Failed to create review", fields)
		}

		saved, err := uow.Reviews().GetByIDWithRelations(ctx, review.ID, "user")
		if err != nil {
			return internalError[ReviewDto](s.base, op, err, "Failed to create review", fields)
		}
		s.logger.WithFields(fields).Info("review created")
		return result.Ok(toReviewDto(saved))
	})
}

// GetReviewsForGame lists a game's reviews, newest first.
func (s *ReviewService) GetReviewsForGame(ctx context.Context, gameID int64) result.Result[[]ReviewDto] {
	const op = "list_reviews"

	if check := validID(gameID, "Invalid game ID"); check.IsFailure() {
		return fail[[]ReviewDto](s.base, op, check.Error(), check.ErrorType())
	}

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[[]ReviewDto] {
		game, err := uow.Games().GetByIDWithRelations(ctx, gameID, "reviews.user")
		if errors.Is(err, repository.ErrNotFound) {
			return fail[[]ReviewDto](s.base, op, "Game not found", result.NotFound)
		}
		if err != nil {
			return internalError[[]ReviewDto](s.base, op, err, "Failed to retrieve reviews", log.Fields{"game_id": gameID})
		}
		return result.Ok(mapSlice(game.Reviews, toReviewDto))
	})
}

package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/jbweber/homelab/gamestore/internal/domain"
)

// GameSearch holds optional storefront filters. Nil or empty fields do not
// constrain the search.
type GameSearch struct {
	SearchTerm string
	GenreID    *int64
	PlatformID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	PageNumber int
	PageSize   int
}

// GameRepository defines domain-specific operations for games
type GameRepository interface {
	Repository[domain.Game]
	GetActiveGames(ctx context.Context) ([]*domain.Game, error)
	GetGamesByGenre(ctx context.Context, genreID int64) ([]*domain.Game, error)
	GetGamesByPlatform(ctx context.Context, platformID int64) ([]*domain.Game, error)
	// GetGameWithDetails loads genre, platform and reviews with their authors
	GetGameWithDetails(ctx context.Context, id int64) (*domain.Game, error)
	// SearchGames returns one title-ordered page of active games, with genre,
	// platform and reviews loaded, and the total match count
	SearchGames(ctx context.Context, search GameSearch) ([]*domain.Game, int, error)
	// TitleExists checks title uniqueness, ignoring the game with excludeID
	TitleExists(ctx context.Context, title string, excludeID int64) (bool, error)
}

// gameRepositoryImpl implements GameRepository
type gameRepositoryImpl struct {
	*sqlRepository[domain.Game]
}

func newGameRepository(s *Session) GameRepository {
	return &gameRepositoryImpl{sqlRepository: newSQLRepository(s, gameMapping)}
}

var activeGame = sq.Eq{"is_active": true}

// GetActiveGames retrieves active games ordered by title
func (r *gameRepositoryImpl) GetActiveGames(ctx context.Context) ([]*domain.Game, error) {
	games, err := r.list(ctx, r.m.selectBuilder().Where(activeGame).OrderBy("title"), "genre", "platform", "reviews")
	if err != nil {
		return nil, fmt.Errorf("failed to list active games: %w", err)
	}
	return games, nil
}

// GetGamesByGenre retrieves active games of a genre ordered by title
func (r *gameRepositoryImpl) GetGamesByGenre(ctx context.Context, genreID int64) ([]*domain.Game, error) {
	q := r.m.selectBuilder().Where(And(activeGame, sq.Eq{"genre_id": genreID})).OrderBy("title")
	games, err := r.list(ctx, q, "genre", "platform")
	if err != nil {
		return nil, fmt.Errorf("failed to list games by genre: %w", err)
	}
	return games, nil
}

// GetGamesByPlatform retrieves active games of a platform ordered by title
func (r *gameRepositoryImpl) GetGamesByPlatform(ctx context.Context, platformID int64) ([]*domain.Game, error) {
	q := r.m.selectBuilder().Where(And(activeGame, sq.Eq{"platform_id": platformID})).OrderBy("title")
	games, err := r.list(ctx, q, "genre", "platform")
	if err != nil {
		return nil, fmt.Errorf("failed to list games by platform: %w", err)
	}
	return games, nil
}

// GetGameWithDetails retrieves a game with its genre, platform and reviews
func (r *gameRepositoryImpl) GetGameWithDetails(ctx context.Context, id int64) (*domain.Game, error) {
	return r.GetByIDWithRelations(ctx, id, "genre", "platform", "reviews.user")
}

// SearchGames folds the optional filters into one predicate, counts the
// matches, then fetches the requested page ordered by title
func (r *gameRepositoryImpl) SearchGames(ctx context.Context, search GameSearch) ([]*domain.Game, int, error) {
	if err := validatePage(search.PageNumber, search.PageSize); err != nil {
		return nil, 0, err
	}

	filter := And(activeGame, searchTermFilter(search.SearchTerm))
	if search.GenreID != nil {
		filter = And(filter, sq.Eq{"genre_id": *search.GenreID})
	}
	if search.PlatformID != nil {
		filter = And(filter, sq.Eq{"platform_id": *search.PlatformID})
	}
	if search.MinPrice != nil {
		filter = And(filter, sq.GtOrEq{"price": *search.MinPrice})
	}
	if search.MaxPrice != nil {
		filter = And(filter, sq.LtOrEq{"price": *search.MaxPrice})
	}

	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	q := pageQuery(r.m.selectBuilder().Where(filter), PageRequest{
		PageNumber: search.PageNumber,
		PageSize:   search.PageSize,
		OrderBy:    []string{"title", "id"},
	})
	games, err := r.list(ctx, q, "genre", "platform", "reviews")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search games: %w", err)
	}
	return games, total, nil
}

// searchTermFilter matches the term anywhere in title or description.
// LIKE is case-insensitive for ASCII in sqlite.
func searchTermFilter(term string) Predicate {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	pattern := "%" + escapeLike(term) + "%"
	return sq.Expr(`(title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`, pattern, pattern)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// TitleExists checks if another game already uses title
func (r *gameRepositoryImpl) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	pred := And(sq.Eq{"title": title}, sq.NotEq{"id": excludeID})
	return r.Exists(ctx, pred)
}

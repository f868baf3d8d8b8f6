package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jbweber/homelab/gamestore/internal/result"
	"github.com/jbweber/homelab/gamestore/internal/service"
)

// GamesService defines the game operations the handlers need
type GamesService interface {
	SearchGames(ctx context.Context, req service.SearchGamesRequest) result.Result[result.Page[service.GameSummaryDto]]
	GetActiveGames(ctx context.Context) result.Result[[]service.GameSummaryDto]
	GetGameByID(ctx context.Context, id int64) result.Result[service.GameDto]
	CreateGame(ctx context.Context, req service.CreateGameRequest) result.Result[service.GameDto]
	UpdateGame(ctx context.Context, id int64, req service.UpdateGameRequest) result.Result[service.GameDto]
	DeleteGame(ctx context.Context, id int64) result.Status
}

// ReviewsService defines the review operations the handlers need
type ReviewsService interface {
	CreateReview(ctx context.Context, req service.CreateReviewRequest) result.Result[service.ReviewDto]
	GetReviewsForGame(ctx context.Context, gameID int64) result.Result[[]service.ReviewDto]
}

// Games groups game and review handlers for testability
type Games struct {
	games   GamesService
	reviews ReviewsService
}

func NewGames(games GamesService, reviews ReviewsService) *Games {
	return &Games{games: games, reviews: reviews}
}

// RegisterGamesRoutes mounts /games and /reviews on r.
func RegisterGamesRoutes(r chi.Router, g *Games) {
	r.Route("/games", func(r chi.Router) {
		r.Get("/", g.SearchGamesHandler)
		r.Post("/", g.CreateGameHandler)
		r.Get("/active", g.ActiveGamesHandler)
		r.Get("/{id}", g.GetGameHandler)
		r.Put("/{id}", g.UpdateGameHandler)
		r.Delete("/{id}", g.DeleteGameHandler)
		r.Get("/{id}/reviews", g.GameReviewsHandler)
	})
	r.Post("/reviews", g.CreateReviewHandler)
}

// SearchGamesHandler handles GET /games.
//
// Query: searchTerm, genreId, platformId, minPrice, maxPrice, pageNumber
// (default 1) and pageSize (default 10).
func (g *Games) SearchGamesHandler(w http.ResponseWriter, r *http.Request) {
	req, problem := parseSearch(r.URL.Query())
	if problem != "" {
		writeBadRequest(w, problem)
		return
	}
	writeResult(w, g.games.SearchGames(r.Context(), req), http.StatusOK)
}

func parseSearch(q url.Values) (service.SearchGamesRequest, string) {
	req := service.SearchGamesRequest{
		SearchTerm: q.Get("searchTerm"),
		PageNumber: 1,
		PageSize:   service.DefaultPageSize,
	}

	for _, p := range []struct {
		name string
		dst  **int64
	}{{"genreId", &req.GenreID}, {"platformId", &req.PlatformID}} {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return req, "Invalid " + p.name
			}
			*p.dst = &n
		}
	}

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"minPrice", &req.MinPrice}, {"maxPrice", &req.MaxPrice}} {
		if v := q.Get(p.name); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return req, "Invalid " + p.name
			}
			*p.dst = &d
		}
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"pageNumber", &req.PageNumber}, {"pageSize", &req.PageSize}} {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return req, "Invalid " + p.name
			}
			*p.dst = n
		}
	}
	return req, ""
}

// ActiveGamesHandler handles GET /games/active.
func (g *Games) ActiveGamesHandler(w http.ResponseWriter, r *http.Request) {
	writeResult(w, g.games.GetActiveGames(r.Context()), http.StatusOK)
}

// GetGameHandler handles GET /games/{id}.
func (g *Games) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	writeResult(w, g.games.GetGameByID(r.Context(), id), http.StatusOK)
}

// CreateGameHandler handles POST /games and answers 201 with a Location.
func (g *Games) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateGameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeCreated(w, g.games.CreateGame(r.Context(), req), func(game service.GameDto) string {
		return resourcePath("games", game.ID)
	})
}

// UpdateGameHandler handles PUT /games/{id}.
func (g *Games) UpdateGameHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req service.UpdateGameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeResult(w, g.games.UpdateGame(r.Context(), id, req), http.StatusOK)
}

// DeleteGameHandler handles DELETE /games/{id}. The game is deactivated,
// not removed.
func (g *Games) DeleteGameHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	writeStatus(w, g.games.DeleteGame(r.Context(), id))
}

// GameReviewsHandler handles GET /games/{id}/reviews.
func (g *Games) GameReviewsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	writeResult(w, g.reviews.GetReviewsForGame(r.Context(), id), http.StatusOK)
}

// CreateReviewHandler handles POST /reviews.
func (g *Games) CreateReviewHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeCreated(w, g.reviews.CreateReview(r.Context(), req), func(review service.ReviewDto) string {
		return resourcePath("games", review.GameID) + "/reviews"
	})
}

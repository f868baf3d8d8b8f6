package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPageSize is used when a search does not name a page size.
const DefaultPageSize = 10

type CreateGameRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Price       decimal.Decimal `json:"price" validate:"gte=0.01,lte=999.99"`
	ReleaseDate time.Time       `json:"releaseDate" validate:"required"`
	ImageURL    *string         `json:"imageUrl" validate:"omitempty,url,max=500"`
	GenreID     int64           `json:"genreId" validate:"gte=1"`
	PlatformID  int64           `json:"platformId" validate:"gte=1"`
}

// UpdateGameRequest replaces a game's editable fields. A nil IsActive leaves
// the flag unchanged.
type UpdateGameRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Price       decimal.Decimal `json:"price" validate:"gte=0.01,lte=999.99"`
	ReleaseDate time.Time       `json:"releaseDate" validate:"required"`
	ImageURL    *string         `json:"imageUrl" validate:"omitempty,url,max=500"`
	GenreID     int64           `json:"genreId" validate:"gte=1"`
	PlatformID  int64           `json:"platformId" validate:"gte=1"`
	IsActive    *bool           `json:"isActive"`
}

// SearchGamesRequest holds storefront filters; nil filters are ignored.
type SearchGamesRequest struct {
	SearchTerm string           `json:"searchTerm" validate:"max=100"`
	GenreID    *int64           `json:"genreId" validate:"omitempty,gte=1"`
	PlatformID *int64           `json:"platformId" validate:"omitempty,gte=1"`
	MinPrice   *decimal.Decimal `json:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice   *decimal.Decimal `json:"maxPrice" validate:"omitempty,gte=0"`
	PageNumber int              `json:"pageNumber"`
	PageSize   int              `json:"pageSize"`
}

// CreateCatalogEntryRequest creates a genre or platform.
type CreateCatalogEntryRequest struct {
	Name        string  `json:"name" validate:"required,max=50"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=20"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Password  string `json:"password" validate:"required,min=3,max=20"`
	FirstName string `json:"firstName" validate:"required,min=3,max=20"`
	LastName  string `json:"lastName" validate:"max=50"`
}

type CreateReviewRequest struct {
	UserID  int64   `json:"userId" validate:"gte=1"`
	GameID  int64   `json:"gameId" validate:"gte=1"`
	Rating  int     `json:"rating" validate:"gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

type OrderLineRequest struct {
	GameID   int64 `json:"gameId" validate:"gte=1"`
	Quantity int   `json:"quantity" validate:"gte=1,lte=100"`
}

type PlaceOrderRequest struct {
	UserID int64              `json:"userId" validate:"gte=1"`
	Items  []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
	Notes  *string            `json:"notes" validate:"omitempty,max=500"`
}

package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jbweber/homelab/gamestore/internal/domain"
)

type GenreDto struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	GameCount   int       `json:"gameCount"`
}

type PlatformDto struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	GameCount   int       `json:"gameCount"`
}

type ReviewDto struct {
	ID        int64      `json:"id"`
	Rating    int        `json:"rating"`
	Comment   *string    `json:"comment,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	UserID    int64      `json:"userId"`
	Username  string     `json:"username"`
	GameID    int64      `json:"gameId"`
}

// GameDto is the full detail view of a game.
type GameDto struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	ReleaseDate   time.Time       `json:"releaseDate"`
	ImageURL      *string         `json:"imageUrl,omitempty"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     *time.Time      `json:"updatedAt,omitempty"`
	Genre         GenreDto        `json:"genre"`
	Platform      PlatformDto     `json:"platform"`
	Reviews       []ReviewDto     `json:"reviews"`
	AverageRating float64         `json:"averageRating"`
	ReviewCount   int             `json:"reviewCount"`
}

// GameSummaryDto is the listing view of a game.
type GameSummaryDto struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Price         decimal.Decimal `json:"price"`
	ReleaseDate   time.Time       `json:"releaseDate"`
	ImageURL      *string         `json:"imageUrl,omitempty"`
	IsActive      bool            `json:"isActive"`
	GenreID       int64           `json:"genreId"`
	GenreName     string          `json:"genreName"`
	PlatformID    int64           `json:"platformId"`
	PlatformName  string          `json:"platformName"`
	AverageRating float64         `json:"averageRating"`
}

// UserDto never carries the password hash.
type UserDto struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

type OrderItemDto struct {
	ID           int64           `json:"id"`
	GameID       int64           `json:"gameId"`
	GameTitle    string          `json:"gameTitle"`
	GenreName    string          `json:"genreName,omitempty"`
	PlatformName string          `json:"platformName,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

type OrderDto struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	OrderDate   time.Time       `json:"orderDate"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Notes       *string         `json:"notes,omitempty"`
	UserID      int64           `json:"userId"`
	Username    string          `json:"username,omitempty"`
	Items       []OrderItemDto  `json:"items"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}

func toGenreDto(g *domain.Genre) GenreDto {
	return GenreDto{ID: g.ID, Name: g.Name, Description: g.Description, CreatedAt: g.CreatedAt, GameCount: len(g.Games)}
}

func toPlatformDto(p *domain.Platform) PlatformDto {
	return PlatformDto{ID: p.ID, Name: p.Name, Description: p.Description, CreatedAt: p.CreatedAt, GameCount: len(p.Games)}
}

func toReviewDto(r *domain.Review) ReviewDto {
	dto := ReviewDto{
		ID:        r.ID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		UserID:    r.UserID,
		GameID:    r.GameID,
	}
	if r.User != nil {
		dto.Username = r.User.Username
	}
	return dto
}

func toGameDto(g *domain.Game) GameDto {
	dto := GameDto{
		ID:            g.ID,
		Title:         g.Title,
		Description:   g.Description,
		Price:         g.Price,
		ReleaseDate:   g.ReleaseDate,
		ImageURL:      g.ImageURL,
		IsActive:      g.IsActive,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
		Reviews:       make([]ReviewDto, 0, len(g.Reviews)),
		AverageRating: g.AverageRating(),
		ReviewCount:   len(g.Reviews),
	}
	if g.Genre != nil {
		dto.Genre = toGenreDto(g.Genre)
	}
	if g.Platform != nil {
		dto.Platform = toPlatformDto(g.Platform)
	}
	for _, r := range g.Reviews {
		dto.Reviews = append(dto.Reviews, toReviewDto(r))
	}
	return dto
}

func toGameSummaryDto(g *domain.Game) GameSummaryDto {
	dto := GameSummaryDto{
		ID:            g.ID,
		Title:         g.Title,
		Price:         g.Price,
		ReleaseDate:   g.ReleaseDate,
		ImageURL:      g.ImageURL,
		IsActive:      g.IsActive,
		GenreID:       g.GenreID,
		PlatformID:    g.PlatformID,
		AverageRating: g.AverageRating(),
	}
	if g.Genre != nil {
		dto.GenreName = g.Genre.Name
	}
	if g.Platform != nil {
		dto.PlatformName = g.Platform.Name
	}
	return dto
}

func toUserDto(u *domain.User) UserDto {
	return UserDto{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

func toOrderDto(o *domain.Order) OrderDto {
	dto := OrderDto{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		OrderDate:   o.OrderDate,
		Status:      o.Status.String(),
		TotalAmount: o.TotalAmount,
		Notes:       o.Notes,
		UserID:      o.UserID,
		Items:       make([]OrderItemDto, 0, len(o.Items)),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if o.User != nil {
		dto.Username = o.User.Username
	}
	for _, item := range o.Items {
		line := OrderItemDto{
			ID:         item.ID,
			GameID:     item.GameID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
		if g := item.Game; g != nil {
			line.GameTitle = g.Title
			if g.Genre != nil {
				line.GenreName = g.Genre.Name
			}
			if g.Platform != nil {
				line.PlatformName = g.Platform.Name
			}
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}

func mapSlice[T, U any](items []*T, fn func(*T) U) []U {
	out := make([]U, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Game is a catalog entry. Inactive games are hidden from the storefront
// but keep their order history.
type Game struct {
	ID          int64           // Unique identifier
	Title       string          // Unique, at most 200 characters
	Description *string         // Optional, at most 2000 characters
	Price       decimal.Decimal // Non-negative, two decimal places
	ReleaseDate time.Time
	ImageURL    *string // Optional cover image URL
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	GenreID     int64
	PlatformID  int64

	Genre      *Genre
	Platform   *Platform
	Reviews    []*Review
	OrderItems []*OrderItem
}

// AverageRating is the mean review rating, or 0 without reviews.
func (g *Game) AverageRating() float64 {
	if len(g.Reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range g.Reviews {
		total += r.Rating
	}
	return float64(total) / float64(len(g.Reviews))
}

// Genre groups games by style of play.
type Genre struct {
	ID          int64  // Unique identifier
	Name        string // Unique, at most 50 characters
	Description *string
	CreatedAt   time.Time

	Games []*Game
}

// Platform is the hardware a game runs on.
type Platform struct {
	ID          int64  // Unique identifier
	Name        string // Unique, at most 50 characters
	Description *string
	CreatedAt   time.Time

	Games []*Game
}

// User is a store customer.
type User struct {
	ID           int64  // Unique identifier
	Username     string // Unique, case-sensitive
	Email        string // Unique, compared case-insensitively
	PasswordHash string // bcrypt hash, never serialized
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    *time.Time

	Orders  []*Order
	Reviews []*Review
}

// OrderStatus tracks an order through fulfilment.
type OrderStatus int

const (
	OrderPending OrderStatus = iota
	OrderProcessing
	OrderShipped
	OrderDelivered
	OrderCancelled
)

var orderStatusNames = map[OrderStatus]string{
	OrderPending:    "Pending",
	OrderProcessing: "Processing",
	OrderShipped:    "Shipped",
	OrderDelivered:  "Delivered",
	OrderCancelled:  "Cancelled",
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// ParseOrderStatus resolves a status name such as "Shipped".
func ParseOrderStatus(name string) (OrderStatus, bool) {
	for status, n := range orderStatusNames {
		if n == name {
			return status, true
		}
	}
	return 0, false
}

// CanTransitionTo reports whether an order may move from s to next.
// Orders advance one step at a time and may be cancelled until shipped.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch next {
	case OrderCancelled:
		return s == OrderPending || s == OrderProcessing
	case OrderProcessing, OrderShipped, OrderDelivered:
		return next == s+1
	default:
		return false
	}
}

// Order is a purchase by a user.
type Order struct {
	ID          int64  // Unique identifier
	OrderNumber string // Unique, at most 50 characters
	OrderDate   time.Time
	TotalAmount decimal.Decimal // Sum of item totals
	Status      OrderStatus
	Notes       *string
	UserID      int64
	CreatedAt   time.Time
	UpdatedAt   *time.Time

	User  *User
	Items []*OrderItem
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID         int64 // Unique identifier
	Quantity   int   // At least 1
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal // Quantity x UnitPrice
	OrderID    int64
	GameID     int64
	CreatedAt  time.Time

	Order *Order
	Game  *Game
}

// Review is a user's rating of a game. A user reviews a game at most once.
type Review struct {
	ID        int64 // Unique identifier
	Rating    int   // 1 to 5
	Comment   *string
	UserID    int64
	GameID    int64
	CreatedAt time.Time
	UpdatedAt *time.Time

	User *User
	Game *Game
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/jbweber/homelab/gamestore/internal/domain"
)

// OrderRepository defines domain-specific operations for orders
type OrderRepository interface {
	Repository[domain.Order]
	// GetOrdersByUserID returns the user's orders newest first, with items and games
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error)
	// GetOrderWithItems loads the user and items with game, genre and platform
	GetOrderWithItems(ctx context.Context, id int64) (*domain.Order, error)
	GetOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	GetOrderByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
}

// orderRepositoryImpl implements OrderRepository
type orderRepositoryImpl struct {
	*sqlRepository[domain.Order]
}

func newOrderRepository(s *Session) OrderRepository {
	return &orderRepositoryImpl{sqlRepository: newSQLRepository(s, orderMapping)}
}

// GetOrdersByUserID retrieves a user's orders, newest first
func (r *orderRepositoryImpl) GetOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error) {
	q := r.m.selectBuilder().Where(sq.Eq{"user_id": userID}).OrderBy("order_date DESC", "id DESC")
	orders, err := r.list(ctx, q, "items.game")
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %d: %w", userID, err)
	}
	return orders, nil
}

// GetOrderWithItems retrieves an order with its full item graph
func (r *orderRepositoryImpl) GetOrderWithItems(ctx context.Context, id int64) (*domain.Order, error) {
	return r.GetByIDWithRelations(ctx, id, "user", "items.game.genre", "items.game.platform")
}

// GetOrdersByStatus retrieves orders in a status, newest first
func (r *orderRepositoryImpl) GetOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	q := r.m.selectBuilder().Where(sq.Eq{"status": status}).OrderBy("order_date DESC", "id DESC")
	orders, err := r.list(ctx, q, "user")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s orders: %w", status, err)
	}
	return orders, nil
}

// GetOrderByOrderNumber retrieves an order by its public number
func (r *orderRepositoryImpl) GetOrderByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, fmt.Errorf("order number is required: %w", ErrInvalidArgument)
	}
	order, err := r.single(ctx, r.m.selectBuilder().Where(sq.Eq{"order_number": orderNumber}), "items.game")
	if err != nil {
		return nil, fmt.Errorf("failed to find order by number: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", orderNumber, ErrNotFound)
	}
	return order, nil
}

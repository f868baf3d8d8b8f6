package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/gamestore/internal/domain"
)

// stageOrder stages an order with one item per game, each bought twice.
func stageOrder(t *testing.T, uow *UnitOfWork, user *domain.User, number string, games ...*domain.Game) *domain.Order {
	t.Helper()
	ctx := context.Background()

	order := &domain.Order{OrderNumber: number, UserID: user.ID, Status: domain.OrderPending}
	_, err := uow.Orders().Add(ctx, order)
	require.NoError(t, err)

	total := decimal.Zero
	for _, g := range games {
		item := &domain.OrderItem{
			Quantity:   2,
			UnitPrice:  g.Price,
			TotalPrice: g.Price.Mul(decimal.NewFromInt(2)),
			GameID:     g.ID,
			Order:      order,
		}
		_, err := uow.OrderItems().Add(ctx, item)
		require.NoError(t, err)
		order.Items = append(order.Items, item)
		total = total.Add(item.TotalPrice)
	}
	order.TotalAmount = total
	return order
}

func TestOrderRepository_GraphRoundTrip(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()
	user := saveUser(t, uow, "buyer", "buyer@example.com")
	games := addGames(t, uow, 2)

	order := stageOrder(t, uow, user, "ORD-1", games...)
	n, err := uow.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NotZero(t, order.ID)
	for _, item := range order.Items {
		assert.Equal(t, order.ID, item.OrderID, "items staged with their order pick up its ID")
	}

	loaded, err := uow.Orders().GetOrderWithItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", loaded.OrderNumber)
	assert.Equal(t, domain.OrderPending, loaded.Status)
	assert.True(t, decimal.RequireFromString("79.96").Equal(loaded.TotalAmount), "total %s", loaded.TotalAmount)
	assert.False(t, loaded.OrderDate.IsZero())
	require.NotNil(t, loaded.User)
	assert.Equal(t, "buyer", loaded.User.Username)
	require.Len(t, loaded.Items, 2)
	for _, item := range loaded.Items {
		require.NotNil(t, item.Game)
		require.NotNil(t, item.Game.Genre)
		require.NotNil(t, item.Game.Platform)
		assert.Equal(t, "Action", item.Game.Genre.Name)
		assert.Equal(t, "PC", item.Game.Platform.Name)
		assert.Equal(t, 2, item.Quantity)
	}
}

func TestOrderRepository_Queries(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()
	buyer := saveUser(t, uow, "buyer", "buyer@example.com")
	other := saveUser(t, uow, "other", "other@example.com")
	games := addGames(t, uow, 1)

	first := stageOrder(t, uow, buyer, "ORD-1", games[0])
	first.OrderDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second := stageOrder(t, uow, buyer, "ORD-2", games[0])
	second.OrderDate = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	second.Status = domain.OrderShipped
	stageOrder(t, uow, other, "ORD-3")
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)

	t.Run("ListUserOrdersNewestFirst", func(t *testing.T) {
		orders, err := uow.Orders().GetOrdersByUserID(ctx, buyer.ID)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "ORD-2", orders[0].OrderNumber)
		assert.Equal(t, "ORD-1", orders[1].OrderNumber)
		require.Len(t, orders[0].Items, 1)
		assert.NotNil(t, orders[0].Items[0].Game)
	})

	t.Run("FilterByStatus", func(t *testing.T) {
		shipped, err := uow.Orders().GetOrdersByStatus(ctx, domain.OrderShipped)
		require.NoError(t, err)
		require.Len(t, shipped, 1)
		assert.Equal(t, "ORD-2", shipped[0].OrderNumber)
		assert.Equal(t, "buyer", shipped[0].User.Username)
	})

	t.Run("FindByOrderNumber", func(t *testing.T) {
		order, err := uow.Orders().GetOrderByOrderNumber(ctx, "ORD-3")
		require.NoError(t, err)
		assert.Equal(t, other.ID, order.UserID)
		assert.NotNil(t, order.Items)
		assert.Empty(t, order.Items)

		_, err = uow.Orders().GetOrderByOrderNumber(ctx, "ORD-404")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = uow.Orders().GetOrderByOrderNumber(ctx, " ")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("LoadUserOrders", func(t *testing.T) {
		user, err := uow.Users().GetUserWithOrders(ctx, buyer.ID)
		require.NoError(t, err)
		require.Len(t, user.Orders, 2)
		assert.Equal(t, "ORD-2", user.Orders[0].OrderNumber)
	})
}

func TestOrderRepository_DeleteCascadesToItems(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()
	user := saveUser(t, uow, "buyer", "buyer@example.com")
	games := addGames(t, uow, 1)
	order := stageOrder(t, uow, user, "ORD-1", games[0])
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)

	require.NoError(t, uow.Orders().Delete(ctx, order))
	_, err = uow.SaveChanges(ctx)
	require.NoError(t, err)

	count, err := uow.OrderItems().Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

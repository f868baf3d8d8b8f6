package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/gamestore/internal/domain"
	"github.com/jbweber/homelab/gamestore/internal/metrics"
	"github.com/jbweber/homelab/gamestore/internal/repository"
	"github.com/jbweber/homelab/gamestore/internal/result"
)

// OrderService places orders and moves them through fulfilment.
type OrderService struct {
	base
	newOrderNumber func() string
}

func NewOrderService(uows UnitOfWorkFactory, logger *log.Entry, m *metrics.StoreMetrics) *OrderService {
	return &OrderService{
		base:           newBase(uows, logger, m, "order-service"),
		newOrderNumber: func() string { return "ORD-" + strings.ToUpper(uuid.NewString()) },
	}
}

// PlaceOrder creates a pending order priced from the current catalog. The
// order and its items are written in one transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) result.Result[OrderDto] {
	const op = "place_order"

	if check := validateRequest(req); check.IsFailure() {
		return fail[OrderDto](s.base, op, check.Error(), check.ErrorType())
	}
	fields := log.Fields{"user_id": req.UserID}

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[OrderDto] {
		if err := uow.BeginTransaction(ctx); err != nil {
			return internalError[OrderDto](s.base, op, err, "Failed to place order", fields)
		}

		userOK, err := idExists[domain.User](ctx, uow.Users(), req.UserID)
		if err != nil {
			return internalError[OrderDto](s.base, op, err, "Failed to place order", fields)
		}
		if !userOK {
			return fail[OrderDto](s.base, op, "User not found", result.NotFound)
		}

		// Lines for the same game are merged.
		quantities := make(map[int64]int, len(req.Items))
		var gameIDs []int64
		for _, line := range req.Items {
			if _, seen := quantities[line.GameID]; !seen {
				gameIDs = append(gameIDs, line.GameID)
			}
			quantities[line.GameID] += line.Quantity
		}

		order := &domain.Order{
			OrderNumber: s.newOrderNumber(),
			Status:      domain.OrderPending,
			Notes:       req.Notes,
			UserID:      req.UserID,
			TotalAmount: decimal.Zero,
		}
		items := make([]*domain.OrderItem, 0, len(gameIDs))
		for _, gameID := range gameIDs {
			game, err := uow.Games().GetByID(ctx, gameID)
			if errors.Is(err, repository.ErrNotFound) {
				return fail[OrderDto](s.base, op, fmt.Sprintf("Game %d not found", gameID), result.NotFound)
			}
			if err != nil {
				return internalError[OrderDto](s.base, op, err, "Failed to place order", fields)
			}
			if !game.IsActive {
				return fail[OrderDto](s.base, op, fmt.Sprintf("Game %q is no longer available", game.Title), result.Conflict)
			}

			qty := quantities[gameID]
			line := game.Price.Mul(decimal.NewFromInt(int64(qty)))
			items = append(items, &domain.OrderItem{
				Quantity:   qty,
				UnitPrice:  game.Price,
				TotalPrice: line,
				GameID:     gameID,
			})
			order.TotalAmount = order.TotalAmount.Add(line)
		}

		if _, err := uow.Orders().Add(ctx, order); err != nil {
			return internalError[OrderDto](s.base, op, err, "Failed to place order", fields)
		}
		if _, err := uow.SaveChanges(ctx); err != nil {
			return internalError[OrderDto](s.base, op, err, "Failed to place order", fields)
		}

		for _, item := range items {
			item.OrderID = order.ID
			if _, err := uow.OrderItems().Add(ctx, item); err != nil {
				return internalError[OrderDto](s.base, op, err, "Failed to place order", fields)
			}
		}
		if _, err := uow.SaveChanges(ctx); err != nil {
			return internalError[OrderDto](s.base, op, err, "Failed to place order", fields)
		}
		if err := uow.CommitTransaction(ctx); err != nil {
			return internalError[OrderDto](s.base, op, err, "Failed to place order", fields)
		}

		placed, err := uow.Orders().GetOrderWithItems(ctx, order.ID)
		if err != nil {
			return internalError[OrderDto](s.base, op, err, "Failed to place order", fields)
		}
		s.logger.WithFields(log.Fields{"order_number": order.OrderNumber, "total": order.TotalAmount.String()}).Info("order placed")
		return result.Ok(toOrderDto(placed))
	})
}

// GetOrder returns an order with its user and items resolved to games.
func (s *OrderService) GetOrder(ctx context.Context, id int64) result.Result[OrderDto] {
	const op = "get_order"

	if check := validID(id, "Invalid order ID"); check.IsFailure() {
		return fail[OrderDto](s.base, op, check.Error(), check.ErrorType())
	}

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[OrderDto] {
		order, err := uow.Orders().GetOrderWithItems(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return fail[OrderDto](s.base, op, "Order not found", result.NotFound)
		}
		if err != nil {
			return internalError[OrderDto](s.base, op, err, "Failed to retrieve order", log.Fields{"order_id": id})
		}
		return result.Ok(toOrderDto(order))
	})
}

// GetOrdersForUser lists a user's orders, newest first.
func (s *OrderService) GetOrdersForUser(ctx context.Context, userID int64) result.Result[[]OrderDto] {
	const op = "list_user_orders"

	if check := validID(userID, "Invalid User ID"); check.IsFailure() {
		return fail[[]OrderDto](s.base, op, check.Error(), check.ErrorType())
	}

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[[]OrderDto] {
		userOK, err := idExists[domain.User](ctx, uow.Users(), userID)
		if err != nil {
			return internalError[[]OrderDto](s.base, op, err, "Failed to retrieve orders", log.Fields{"user_id": userID})
		}
		if !userOK {
			return fail[[]OrderDto](s.base, op, "User not found", result.NotFound)
		}

		orders, err := uow.Orders().GetOrdersByUserID(ctx, userID)
		if err != nil {
			return internalError[[]OrderDto](s.base, op, err, "Failed to retrieve orders", log.Fields{"user_id": userID})
		}
		return result.Ok(mapSlice(orders, toOrderDto))
	})
}

// UpdateOrderStatus moves an order to the named status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status string) result.Result[OrderDto] {
	const op = "update_order_status"

	next, known := domain.ParseOrderStatus(status)
	check := result.Combine(
		validID(id, "Invalid order ID"),
		result.SuccessIf(known, fmt.Sprintf("Unknown order status %q", status), result.Validation),
	)
	if check.IsFailure() {
		return fail[OrderDto](s.base, op, check.Error(), check.ErrorType())
	}

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[OrderDto] {
		order, err := uow.Orders().GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return fail[OrderDto](s.base, op, "Order not found", result.NotFound)
		}
		if err != nil {
			return internalError[OrderDto](s.base, op, err, "Failed to update order", log.Fields{"order_id": id})
		}
		if !order.Status.CanTransitionTo(next) {
			return fail[OrderDto](s.base, op, fmt.Sprintf("Cannot change order status from %s to %s", order.Status, next), result.Conflict)
		}

		order.Status = next
		if err := uow.Orders().Update(ctx, order); err != nil {
			return internalError[OrderDto](s.base, op, err, "Failed to update order", log.Fields{"order_id": id})
		}
		if _, err := uow.SaveChanges(ctx); err != nil {
			return internalError[OrderDto](s.base, op, err, "Failed to update order", log.Fields{"order_id": id})
		}

		updated, err := uow.Orders().GetOrderWithItems(ctx, id)
		if err != nil {
			return internalError[OrderDto](s.base, op, err, "Failed to update order", log.Fields{"order_id": id})
		}
		s.logger.WithFields(log.Fields{"order_id": id, "status": next.String()}).Info("order status updated")
		return result.Ok(toOrderDto(updated))
	})
}

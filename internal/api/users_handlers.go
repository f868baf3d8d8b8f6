package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jbweber/homelab/gamestore/internal/result"
	"github.com/jbweber/homelab/gamestore/internal/service"
)

// UsersService defines the account operations the handlers need
type UsersService interface {
	GetAllUsers(ctx context.Context) result.Result[[]service.UserDto]
	GetUserByID(ctx context.Context, id int64) result.Result[service.UserDto]
	CreateUser(ctx context.Context, req service.CreateUserRequest) result.Result[service.UserDto]
}

// OrdersService defines the order operations the handlers need
type OrdersService interface {
	PlaceOrder(ctx context.Context, req service.PlaceOrderRequest) result.Result[service.OrderDto]
	GetOrder(ctx context.Context, id int64) result.Result[service.OrderDto]
	GetOrdersForUser(ctx context.Context, userID int64) result.Result[[]service.OrderDto]
	UpdateOrderStatus(ctx context.Context, id int64, status string) result.Result[service.OrderDto]
}

// Users groups account and order handlers for testability
type Users struct {
	users  UsersService
	orders OrdersService
}

func NewUsers(users UsersService, orders OrdersService) *Users {
	return &Users{users: users, orders: orders}
}

// UpdateOrderStatusRequest is the body of PATCH /orders/{id}/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// RegisterUsersRoutes mounts /users and /orders on r.
func RegisterUsersRoutes(r chi.Router, u *Users) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", u.ListUsersHandler)
		r.Post("/", u.CreateUserHandler)
		r.Get("/{id}", u.GetUserHandler)
		r.Get("/{id}/orders", u.UserOrdersHandler)
	})
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", u.PlaceOrderHandler)
		r.Get("/{id}", u.GetOrderHandler)
		r.Patch("/{id}/status", u.UpdateOrderStatusHandler)
	})
}

func (u *Users) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	writeResult(w, u.users.GetAllUsers(r.Context()), http.StatusOK)
}

func (u *Users) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	writeResult(w, u.users.GetUserByID(r.Context(), id), http.StatusOK)
}

// CreateUserHandler handles POST /users. The password never appears in the
// response.
func (u *Users) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeCreated(w, u.users.CreateUser(r.Context(), req), func(user service.UserDto) string {
		return resourcePath("users", user.ID)
	})
}

func (u *Users) UserOrdersHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	writeResult(w, u.orders.GetOrdersForUser(r.Context(), id), http.StatusOK)
}

// PlaceOrderHandler handles POST /orders.
func (u *Users) PlaceOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req service.PlaceOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeCreated(w, u.orders.PlaceOrder(r.Context(), req), func(order service.OrderDto) string {
		return resourcePath("orders", order.ID)
	})
}

func (u *Users) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	writeResult(w, u.orders.GetOrder(r.Context(), id), http.StatusOK)
}

// UpdateOrderStatusHandler handles PATCH /orders/{id}/status with a body
// such as {"status":"Shipped"}.
func (u *Users) UpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeResult(w, u.orders.UpdateOrderStatus(r.Context(), id, req.Status), http.StatusOK)
}

package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/jbweber/homelab/gamestore/internal/domain"
)

// UserRepository defines domain-specific operations for users
type UserRepository interface {
	Repository[domain.User]
	// GetByUsername matches case-sensitively
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetByEmail matches case-insensitively
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUserWithOrders(ctx context.Context, id int64) (*domain.User, error)
}

// userRepositoryImpl implements UserRepository
type userRepositoryImpl struct {
	*sqlRepository[domain.User]
}

func newUserRepository(s *Session) UserRepository {
	return &userRepositoryImpl{sqlRepository: newSQLRepository(s, userMapping)}
}

func usernameIs(username string) Predicate {
	return sq.Expr("username = ? COLLATE BINARY", username)
}

func emailIs(email string) Predicate {
	return sq.Expr("email = ? COLLATE NOCASE", email)
}

// GetByUsername retrieves a user by exact username
func (r *userRepositoryImpl) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("username is required: %w", ErrInvalidArgument)
	}
	user, err := r.FirstOrDefault(ctx, usernameIs(username))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user with username %s: %w", username, ErrNotFound)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, ignoring case
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("email is required: %w", ErrInvalidArgument)
	}
	user, err := r.FirstOrDefault(ctx, emailIs(email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
	}
	return user, nil
}

// UsernameExists checks if a username is taken
func (r *userRepositoryImpl) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.Exists(ctx, usernameIs(username))
}

// EmailExists checks if an email is taken, ignoring case
func (r *userRepositoryImpl) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.Exists(ctx, emailIs(email))
}

// GetUserWithOrders retrieves a user and their orders, newest first
func (r *userRepositoryImpl) GetUserWithOrders(ctx context.Context, id int64) (*domain.User, error) {
	return r.GetByIDWithRelations(ctx, id, "orders")
}

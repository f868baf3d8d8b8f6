package service

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/jbweber/homelab/gamestore/internal/domain"
	"github.com/jbweber/homelab/gamestore/internal/metrics"
	"github.com/jbweber/homelab/gamestore/internal/repository"
	"github.com/jbweber/homelab/gamestore/internal/result"
)

// UserService manages customer accounts.
type UserService struct {
	base
	hashCost int
}

func NewUserService(uows UnitOfWorkFactory, logger *log.Entry, m *metrics.StoreMetrics) *UserService {
	return &UserService{base: newBase(uows, logger, m, "user-service"), hashCost: bcrypt.DefaultCost}
}

func (s *UserService) GetAllUsers(ctx context.Context) result.Result[[]UserDto] {
	const op = "list_users"

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[[]UserDto] {
		users, err := uow.Users().GetAll(ctx)
		if err != nil {
			return internalError[[]UserDto](s.base, op, err, "Failed to retrieve User list", nil)
		}
		return result.Ok(mapSlice(users, toUserDto))
	})
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) result.Result[UserDto] {
	const op = "get_user"

	if check := validID(id, "Invalid User ID"); check.IsFailure() {
		return fail[UserDto](s.base, op, check.Error(), check.ErrorType())
	}

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[UserDto] {
		user, err := uow.Users().GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return fail[UserDto](s.base, op, "User not found", result.NotFound)
		}
		if err != nil {
			return internalError[UserDto](s.base, op, err, "Failed to retrieve User", log.Fields{"user_id": id})
		}
		return result.Ok(toUserDto(user))
	})
}

// CreateUser registers an account with a unique username and email. The
// password is stored as a bcrypt hash.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) result.Result[UserDto] {
	const op = "create_user"

	req.Email = strings.TrimSpace(req.Email)
	if check := validateRequest(req); check.IsFailure() {
		return fail[UserDto](s.base, op, check.Error(), check.ErrorType())
	}

	return withUnitOfWork(ctx, s.base, func(ctx context.Context, uow *repository.UnitOfWork) result.Result[UserDto] {
		taken, err := uow.Users().UsernameExists(ctx, req.Username)
		if err != nil {
			return internalError[UserDto](s.base, op, err, "Failed to create user", log.Fields{"username": req.Username})
		}
		if taken {
			return fail[UserDto](s.base, op, "Username is already taken", result.Conflict)
		}

		taken, err = uow.Users().EmailExists(ctx, req.Email)
		if err != nil {
			return internalError[UserDto](s.base, op, err, "Failed to create user", log.Fields{"username": req.Username})
		}
		if taken {
			return fail[UserDto](s.base, op, "Email is already registered", result.Conflict)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
		if err != nil {
			return internalError[UserDto](s.base, op, err, "Failed to create user", log.Fields{"username": req.Username})
		}

		user := &domain.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: string(hash),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
		}
		if _, err := uow.Users().Add(ctx, user); err != nil {
			return internalError[UserDto](s.base, op, err, "Failed to create user", log.Fields{"username": req.Username})
		}
		if _, err := uow.SaveChanges(ctx); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fail[UserDto](s.base, op, "Username or email is already registered", result.Conflict)
			}
			return internalError[UserDto](s.base, op, err, "Failed to create user", log.Fields{"username": req.Username})
		}

		s.logger.WithField("user_id", user.ID).Info("user created")
		return result.Ok(toUserDto(user))
	})
}

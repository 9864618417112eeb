package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/repositories"

	"github.com/google/uuid"
)

type UserServiceInterface interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) UserServiceInterface {
	return &userService{users: users}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NotFound("user")
		}
		return nil, common.Internal("get user", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if err := common.ValidateEmail(email); err != nil {
			return nil, common.InvalidRequest(err.Error())
		}
		if email != user.Email {
			existing, err := s.users.GetByEmail(ctx, email)
			switch {
			case err == nil && existing.ID != user.ID:
				return nil, common.Conflict("email already registered")
			case err != nil && !errors.Is(err, repositories.ErrNotFound):
				return nil, common.Internal("check email", err)
			}
			user.Email = email
		}
	}
	for field, value := range map[string]*string{"first_name": req.FirstName, "last_name": req.LastName, "phone": req.Phone} {
		if err := common.ValidateOptionalString(value, field, 100); err != nil {
			return nil, common.InvalidRequest(err.Error())
		}
	}
	if err := common.ValidateOptionalString(req.Address, "address", 500); err != nil {
		return nil, common.InvalidRequest(err.Error())
	}
	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Address != nil {
		user.Address = req.Address
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, common.NotFound("user")
		case repositories.IsUniqueViolation(err):
			return nil, common.Conflict("email already registered")
		}
		return nil, common.Internal("update user", err)
	}
	return user, nil
}

func (s *userService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return common.NotFound("user")
		case repositories.IsForeignKeyViolation(err):
			return common.Conflict("account has orders and cannot be deleted")
		}
		return common.Internal("delete user", err)
	}
	slog.InfoContext(ctx, "account deleted", "user_id", userID)
	return nil
}

// Package service holds business rules that sit between handlers and repositories.
package service

import (
	"context"
	"strings"

	"imhub/internal/auth"
	"imhub/internal/models"
	"imhub/internal/observability"
	"imhub/internal/repository"
	"imhub/internal/validation"
)

// UserService manages accounts that may sign in to the hub.
type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

// CreateUserInput is the body accepted when an admin creates an account.
type CreateUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name" validate:"max=200"`
	Email    string `json:"email" validate:"omitempty,email,max=200"`
	IsAdmin  bool   `json:"is_admin"`
	IsActive *bool  `json:"is_active"`
}

// UpdateUserInput is a partial account update; nil members are left unchanged.
type UpdateUserInput struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	FullName *string `json:"full_name" validate:"omitempty,max=200"`
	Email    *string `json:"email" validate:"omitempty,email,max=200"`
	IsAdmin  *bool   `json:"is_admin"`
	IsActive *bool   `json:"is_active"`
}

func NewUserService(userRepo repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcryptCost}
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	ctx, span := observability.GetTraceLayer().TraceAPIToServiceCall(ctx, "UserService", "CreateUser")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: hash,
		FullName:     in.FullName,
		Email:        in.Email,
		IsAdmin:      in.IsAdmin,
		IsActive:     in.IsActive == nil || *in.IsActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		observability.RecordSpanError(span, err)
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	ctx, span := observability.GetTraceLayer().TraceAPIToServiceCall(ctx, "UserService", "UpdateUser")
	defer span.End()

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = name
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.PasswordHash = hash
	}
	if in.FullName != nil {
		user.FullName = *in.FullName
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.IsAdmin != nil {
		user.IsAdmin = *in.IsAdmin
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		observability.RecordSpanError(span, err)
		return nil, err
	}
	return user, nil
}

func (s *UserService) SetAdmin(ctx context.Context, targetID uint, isAdmin bool) (*models.User, error) {
	return s.UpdateUser(ctx, targetID, UpdateUserInput{IsAdmin: &isAdmin})
}

// DeleteUser permanently removes targetID. Callers may not delete their own account.
func (s *UserService) DeleteUser(ctx context.Context, actor *auth.Identity, targetID uint) error {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if actor != nil && (actor.Username == target.Username || (actor.UserID != 0 && actor.UserID == target.ID)) {
		return models.NewForbiddenError("Cannot delete your own account")
	}
	return s.userRepo.Delete(ctx, targetID)
}

package service

import (
	"context"
	"errors"
	"testing"

	"imhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userRepoStub struct {
	listFn           func(context.Context) ([]models.User, error)
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	countFn          func(context.Context) (int64, error)
	createFn         func(context.Context, *models.User) error
	updateFn         func(context.Context, *models.User) error
	deleteFn         func(context.Context, uint) error
	touchLastLoginFn func(context.Context, uint) error
}

func (s *userRepoStub) List(ctx context.Context) ([]models.User, error) { return s.listFn(ctx) }
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Count(ctx context.Context) (int64, error) { return s.countFn(ctx) }
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *userRepoStub) TouchLastLogin(ctx context.Context, id uint) error {
	return s.touchLastLoginFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		listFn:           func(context.Context) ([]models.User, error) { return nil, nil },
		getByIDFn:        func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByUsernameFn:  func(context.Context, string) (*models.User, error) { return nil, nil },
		countFn:          func(context.Context) (int64, error) { return 0, nil },
		createFn:         func(context.Context, *models.User) error { return nil },
		updateFn:         func(context.Context, *models.User) error { return nil },
		deleteFn:         func(context.Context, uint) error { return nil },
		touchLastLoginFn: func(context.Context, uint) error { return nil },
	}
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

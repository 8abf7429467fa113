package repository

import (
	"context"
	"errors"
	"time"

	"imhub/internal/middleware"
	"imhub/internal/models"
	"imhub/internal/observability"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	TouchLastLogin(ctx context.Context, id uint) error
}

type userRepository struct {
	db     *gorm.DB
	now    func() time.Time
	logger *observability.RepoLogger
	tracer *observability.TraceLayer
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB, opts ...Option) UserRepository {
	o := buildOptions(opts)
	return &userRepository{
		db:     db.Session(&gorm.Session{NowFunc: o.now}),
		now:    o.now,
		logger: observability.NewRepoLogger("users", middleware.Logger),
		tracer: observability.GetTraceLayer(),
	}
}

func (r *userRepository) span(ctx context.Context, method string) (context.Context, trace.Span) {
	return r.tracer.TraceRepositoryMethod(ctx, method, "users", r.db.Dialector.Name())
}

func (r *userRepository) internal(ctx context.Context, span trace.Span, err error, operation string) error {
	observability.RecordSpanError(span, err)
	r.logger.LogError(ctx, err, operation)
	return models.NewInternalError(err)
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	ctx, span := r.span(ctx, "List")
	defer span.End()

	users := make([]models.User, 0)
	if err := r.db.WithContext(ctx).Order("username").Order("id").Find(&users).Error; err != nil {
		return nil, r.internal(ctx, span, err, "list")
	}
	return users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	ctx, span := r.span(ctx, "GetByID")
	defer span.End()

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, r.internal(ctx, span, err, "read")
	}
	return &user, nil
}

// GetByUsername returns nil without error when no such user exists.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, span := r.span(ctx, "GetByUsername")
	defer span.End()

	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, r.internal(ctx, span, err, "read")
	}
	return &user, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := r.span(ctx, "Count")
	defer span.End()

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, r.internal(ctx, span, err, "count")
	}
	return n, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, span := r.span(ctx, "Create")
	defer span.End()

	user.ID = 0
	user.LastLogin = nil
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username already exists")
		}
		return r.internal(ctx, span, err, "create")
	}
	r.logger.LogCreate(ctx, map[string]any{"id": user.ID, "is_admin": user.IsAdmin})
	return nil
}

// Update saves every column of user, including a changed password hash.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	ctx, span := r.span(ctx, "Update")
	defer span.End()

	res := r.db.WithContext(ctx).Model(user).
		Select("username", "password_hash", "full_name", "email", "is_admin", "is_active", "updated_at").
		Updates(user)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return models.NewConflictError("Username already exists")
		}
		return r.internal(ctx, span, res.Error, "update")
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	r.logger.LogUpdate(ctx, map[string]any{"id": user.ID})
	return nil
}

// Delete removes the user permanently.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := r.span(ctx, "Delete")
	defer span.End()

	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return r.internal(ctx, span, res.Error, "delete")
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.logger.LogDelete(ctx, map[string]any{"id": id, "permanent": true})
	return nil
}

// TouchLastLogin stamps a successful sign-in without moving updated_at.
func (r *userRepository) TouchLastLogin(ctx context.Context, id uint) error {
	ctx, span := r.span(ctx, "TouchLastLogin")
	defer span.End()

	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("last_login", r.now()).Error
	if err != nil {
		return r.internal(ctx, span, err, "update")
	}
	return nil
}

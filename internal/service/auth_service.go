package service

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"imhub/internal/auth"
	"imhub/internal/middleware"
	"imhub/internal/models"
	"imhub/internal/observability"
	"imhub/internal/repository"
)

// FallbackAdmin is the environment-configured administrator that can sign in
// without a users row.
type FallbackAdmin struct {
	Enabled  bool
	Username string
	Password string
}

// LoginResult carries a freshly issued token and the account it belongs to.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  auth.Identity
	User      *models.User
}

// AuthService verifies credentials and issues tokens.
type AuthService struct {
	userRepo repository.UserRepository
	issuer   *auth.Issuer
	fallback FallbackAdmin
}

func NewAuthService(userRepo repository.UserRepository, issuer *auth.Issuer, fallback FallbackAdmin) *AuthService {
	return &AuthService{userRepo: userRepo, issuer: issuer, fallback: fallback}
}

var errBadCredentials = models.NewUnauthorizedError("Incorrect username or password")

// Login checks the stored account first. An inactive account is refused outright;
// a password mismatch still consults the fallback admin when it is enabled.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	ctx, span := observability.GetTraceLayer().TraceAPIToServiceCall(ctx, "AuthService", "Login")
	defer span.End()

	if username == "" || password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		observability.RecordSpanError(span, err)
		return nil, err
	}

	if user != nil {
		ok, err := auth.CheckPassword(user.PasswordHash, password)
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "stored password hash is unreadable",
				slog.Uint64("user_id", uint64(user.ID)), slog.String("error", err.Error()))
			return nil, models.NewInternalError(err)
		}
		if !user.IsActive {
			observability.LoginAttempts.WithLabelValues("db", "inactive").Inc()
			if ok {
				return nil, models.NewUnauthorizedError("Account is disabled")
			}
			return nil, errBadCredentials
		}
		if ok {
			return s.issueForUser(ctx, user)
		}
		observability.LoginAttempts.WithLabelValues("db", "failure").Inc()
	}

	if s.fallbackMatches(username, password) {
		if user != nil {
			middleware.Logger.WarnContext(ctx, "fallback admin accepted for a username that also exists in the users table",
				slog.String("username", username))
		}
		return s.issueForFallback()
	}

	if user == nil {
		observability.LoginAttempts.WithLabelValues("none", "failure").Inc()
	}
	return nil, errBadCredentials
}

func (s *AuthService) fallbackMatches(username, password string) bool {
	if !s.fallback.Enabled || s.fallback.Username == "" || s.fallback.Password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.fallback.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.fallback.Password)) == 1
	return userOK && passOK
}

func (s *AuthService) issueForUser(ctx context.Context, user *models.User) (*LoginResult, error) {
	token, id, err := s.issuer.Issue(auth.Identity{UserID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		// The token is valid either way.
		middleware.Logger.WarnContext(ctx, "failed to record last login", slog.String("error", err.Error()))
	}
	observability.LoginAttempts.WithLabelValues("db", "success").Inc()
	return &LoginResult{Token: token, ExpiresAt: id.ExpiresAt, Identity: id, User: user}, nil
}

func (s *AuthService) issueForFallback() (*LoginResult, error) {
	token, id, err := s.issuer.Issue(auth.Identity{Username: s.fallback.Username, IsAdmin: true})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.LoginAttempts.WithLabelValues("fallback", "success").Inc()
	return &LoginResult{
		Token:     token,
		ExpiresAt: id.ExpiresAt,
		Identity:  id,
		User: &models.User{
			Username: s.fallback.Username,
			FullName: "System Administrator",
			IsAdmin:  true,
			IsActive: true,
		},
	}, nil
}

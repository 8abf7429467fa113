package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"imhub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "imhub-api"
	tokenAudience = "imhub-client"
)

// Identity is the caller asserted by a verified bearer token.
// UserID is zero for the configured fallback admin, which has no stored account.
type Identity struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issuer signs and verifies HS256 bearer tokens with a fixed validity window.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// IssuerOption customizes an Issuer.
type IssuerOption func(*Issuer)

// WithClock replaces the wall clock used for issuing and verifying.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer returns an Issuer keyed by secret. Rotating the secret invalidates every token.
func NewIssuer(secret string, ttl time.Duration, opts ...IssuerOption) *Issuer {
	i := &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue signs a token for id. The returned Identity carries the token id and expiry.
func (i *Issuer) Issue(id Identity) (string, Identity, error) {
	now := i.now()
	id.TokenID = uuid.NewString()
	id.ExpiresAt = now.Add(i.ttl)

	claims := jwt.MapClaims{
		"sub":      id.Username,
		"uid":      strconv.FormatUint(uint64(id.UserID), 10),
		"is_admin": id.IsAdmin,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"exp":      id.ExpiresAt.Unix(),
		"jti":      id.TokenID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", Identity{}, models.NewInternalError(err)
	}
	return signed, id, nil
}

// Verify strictly validates a raw token and returns its identity.
// Any failure is reported as an UNAUTHORIZED AppError.
func (i *Issuer) Verify(tokenString string) (*Identity, error) {
	id, err := i.decode(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.NewUnauthorizedError("Token has expired")
		}
		return nil, models.NewUnauthorizedError("Could not validate credentials")
	}
	return id, nil
}

// VerifyHeader strictly validates an Authorization header value.
func (i *Issuer) VerifyHeader(header string) (*Identity, error) {
	tokenString, ok := BearerToken(header)
	if !ok {
		return nil, models.NewUnauthorizedError("Authorization required")
	}
	return i.Verify(tokenString)
}

// VerifyOptional decodes an Authorization header value and never fails:
// a missing header, a malformed one, or any validation error yields nil.
func (i *Issuer) VerifyOptional(header string) *Identity {
	tokenString, ok := BearerToken(header)
	if !ok {
		return nil
	}
	id, err := i.decode(tokenString)
	if err != nil {
		return nil
	}
	return id
}

func (i *Issuer) decode(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}

	id := &Identity{Username: sub}
	if uid, ok := claims["uid"].(string); ok && uid != "" {
		parsed, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return nil, jwt.ErrTokenInvalidClaims
		}
		id.UserID = uint(parsed)
	}
	if admin, ok := claims["is_admin"].(bool); ok {
		id.IsAdmin = admin
	}
	if jti, ok := claims["jti"].(string); ok {
		id.TokenID = jti
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, nil
}

// BearerToken extracts the credential from a "Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

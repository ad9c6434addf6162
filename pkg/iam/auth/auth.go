package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// ============================================================================
// Ports
// ============================================================================

// TokenService emite y valida los tokens de acceso y de refresco
type TokenService interface {
	GenerateAccessToken(principal *kernel.AuthContext) (string, error)
	GenerateRefreshToken(userID kernel.UserID) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

// TokenBlacklist stores revoked token ids until the token would expire anyway
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RateLimiter counts hits per key inside a fixed window
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// TokenClaims is the decoded content of a token
type TokenClaims struct {
	UserID      kernel.UserID
	Email       string
	Name        string
	IsStaff     bool
	IsSuperuser bool
	Staff       *kernel.StaffProfile
	TokenID     string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Principal converts the claims into the request principal
func (c *TokenClaims) Principal() *kernel.AuthContext {
	id := c.UserID
	return &kernel.AuthContext{
		UserID:      &id,
		Email:       c.Email,
		Name:        c.Name,
		IsStaff:     c.IsStaff,
		IsSuperuser: c.IsSuperuser,
		Staff:       c.Staff,
		TokenID:     c.TokenID,
		ExpiresAt:   c.ExpiresAt,
	}
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeTokenGenerationFailed = ErrRegistry.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to generate token")
	CodeTokenValidationFailed = ErrRegistry.Register("TOKEN_VALIDATION_FAILED", errx.TypeAuthentication, http.StatusUnauthorized, "Invalid or expired token")
	CodeTokenRevoked          = ErrRegistry.Register("TOKEN_REVOKED", errx.TypeAuthentication, http.StatusUnauthorized, "Token has been revoked")
	CodeInvalidRefreshToken   = ErrRegistry.Register("INVALID_REFRESH_TOKEN", errx.TypeAuthentication, http.StatusUnauthorized, "Invalid refresh token")
	CodeInvalidCredentials    = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeMissingCredentials    = ErrRegistry.Register("MISSING_CREDENTIALS", errx.TypeValidation, http.StatusBadRequest, "email and password are required")
	CodeRateLimited           = ErrRegistry.Register("RATE_LIMITED", errx.TypeBusiness, http.StatusTooManyRequests, "Too many attempts, try again later")
)

func ErrTokenGenerationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenGenerationFailed)
}

func ErrTokenValidationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenValidationFailed)
}

func ErrTokenRevoked() *errx.Error {
	return ErrRegistry.New(CodeTokenRevoked)
}

func ErrInvalidRefreshToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidRefreshToken)
}

// ErrInvalidCredentials is a 404 so the response never tells whether the
// account exists
func ErrInvalidCredentials() *errx.Error {
	return ErrRegistry.New(CodeInvalidCredentials)
}

func ErrMissingCredentials() *errx.Error {
	return ErrRegistry.New(CodeMissingCredentials)
}

func ErrRateLimited() *errx.Error {
	return ErrRegistry.New(CodeRateLimited)
}

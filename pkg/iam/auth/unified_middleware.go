package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/iam"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/logx"
)

const authLocalsKey = "auth"

// Middleware resolves the request principal from a bearer token or the
// access token cookie. The token only names the user: role, company and
// is_active are read from the stored row on every request.
type Middleware struct {
	tokenService TokenService
	blacklist    TokenBlacklist
	userRepo     user.UserRepository
	cookieName   string
}

func NewMiddleware(tokenService TokenService, blacklist TokenBlacklist, userRepo user.UserRepository, cookieName string) *Middleware {
	if cookieName == "" {
		cookieName = "access_token"
	}
	return &Middleware{
		tokenService: tokenService,
		blacklist:    blacklist,
		userRepo:     userRepo,
		cookieName:   cookieName,
	}
}

// Authenticate requires a valid, unrevoked credential
func (am *Middleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ExtractToken(c, am.cookieName)
		if token == "" {
			return iam.ErrUnauthorized()
		}
		principal, err := am.resolve(c, token)
		if err != nil {
			return err
		}
		c.Locals(authLocalsKey, principal)
		return c.Next()
	}
}

// Optional lets anonymous callers through. An invalid credential reads as
// anonymous on GET and HEAD and fails with 401 on every other method.
func (am *Middleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ExtractToken(c, am.cookieName)
		if token == "" {
			return c.Next()
		}
		principal, err := am.resolve(c, token)
		if err != nil {
			readOnly := c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead
			if readOnly && errx.IsType(err, errx.TypeAuthentication) {
				return c.Next()
			}
			return err
		}
		c.Locals(authLocalsKey, principal)
		return c.Next()
	}
}

func (am *Middleware) resolve(c *fiber.Ctx, token string) (*kernel.AuthContext, error) {
	claims, err := am.tokenService.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	if am.blacklist != nil && claims.TokenID != "" {
		revoked, err := am.blacklist.IsRevoked(c.Context(), claims.TokenID)
		if err != nil {
			// fail open: the blacklist only shortens a token's life
			logx.WithField("error", err.Error()).Warn("token blacklist unavailable")
		} else if revoked {
			return nil, ErrTokenRevoked()
		}
	}

	u, err := am.userRepo.FindByID(c.Context(), claims.UserID)
	if err != nil {
		if errx.IsType(err, errx.TypeNotFound) {
			return nil, iam.ErrUnauthorized().WithDetail("reason", "unknown user")
		}
		return nil, errx.Wrap(err, "failed to load principal", errx.TypeInternal)
	}
	if !u.IsActive {
		return nil, iam.ErrUnauthorized().WithDetail("reason", "inactive user")
	}

	principal := u.Principal()
	principal.TokenID = claims.TokenID
	principal.ExpiresAt = claims.ExpiresAt
	return principal, nil
}

// ExtractToken lee el token del header Authorization o de la cookie
func ExtractToken(c *fiber.Ctx, cookieName string) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "" {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(cookieName)
}

// GetAuthContext helper to extract auth context from Fiber
func GetAuthContext(c *fiber.Ctx) (*kernel.AuthContext, bool) {
	authContext, ok := c.Locals(authLocalsKey).(*kernel.AuthContext)
	return authContext, ok && authContext.IsValid()
}

// ScopeOf resolves the Scope of the request; anonymous when no principal
func ScopeOf(c *fiber.Ctx) scopes.Scope {
	principal, _ := GetAuthContext(c)
	return scopes.Resolve(principal)
}

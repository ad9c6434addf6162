package auth

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/config"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/httpx"
	"github.com/mlinyun/Peekpa/pkg/iam"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/logx"
)

// Registrar creates candidate accounts
type Registrar interface {
	Signup(ctx context.Context, req user.SignupRequest) (*user.User, error)
}

// AuthHandlers maneja las rutas de autenticación con Fiber
type AuthHandlers struct {
	authenticator *Authenticator
	registrar     Registrar
	tokenService  TokenService
	blacklist     TokenBlacklist
	userRepo      user.UserRepository
	cookies       config.CookieConfig
}

// NewAuthHandlers crea un nuevo handler de autenticación
func NewAuthHandlers(
	authenticator *Authenticator,
	registrar Registrar,
	tokenService TokenService,
	blacklist TokenBlacklist,
	userRepo user.UserRepository,
	cookies config.CookieConfig,
) *AuthHandlers {
	return &AuthHandlers{
		authenticator: authenticator,
		registrar:     registrar,
		tokenService:  tokenService,
		blacklist:     blacklist,
		userRepo:      userRepo,
		cookies:       cookies,
	}
}

// TokenResponse respuesta con tokens de autenticación
type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int           `json:"expires_in"`
	User         *user.UserDTO `json:"user,omitempty"`
}

// RefreshTokenRequest estructura para renovar token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RegisterRoutes registers the auth routes. limit guards the credential
// endpoints and may be nil.
func (ah *AuthHandlers) RegisterRoutes(router fiber.Router, authMiddleware *Middleware, limit fiber.Handler) {
	auth := router.Group("/auth")

	credentials := []fiber.Handler{}
	if limit != nil {
		credentials = append(credentials, limit)
	}
	auth.Post("/signup", append(credentials, ah.Signup)...)
	auth.Post("/signin", append(credentials, ah.login(AudienceCandidate))...)
	auth.Post("/login", append(credentials, ah.login(AudienceStaff))...)
	auth.Post("/refresh", ah.RefreshToken)
	auth.Post("/logout", authMiddleware.Authenticate(), ah.Logout)
	auth.Get("/me", authMiddleware.Authenticate(), ah.GetCurrentUser)
}

// Signup registra un candidato y abre su sesión
func (ah *AuthHandlers) Signup(c *fiber.Ctx) error {
	var req user.SignupRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	u, err := ah.registrar.Signup(c.Context(), req)
	if err != nil {
		return err
	}
	resp, err := ah.issue(c, u)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (ah *AuthHandlers) login(aud Audience) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cred Credentials
		if err := httpx.Bind(c, &cred); err != nil {
			return err
		}
		u, err := ah.authenticator.Login(c.Context(), cred, aud)
		if err != nil {
			return err
		}
		resp, err := ah.issue(c, u)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// RefreshToken renueva un access token usando refresh token
func (ah *AuthHandlers) RefreshToken(c *fiber.Ctx) error {
	var req RefreshTokenRequest
	if len(c.Body()) > 0 {
		if err := httpx.Bind(c, &req); err != nil {
			return err
		}
	}
	// Alternativamente, obtener refresh token de cookie
	if req.RefreshToken == "" {
		req.RefreshToken = c.Cookies(ah.cookies.RefreshTokenName)
	}
	if req.RefreshToken == "" {
		return ErrInvalidRefreshToken().WithDetail("error", "refresh_token is required")
	}

	claims, err := ah.tokenService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return err
	}
	u, err := ah.userRepo.FindByID(c.Context(), claims.UserID)
	if err != nil {
		if errx.IsType(err, errx.TypeNotFound) {
			return iam.ErrUnauthorized()
		}
		return err
	}
	if !u.IsActive {
		return iam.ErrUnauthorized()
	}

	accessToken, err := ah.tokenService.GenerateAccessToken(u.Principal())
	if err != nil {
		return err
	}
	ah.setCookie(c, ah.cookies.AccessTokenName, accessToken, ah.tokenService.AccessTokenTTL())

	return c.JSON(TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(ah.tokenService.AccessTokenTTL() / time.Second),
	})
}

// Logout revoca el access token actual y limpia las cookies
func (ah *AuthHandlers) Logout(c *fiber.Ctx) error {
	authContext, ok := GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	if ah.blacklist != nil && authContext.TokenID != "" {
		if err := ah.blacklist.Revoke(c.Context(), authContext.TokenID, authContext.ExpiresAt); err != nil {
			logx.WithFields(logx.Fields{"user_id": authContext.UserID, "error": err.Error()}).Warn("failed to revoke token")
		}
	}

	ah.clearCookie(c, ah.cookies.AccessTokenName)
	ah.clearCookie(c, ah.cookies.RefreshTokenName)

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser obtiene la información del usuario autenticado
func (ah *AuthHandlers) GetCurrentUser(c *fiber.Ctx) error {
	authContext, ok := GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}
	u, err := ah.userRepo.FindByID(c.Context(), *authContext.UserID)
	if err != nil {
		return err
	}
	return c.JSON(u.ToDTO())
}

func (ah *AuthHandlers) issue(c *fiber.Ctx, u *user.User) (*TokenResponse, error) {
	accessToken, err := ah.tokenService.GenerateAccessToken(u.Principal())
	if err != nil {
		return nil, err
	}
	refreshToken, err := ah.tokenService.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, err
	}

	ah.setCookie(c, ah.cookies.AccessTokenName, accessToken, ah.tokenService.AccessTokenTTL())
	ah.setCookie(c, ah.cookies.RefreshTokenName, refreshToken, ah.tokenService.RefreshTokenTTL())

	dto := u.ToDTO()
	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(ah.tokenService.AccessTokenTTL() / time.Second),
		User:         &dto,
	}, nil
}

func (ah *AuthHandlers) setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: ah.cookies.HTTPOnly,
		Secure:   ah.cookies.Secure,
		SameSite: ah.cookies.SameSite,
		Domain:   ah.cookies.Domain,
		Path:     ah.cookies.Path,
	})
}

func (ah *AuthHandlers) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: ah.cookies.HTTPOnly,
		Domain:   ah.cookies.Domain,
		Path:     ah.cookies.Path,
	})
}

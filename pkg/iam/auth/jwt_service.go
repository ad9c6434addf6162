package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mlinyun/Peekpa/pkg/config"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// JWTService implementación del TokenService usando JWT (HS256)
type JWTService struct {
	secretKey       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	issuer          string
	audience        []string
	now             kernel.Clock
}

// NewJWTServiceFromConfig crea una nueva instancia del servicio JWT
func NewJWTServiceFromConfig(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey:       []byte(cfg.SecretKey),
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		issuer:          cfg.Issuer,
		audience:        cfg.Audience,
		now:             kernel.SystemClock,
	}
}

func (j *JWTService) WithClock(c kernel.Clock) *JWTService {
	j.now = c
	return j
}

var _ TokenService = (*JWTService)(nil)

// JWTClaims son los claims personalizados del token. company_id and
// is_manager are only present for staff with a company profile.
type JWTClaims struct {
	UserID      kernel.UserID     `json:"user_id"`
	Email       string            `json:"email,omitempty"`
	Name        string            `json:"name,omitempty"`
	IsStaff     bool              `json:"is_staff"`
	IsSuperuser bool              `json:"is_superuser,omitempty"`
	CompanyID   *kernel.CompanyID `json:"company_id,omitempty"`
	IsManager   *bool             `json:"is_manager,omitempty"`
	TokenType   string            `json:"token_type"`
	jwt.RegisteredClaims
}

func (j *JWTService) AccessTokenTTL() time.Duration  { return j.accessTokenTTL }
func (j *JWTService) RefreshTokenTTL() time.Duration { return j.refreshTokenTTL }

// GenerateAccessToken genera un token de acceso para el principal
func (j *JWTService) GenerateAccessToken(p *kernel.AuthContext) (string, error) {
	if !p.IsValid() {
		return "", ErrTokenGenerationFailed().WithDetail("error", "principal has no user")
	}
	claims := JWTClaims{
		UserID:           *p.UserID,
		Email:            p.Email,
		Name:             p.Name,
		IsStaff:          p.IsStaff,
		IsSuperuser:      p.IsSuperuser,
		TokenType:        tokenTypeAccess,
		RegisteredClaims: j.registered(*p.UserID, j.accessTokenTTL),
	}
	if p.IsStaff && p.Staff != nil {
		companyID := p.Staff.CompanyID
		manager := p.Staff.IsManager
		claims.CompanyID = &companyID
		claims.IsManager = &manager
	}
	return j.sign(claims)
}

// GenerateRefreshToken genera un token de refresco; only the user id travels,
// the rest is read again from the store on refresh
func (j *JWTService) GenerateRefreshToken(userID kernel.UserID) (string, error) {
	return j.sign(JWTClaims{
		UserID:           userID,
		TokenType:        tokenTypeRefresh,
		RegisteredClaims: j.registered(userID, j.refreshTokenTTL),
	})
}

// ValidateAccessToken valida y decodifica un token de acceso
func (j *JWTService) ValidateAccessToken(token string) (*TokenClaims, error) {
	return j.validate(token, tokenTypeAccess)
}

// ValidateRefreshToken valida un token de refresco
func (j *JWTService) ValidateRefreshToken(token string) (*TokenClaims, error) {
	claims, err := j.validate(token, tokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken().WithDetail("error", err.Error())
	}
	return claims, nil
}

func (j *JWTService) registered(userID kernel.UserID, ttl time.Duration) jwt.RegisteredClaims {
	now := j.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    j.issuer,
		Subject:   userID.String(),
		Audience:  j.audience,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (j *JWTService) sign(claims JWTClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", ErrTokenGenerationFailed().WithDetail("error", err.Error())
	}
	return s, nil
}

func (j *JWTService) validate(tokenString, tokenType string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		// Verificar el método de firma
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithIssuer(j.issuer))
	if err != nil {
		return nil, ErrTokenValidationFailed().WithDetail("error", err.Error())
	}

	jc, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenValidationFailed().WithDetail("error", "invalid claims")
	}
	if jc.TokenType != tokenType {
		return nil, ErrTokenValidationFailed().WithDetail("error", "wrong token type")
	}
	if jc.UserID.IsEmpty() {
		return nil, ErrTokenValidationFailed().WithDetail("error", "missing user")
	}

	out := &TokenClaims{
		UserID:      jc.UserID,
		Email:       jc.Email,
		Name:        jc.Name,
		IsStaff:     jc.IsStaff,
		IsSuperuser: jc.IsSuperuser,
		TokenID:     jc.ID,
	}
	if jc.IssuedAt != nil {
		out.IssuedAt = jc.IssuedAt.Time
	}
	if jc.ExpiresAt != nil {
		out.ExpiresAt = jc.ExpiresAt.Time
	}
	if jc.IsStaff && jc.CompanyID != nil {
		out.Staff = &kernel.StaffProfile{CompanyID: *jc.CompanyID, IsManager: jc.IsManager != nil && *jc.IsManager}
	}
	return out, nil
}

package config

import "time"

type AuthConfig struct {
	JWT       JWTConfig
	Cookie    CookieConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
	Audience        []string
}

type CookieConfig struct {
	AccessTokenName  string
	RefreshTokenName string
	Domain           string
	Path             string
	Secure           bool
	HTTPOnly         bool
	SameSite         string
}

type PasswordConfig struct {
	BcryptCost int
	MinLength  int
	MaxLength  int
}

// RateLimitConfig throttles the credential endpoints per client IP
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET_KEY", ""),
			AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
			RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
			Issuer:          getEnv("JWT_ISSUER", "peekpa"),
			Audience:        getEnvStringSlice("JWT_AUDIENCE", []string{"peekpa-api"}),
		},
		Cookie: CookieConfig{
			AccessTokenName:  getEnv("COOKIE_ACCESS_TOKEN_NAME", "access_token"),
			RefreshTokenName: getEnv("COOKIE_REFRESH_TOKEN_NAME", "refresh_token"),
			Domain:           getEnv("COOKIE_DOMAIN", ""),
			Path:             getEnv("COOKIE_PATH", "/"),
			Secure:           getEnvBool("COOKIE_SECURE", false),
			HTTPOnly:         getEnvBool("COOKIE_HTTP_ONLY", true),
			SameSite:         getEnv("COOKIE_SAME_SITE", "Lax"),
		},
		Password: PasswordConfig{
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
			MinLength:  getEnvInt("PASSWORD_MIN_LENGTH", 6),
			MaxLength:  getEnvInt("PASSWORD_MAX_LENGTH", 20),
		},
		RateLimit: RateLimitConfig{
			Limit:  getEnvInt("AUTH_RATE_LIMIT", 20),
			Window: getEnvDuration("AUTH_RATE_WINDOW", time.Minute),
		},
	}
}

package authinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mlinyun/Peekpa/pkg/iam/auth"
	"github.com/redis/go-redis/v9"
)

// RedisTokenBlacklist implementación en Redis del TokenBlacklist. Each
// revoked token id is a key that expires with the token.
type RedisTokenBlacklist struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisTokenBlacklist crea un blacklist respaldado por Redis
func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client, now: time.Now}
}

var _ auth.TokenBlacklist = (*RedisTokenBlacklist)(nil)

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("token_blacklist:%s", tokenID)
}

// Revoke almacena el jti hasta su expiración
func (b *RedisTokenBlacklist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(b.now())
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, blacklistKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token in Redis: %w", err)
	}
	return nil
}

// IsRevoked verifica si el jti fue revocado
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKey(tokenID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check token in Redis: %w", err)
	}
	return n == 1, nil
}

package authinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/mlinyun/Peekpa/pkg/iam/auth"
	"github.com/redis/go-redis/v9"
)

// fixedWindow increments the counter and starts the window on the first hit
var fixedWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisRateLimiter is a fixed window counter shared by every instance
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, limit: limit, window: window}
}

var _ auth.RateLimiter = (*RedisRateLimiter)(nil)

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	n, err := fixedWindow.Run(ctx, l.client, []string{"rate_limit:" + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to count attempts in Redis: %w", err)
	}
	return n <= int64(l.limit), nil
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimiter is a fixed-window per-IP admission gate backed by Redis,
// for deployments where demo-login limits must hold across instances.
// Key format: demo_rl:<ip>
type RateLimiter struct {
	client *redis.Client
	quota  int64
	window time.Duration
	log    zerolog.Logger
}

func NewRateLimiter(client *redis.Client, quota int, window time.Duration, log zerolog.Logger) *RateLimiter {
	if quota <= 0 {
		quota = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, quota: int64(quota), window: window, log: log}
}

// TryConsume counts the attempt in the current window and reports whether it
// stays within quota. A Redis failure admits the request; demo logins degrade
// to unlimited rather than unavailable when the counter store is down.
func (l *RateLimiter) TryConsume(ctx context.Context, ip string) bool {
	key := fmt.Sprintf("demo_rl:%s", ip)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.log.Warn().Err(err).Str("ip", ip).Msg("rate limit counter unavailable")
		return true
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.log.Warn().Err(err).Str("ip", ip).Msg("rate limit window expiry failed")
		}
	}
	return n <= l.quota
}

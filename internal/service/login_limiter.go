package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRateLimited = errors.New("too many attempts, try again later")

// AttemptLimiter throttles the authentication endpoints.
type AttemptLimiter interface {
	Allow(ctx context.Context, scope, identifier, ip string) error
}

// RedisLimiter is a fixed-window counter per (scope, identifier) and per
// (scope, ip). Redis being unreachable fails open; the limiter must never
// take login down with it.
type RedisLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewRedisLimiter(client *redis.Client, maxAttempts int, window time.Duration) *RedisLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, scope, identifier, ip string) error {
	if identifier != "" {
		if err := l.bump(ctx, attemptKey(scope, "id", identifier)); err != nil {
			return err
		}
	}
	if ip != "" {
		if err := l.bump(ctx, attemptKey(scope, "ip", ip)); err != nil {
			return err
		}
	}
	return nil
}

func (l *RedisLimiter) bump(ctx context.Context, key string) error {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return nil
	}
	if count == 1 {
		_ = l.client.Expire(ctx, key, l.window).Err()
	}
	if count > int64(l.maxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func attemptKey(scope, kind, value string) string {
	return fmt.Sprintf("authlimit:%s:%s:%s", scope, kind, strings.ToLower(value))
}

// NoopLimiter is used when no Redis address is configured.
type NoopLimiter struct{}

func (NoopLimiter) Allow(ctx context.Context, scope, identifier, ip string) error {
	return nil
}

var (
	_ AttemptLimiter = (*RedisLimiter)(nil)
	_ AttemptLimiter = NoopLimiter{}
)

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "projectflow:login_attempts:"

// LoginLimiter counts failed logins per key in redis. A key is blocked once it
// reaches maxAttempts failures inside window; the counter expires with the window.
type LoginLimiter struct {
	client      redis.Cmdable
	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(client redis.Cmdable, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

// NewClient builds a redis client from a host:port or a redis:// URL.
func NewClient(addr, password string, db int) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if password != "" {
			opts.Password = password
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}), nil
}

func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Get(ctx, keyPrefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return count < l.maxAttempts, nil
}

func (l *LoginLimiter) Fail(ctx context.Context, key string) error {
	cacheKey := keyPrefix + key
	count, err := l.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return err
	}
	// Set expiry on first failure
	if count == 1 {
		return l.client.Expire(ctx, cacheKey, l.window).Err()
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, keyPrefix+key).Err()
}

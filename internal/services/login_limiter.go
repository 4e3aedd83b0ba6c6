package services

import (
	"context"
	"strings"
)

// LoginLimiter throttles repeated failed logins for one account.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type noopLimiter struct{}

// NoopLoginLimiter never throttles. It is used when no redis is configured.
func NoopLoginLimiter() LoginLimiter { return noopLimiter{} }

func (noopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
func (noopLimiter) Fail(context.Context, string) error          { return nil }
func (noopLimiter) Reset(context.Context, string) error         { return nil }

func loginKey(subdomain, email string) string {
	return strings.ToLower(subdomain) + ":" + strings.ToLower(email)
}

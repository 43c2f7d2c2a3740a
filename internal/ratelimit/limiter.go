// Package ratelimit gates anonymous URL creation with a fixed counting window per client
// fingerprint. Counters live in a CounterStore so several instances share one quota.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"linkly/internal/apperrors"
)

const keyPrefix = "ratelimit:anon:"

// CounterStore is an atomic counting store with TTL. IncrWithExpiry must increment key
// and, when the result is 1, expire it after window, as one linearizable step.
type CounterStore interface {
	IncrWithExpiry(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter decides whether an anonymous client may create another URL.
type Limiter interface {
	CheckAndIncrement(ctx context.Context, fingerprint string) error
}

type Config struct {
	Limit  int64         // creations allowed per window
	Window time.Duration // window length, starting at the first creation
}

type limiter struct {
	store  CounterStore
	cfg    Config
	logger *zap.Logger
}

// NewLimiter creates a Limiter over store
func NewLimiter(store CounterStore, cfg Config, logger *zap.Logger) Limiter {
	return &limiter{store: store, cfg: cfg, logger: logger}
}

// CheckAndIncrement counts one request for fingerprint. It returns a *apperrors.RateLimitError
// once the count exceeds the limit and a *apperrors.UnavailableError when the store fails.
func (l *limiter) CheckAndIncrement(ctx context.Context, fingerprint string) error {
	count, err := l.store.IncrWithExpiry(ctx, keyPrefix+fingerprint, l.cfg.Window)
	if err != nil {
		return &apperrors.UnavailableError{Dependency: "rate limit store", Err: err}
	}

	if count > l.cfg.Limit {
		l.logger.Info("anonymous quota exceeded",
			zap.String("fingerprint", fingerprint),
			zap.Int64("count", count),
			zap.Int64("limit", l.cfg.Limit),
		)
		return &apperrors.RateLimitError{Limit: l.cfg.Limit, Window: l.cfg.Window}
	}

	return nil
}

// Fingerprint derives the anonymous identity key from client address and user agent.
func Fingerprint(clientIP, userAgent string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", clientIP, userAgent)))
	return hex.EncodeToString(sum[:])
}

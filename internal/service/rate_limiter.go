package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"biliticket/admission/internal/repository"
)

// RateLimiter caps attempts per key in a fixed window. A nil *RateLimiter or
// a non-positive limit allows everything.
type RateLimiter struct {
	store  repository.AttemptStore
	scope  string
	limit  int
	window time.Duration
	logger *zap.Logger
}

func NewRateLimiter(store repository.AttemptStore, scope string, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, scope: scope, limit: limit, window: window, logger: logger}
}

// Allow returns ErrTooManyAttempts once key exceeds the limit. Store failures
// fail open so a Redis outage never blocks the door.
func (l *RateLimiter) Allow(ctx context.Context, key string) error {
	if l == nil || l.limit <= 0 || l.store == nil {
		return nil
	}
	count, err := l.store.Incr(ctx, l.scope+":"+key, l.window)
	if err != nil {
		l.logger.Warn("rate limiter store error", zap.String("scope", l.scope), zap.Error(err))
		return nil
	}
	if count > int64(l.limit) {
		return ErrTooManyAttempts
	}
	return nil
}

package repository

import (
	"context"
	"time"
)

// AttemptStore counts events per key inside a fixed window.
// Implementations: Redis (multi-instance) or in-memory (local dev / single instance).
type AttemptStore interface {
	// Incr bumps the counter for key and returns the new value. The window
	// starts with the first increment and the counter resets when it ends.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

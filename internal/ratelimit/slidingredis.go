package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces limiter buckets in Redis.
const DefaultPrefix = "rl:"

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter throttles burst submissions with a sliding window over a Redis
// sorted set. Each event is scored with its nanosecond timestamp; pruning
// scores older than the window and counting what remains gives the current
// window total, so the limit slides continuously instead of resetting on
// fixed bucket edges.
type Limiter struct {
	Client *redis.Client
	Prefix string
}

// Allow records an event under key and reports whether it stays within max
// events per window. A nil client or a non-positive limit disables
// throttling.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (Decision, error) {
	resetAt := time.Now().Add(window)
	if l.Client == nil || max <= 0 || window <= 0 {
		return Decision{Allowed: true, Remaining: max, ResetAt: resetAt}, nil
	}

	now := time.Now()
	prefix := l.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	bucket := prefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, bucket, "-inf", cutoff)
	pipe.ZAdd(ctx, bucket, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	count := pipe.ZCard(ctx, bucket)
	pipe.Expire(ctx, bucket, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{ResetAt: resetAt}, err
	}

	used := int(count.Val())
	remaining := max - used
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: used <= max, Remaining: remaining, ResetAt: resetAt}, nil
}

package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/simsparts/sims-api/internal/core/ports"
)

const rateLimitPrefix = "ratelimit:"

// RateLimiter is a Redis sliding-window attempt counter. Each (identifier,
// action) pair owns a sorted set of attempt timestamps; expired entries are
// trimmed on every check and the key itself expires with the window, so no
// pruning job is needed.
type RateLimiter struct {
	client *redis.Client
	now    func() time.Time
}

var _ ports.RateLimitStore = (*RateLimiter)(nil)

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

// Allow trims the window, counts the surviving attempts, and records the
// current one atomically. The over-budget attempt is recorded like any other.
func (r *RateLimiter) Allow(ctx context.Context, identifier, action, _ string, max int, window time.Duration) (bool, error) {
	key := rateLimitPrefix + identifier + ":" + action
	now := r.now()
	cutoff := now.Add(-window)

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff.UnixNano(), 10))
	count := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate-limit pipeline: %w", err)
	}
	return count.Val() < int64(max), nil
}

// PruneAttempts is a no-op: window keys carry their own TTL.
func (r *RateLimiter) PruneAttempts(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

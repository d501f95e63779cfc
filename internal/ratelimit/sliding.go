package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Sliding is a sliding-window limiter backed by Redis sorted sets, so the
// budget is shared by every replica watching the same till.
type Sliding struct {
	Client *redis.Client
	Prefix string
	Window time.Duration
	Max    int
	Now    func() time.Time
}

// Allow registers an event for key and reports whether it is within the limit.
func (l Sliding) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	until := now.Add(l.Window)
	if l.Client == nil || l.Max <= 0 || l.Window <= 0 {
		return Decision{Allowed: true, Limit: l.Max, Remaining: l.Max, Reset: until}, nil
	}

	redisKey := l.Prefix + key
	cutoff := float64(now.Add(-l.Window).UnixNano())
	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("(%f", cutoff))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, l.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{Limit: l.Max, Reset: until}, fmt.Errorf("ratelimit: sliding window: %w", err)
	}

	current := int(countCmd.Val())
	return Decision{
		Allowed:   current <= l.Max,
		Limit:     l.Max,
		Remaining: max(l.Max-current, 0),
		Reset:     until,
	}, nil
}

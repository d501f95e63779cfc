package ratelimit

import (
	"context"
	"fmt"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Memory is a fixed-window limiter held in process memory, used when no
// Redis is configured.
type Memory struct {
	limiter *limiter.Limiter
}

// NewMemory allows max events per window for each key.
func NewMemory(max int, window time.Duration) *Memory {
	rate := limiter.Rate{Period: window, Limit: int64(max)}
	return &Memory{limiter: limiter.New(memory.NewStore(), rate)}
}

// Allow implements Limiter.
func (m *Memory) Allow(ctx context.Context, key string) (Decision, error) {
	lc, err := m.limiter.Get(ctx, key)
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: memory store: %w", err)
	}
	return Decision{
		Allowed:   !lc.Reached,
		Limit:     int(lc.Limit),
		Remaining: int(lc.Remaining),
		Reset:     time.Unix(lc.Reset, 0),
	}, nil
}

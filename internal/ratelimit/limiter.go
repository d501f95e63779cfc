// Package ratelimit caps how fast a client may push decode events.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter counts one event for key and reports whether it fits the limit.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

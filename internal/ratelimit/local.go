// Package ratelimit provides the in-process implementation of
// domain.RateLimiter for the upstream requests-per-minute ceiling.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/mshenfield/cleansweep/internal/domain"
)

// Local is a token-bucket limiter sized to a per-minute request quota. The
// bucket holds a full window's worth of tokens, so a fresh process can burst
// up to the quota and then refills at quota/60 per second.
type Local struct {
	limiter *rate.Limiter
}

// NewLocal creates a limiter allowing requestsPerMinute outbound requests.
func NewLocal(requestsPerMinute int) *Local {
	return &Local{
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute),
	}
}

// Wait blocks until a request may be sent or ctx is cancelled.
func (l *Local) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("ratelimit: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.RateLimiter = (*Local)(nil)

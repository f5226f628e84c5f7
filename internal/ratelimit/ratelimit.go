package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/PoorRican/BidBeast/internal/model"
)

// LimitedReasoner is a decorator that paces calls to the wrapped Reasoner so
// enrichment fan-out cannot burst the reasoning API. All calls, regardless of
// which batch or goroutine issued them, share one token bucket.
type LimitedReasoner struct {
	inner   model.Reasoner
	limiter *rate.Limiter
}

// NewLimitedReasoner wraps a Reasoner with a minimum delay between calls.
// A small burst is allowed so a batch's first requests do not queue behind
// an idle bucket.
func NewLimitedReasoner(inner model.Reasoner, minDelay time.Duration, burst int) *LimitedReasoner {
	if burst < 1 {
		burst = 1
	}
	return &LimitedReasoner{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(minDelay), burst),
	}
}

// Summarize waits for the limiter, then delegates.
func (r *LimitedReasoner) Summarize(ctx context.Context, description string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}
	return r.inner.Summarize(ctx, description)
}

// Judge waits for the limiter, then delegates.
func (r *LimitedReasoner) Judge(ctx context.Context, description string) (model.Judgment, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return model.NewJudgment(), fmt.Errorf("rate limiter wait: %w", err)
	}
	return r.inner.Judge(ctx, description)
}

package usecases

import (
	"context"
	"time"

	"fleet-sync-server/internal/infra/cache"
)

const _rateLimitGateKey = "driver_sync:rate_limit:until"

// Pauser blocks the calling goroutine. Tests replace it to run the state
// machines without waiting.
type Pauser interface {
	Pause(ctx context.Context, d time.Duration) error
}

type TimerPauser struct{}

var _ Pauser = TimerPauser{}

func (TimerPauser) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RateLimitGate is the only state shared between jobs: once the API rate
// limits one of them, every job holds its next request until the deadline.
type RateLimitGate struct {
	cache cache.Cache
	now   func() time.Time
}

func NewRateLimitGate(c cache.Cache) *RateLimitGate {
	return &RateLimitGate{cache: c, now: time.Now}
}

func (g *RateLimitGate) WithClock(now func() time.Time) *RateLimitGate {
	g.now = now
	return g
}

// Block moves the shared deadline forward by d. A deadline already further
// in the future is kept.
func (g *RateLimitGate) Block(ctx context.Context, d time.Duration) {
	if g == nil || d <= 0 {
		return
	}
	until := g.now().Add(d)
	if current, ok := g.deadline(ctx); ok && current.After(until) {
		return
	}
	g.cache.Set(ctx, _rateLimitGateKey, until.Format(time.RFC3339Nano), d)
}

// Wait pauses until the shared deadline has passed.
func (g *RateLimitGate) Wait(ctx context.Context, pauser Pauser) error {
	if g == nil {
		return ctx.Err()
	}
	until, ok := g.deadline(ctx)
	if !ok {
		return ctx.Err()
	}
	return pauser.Pause(ctx, until.Sub(g.now()))
}

func (g *RateLimitGate) deadline(ctx context.Context) (time.Time, bool) {
	value, ok := g.cache.Get(ctx, _rateLimitGateKey)
	if !ok {
		return time.Time{}, false
	}
	raw, ok := value.(string)
	if !ok {
		return time.Time{}, false
	}
	until, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return until, true
}

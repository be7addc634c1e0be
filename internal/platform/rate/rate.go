// Package rate provides the limiter workers use to pace their outbound
// queries. It wraps golang.org/x/time/rate with a nil-safe handle.
package rate

import (
	"context"
	"time"

	xrate "golang.org/x/time/rate"
)

// Limiter is a token bucket. A nil *Limiter never limits, so workers can
// hold an optional limiter without branching.
type Limiter struct {
	lim *xrate.Limiter
	now func() time.Time
}

// New creates a limiter that refills rate tokens per second up to burst.
// The bucket starts full. Non-positive values default to 1.
//
// Example:
//
//	limiter := rate.New(10, 5) // 10 req/s, burst of 5
func New(rate float64, burst int) *Limiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		lim: xrate.NewLimiter(xrate.Limit(rate), burst),
		now: time.Now,
	}
}

// FromConfig returns nil (unlimited) when perSecond is not positive.
func FromConfig(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	return New(perSecond, burst)
}

// withClock swaps the time source; tests only.
func (l *Limiter) withClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Wait blocks until a token is available or ctx is done. A cancelled wait
// returns its token to the bucket.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	now := l.now()
	r := l.lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Allow consumes a token if one is available right now.
func (l *Limiter) Allow() bool {
	return l.AllowN(1)
}

// AllowN consumes n tokens if all are available right now.
func (l *Limiter) AllowN(n int) bool {
	if l == nil {
		return true
	}
	return l.lim.AllowN(l.now(), n)
}

// Tokens returns the tokens currently available.
func (l *Limiter) Tokens() float64 {
	return l.lim.TokensAt(l.now())
}

func (l *Limiter) Rate() float64 { return float64(l.lim.Limit()) }
func (l *Limiter) Burst() int     { return l.lim.Burst() }

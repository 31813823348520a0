package providers

import (
	"context"
	"io"
	"sync"
	"time"
)

// RateLimiter is a token bucket refilled continuously over a one minute
// window. The bucket starts full.
type RateLimiter struct {
	mu sync.Mutex

	perMinute  int
	tokens     float64
	lastUpdate time.Time

	totalConsumed int64
	totalWaited   time.Duration
}

// RateLimiterStatus reports current limiter state.
type RateLimiterStatus struct {
	TokensAvailable int           `json:"tokens_available"`
	TokensLimit     int           `json:"tokens_limit"`
	TimeUntilToken  time.Duration `json:"time_until_token"`
	TotalConsumed   int64         `json:"total_consumed"`
	TotalWaited     time.Duration `json:"total_waited"`
}

// NewRateLimiter creates a limiter allowing perMinute requests per minute.
// Values below 1 are raised to 1.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{
		perMinute:  perMinute,
		tokens:     float64(perMinute),
		lastUpdate: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens >= 1.0 {
			r.tokens--
			r.totalConsumed++
			r.mu.Unlock()
			return nil
		}
		wait := r.untilToken()
		r.mu.Unlock()

		// Wait outside lock
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			r.mu.Lock()
			r.totalWaited += wait
			r.mu.Unlock()
		}
	}
}

// Status returns current limiter state.
func (r *RateLimiter) Status() RateLimiterStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	var wait time.Duration
	if r.tokens < 1.0 {
		wait = r.untilToken()
	}
	return RateLimiterStatus{
		TokensAvailable: int(r.tokens),
		TokensLimit:     r.perMinute,
		TimeUntilToken:  wait,
		TotalConsumed:   r.totalConsumed,
		TotalWaited:     r.totalWaited,
	}
}

// refill adds tokens for the time elapsed. Must be called with lock held.
func (r *RateLimiter) refill() {
	now := time.Now()
	r.tokens += now.Sub(r.lastUpdate).Minutes() * float64(r.perMinute)
	r.lastUpdate = now
	if r.tokens > float64(r.perMinute) {
		r.tokens = float64(r.perMinute)
	}
}

// untilToken is the time until one whole token. Must be called with lock held.
func (r *RateLimiter) untilToken() time.Duration {
	missing := 1.0 - r.tokens
	return time.Duration(missing / float64(r.perMinute) * float64(time.Minute))
}

// RateLimited throttles calls to the wrapped Generator. It does not retry.
type RateLimited struct {
	Generator
	limiter *RateLimiter
}

// NewRateLimited wraps gen with a limiter of perMinute requests per minute.
func NewRateLimited(gen Generator, perMinute int) *RateLimited {
	return &RateLimited{Generator: gen, limiter: NewRateLimiter(perMinute)}
}

// Generate waits for a token, then calls the wrapped client.
func (g *RateLimited) Generate(ctx context.Context, req *Request) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return g.Generator.Generate(ctx, req)
}

// Limiter returns the limiter for status reporting.
func (g *RateLimited) Limiter() *RateLimiter {
	return g.limiter
}

// Close closes the wrapped client if it holds resources.
func (g *RateLimited) Close() error {
	if c, ok := g.Generator.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Verify interface
var _ Generator = (*RateLimited)(nil)

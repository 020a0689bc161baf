package scraper

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter paces outbound requests for a single site key. It spaces task
// starts evenly so that no more than `requests` tasks begin within any rolling
// `window`. Tasks queue in submission order and are delayed, never rejected.
// The limiter does not retry: a task's own error propagates to its caller.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
}

// NewRateLimiter builds a limiter allowing `requests` task starts per
// `window`, e.g. NewRateLimiter(60*time.Second, 2) for 2 requests a minute.
func NewRateLimiter(window time.Duration, requests int) *RateLimiter {
	if requests < 1 {
		requests = 1
	}
	interval := window / time.Duration(requests)
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until the next task may start, or until ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limiter.Wait(ctx)
}

// Schedule runs task once the window permits. The task's result is returned
// unchanged; a ctx cancellation while queued surfaces as the ctx error.
func (r *RateLimiter) Schedule(ctx context.Context, task func() error) error {
	if err := r.Wait(ctx); err != nil {
		return err
	}
	return task()
}

// LimiterSet hands out one independent RateLimiter per site key. There is no
// fairness coupling across keys. The set is constructed by the caller and
// passed down; nothing here is package-global.
type LimiterSet struct {
	mu       sync.Mutex
	window   time.Duration
	requests int
	limiters map[string]*RateLimiter
}

// NewLimiterSet builds a set whose limiters default to `requests` per
// `window` for every site key.
func NewLimiterSet(window time.Duration, requests int) *LimiterSet {
	return &LimiterSet{
		window:   window,
		requests: requests,
		limiters: make(map[string]*RateLimiter),
	}
}

// For returns the limiter for a site key, creating it on first use.
func (s *LimiterSet) For(siteKey string) *RateLimiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.limiters[siteKey]; ok {
		return l
	}
	l := NewRateLimiter(s.window, s.requests)
	s.limiters[siteKey] = l
	return l
}

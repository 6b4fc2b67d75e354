package dispatcher

import (
	"sync"
	"time"
)

type rateWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter counts attempts per service over a fixed window that resets
// once it expires. It never blocks; callers decide what to do at the ceiling.
type RateLimiter struct {
	mu             sync.Mutex
	windows        map[string]*rateWindow
	ceilings       map[string]int
	defaultCeiling int
	window         time.Duration
	now            func() time.Time
}

func NewRateLimiter(ceilings map[string]int, defaultCeiling int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if defaultCeiling <= 0 {
		defaultCeiling = 30
	}

	return &RateLimiter{
		windows:        make(map[string]*rateWindow),
		ceilings:       ceilings,
		defaultCeiling: defaultCeiling,
		window:         window,
		now:            time.Now,
	}
}

func (r *RateLimiter) ceiling(service string) int {
	if c, ok := r.ceilings[service]; ok && c > 0 {
		return c
	}
	return r.defaultCeiling
}

// Check records an attempt against service and reports whether the service was
// under its ceiling. At the ceiling the count is left as is.
func (r *RateLimiter) Check(service string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, ok := r.windows[service]
	if !ok || !now.Before(w.resetAt) {
		r.windows[service] = &rateWindow{count: 1, resetAt: now.Add(r.window)}
		return true
	}

	if w.count >= r.ceiling(service) {
		return false
	}

	w.count++
	return true
}

// Available reports whether service is under its ceiling without recording an attempt.
func (r *RateLimiter) Available(service string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[service]
	if !ok || !r.now().Before(w.resetAt) {
		return true
	}
	return w.count < r.ceiling(service)
}

// Count returns the attempts recorded in the current window.
func (r *RateLimiter) Count(service string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.windows[service]
	if !ok || !r.now().Before(w.resetAt) {
		return 0
	}
	return w.count
}

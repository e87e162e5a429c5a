// Package ratelimit keeps outgoing spreadsheet writes under the per-minute
// quota of the Sheets API.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter counts calls per key in fixed one-minute windows.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time

	perMinute int
}

type window struct {
	start time.Time
	calls int
}

// Config holds limiter configuration
type Config struct {
	RequestsPerMinute int
}

// DefaultConfig matches the Sheets API default write quota per user.
func DefaultConfig() Config {
	return Config{RequestsPerMinute: 60}
}

// NewLimiter returns nil when cfg.RequestsPerMinute is zero or negative; a nil
// Limiter allows everything.
func NewLimiter(cfg Config) *Limiter {
	if cfg.RequestsPerMinute <= 0 {
		return nil
	}
	return &Limiter{
		windows:   make(map[string]*window),
		now:       time.Now,
		perMinute: cfg.RequestsPerMinute,
	}
}

// Allow records a call for key and reports whether it fits in the current
// window.
func (l *Limiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= time.Minute {
		l.windows[key] = &window{start: now, calls: 1}
		return true
	}
	if w.calls >= l.perMinute {
		return false
	}
	w.calls++
	return true
}

// RetryAfter reports how long until key gets a fresh window.
func (l *Limiter) RetryAfter(key string) time.Duration {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || w.calls < l.perMinute {
		return 0
	}
	if d := w.start.Add(time.Minute).Sub(l.now()); d > 0 {
		return d
	}
	return 0
}

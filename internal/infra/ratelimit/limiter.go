// Package ratelimit provides an in-memory, per-identifier attempt limiter.
//
// Counters live in process memory only. A restart resets every limit; for a
// single-instance back office that is an accepted, documented limitation.
package ratelimit

import (
	"sync"
	"time"

	"backoffice/config"
	"backoffice/internal/domain/service"
)

type entry struct {
	count       int
	windowStart time.Time
}

// limiter implements service.AttemptLimiter with a mutex-guarded map.
type limiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// New is the constructor for the attempt limiter. Each instance owns its own
// state; tests can create isolated instances instead of sharing globals.
func New(cfg *config.Config) service.AttemptLimiter {
	return NewWithClock(cfg.MFA.MaxAttempts, cfg.MFA.AttemptWindow, time.Now)
}

// NewWithClock builds a limiter with an injectable clock.
func NewWithClock(maxAttempts int, window time.Duration, now func() time.Time) service.AttemptLimiter {
	return &limiter{
		entries:     make(map[string]*entry),
		maxAttempts: maxAttempts,
		window:      window,
		now:         now,
	}
}

// CheckAndRecord counts one attempt for the identifier and decides whether it
// may proceed. The increment-then-compare sequence runs under the lock, so
// concurrent attempts for the same identifier cannot skip the counter.
func (l *limiter) CheckAndRecord(identifier string) service.AttemptDecision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	e, ok := l.entries[identifier]
	if !ok || now.Sub(e.windowStart) >= l.window {
		// First attempt, or the window elapsed without a reset: start over at 1.
		l.entries[identifier] = &entry{count: 1, windowStart: now}

		return service.AttemptDecision{Allowed: true}
	}

	e.count++
	if e.count > l.maxAttempts {
		// Blocked. The window itself is not reset; the caller waits it out.
		return service.AttemptDecision{
			Allowed:    false,
			RetryAfter: l.window - now.Sub(e.windowStart),
		}
	}

	return service.AttemptDecision{Allowed: true}
}

// Clear drops the identifier's counter. Called after a successful verification.
func (l *limiter) Clear(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, identifier)
}

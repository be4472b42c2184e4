// Package ratelimit implements a fixed-window request counter keyed by
// client IP and route class. The limiter is an explicit, injectable state
// object created once at startup, never ambient global state, so it can
// be exercised and reset in isolation by tests.
//
// Three route classes exist with independently configured quotas: general
// traffic, authentication endpoints (narrow -- the prime credential-stuffing
// target), and the read-heavy catalog listing endpoints.
package ratelimit

import (
	"sync"
	"time"

	"github.com/cinevault/cinevault/internal/config"
)

// Class identifies which quota bucket a route belongs to.
type Class string

const (
	// ClassGeneral covers all routes without a more specific class.
	ClassGeneral Class = "general"

	// ClassAuth covers login and registration.
	ClassAuth Class = "auth"

	// ClassCatalog covers the movie listing endpoints.
	ClassCatalog Class = "catalog"
)

// entry tracks the request count for a single (client, class) key within
// the current time window.
type entry struct {
	count       int
	windowStart time.Time
}

// Limiter bounds request rate per client key over fixed time windows.
// All state is behind a single mutex; an increment and its window check
// happen atomically so concurrent requests for the same key can never
// observe a torn update or exceed the quota through a lost increment.
type Limiter struct {
	mu      sync.Mutex
	quotas  map[Class]config.ClassQuota
	entries map[string]*entry

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// New creates a Limiter with the given per-class quotas. Unknown classes
// fall back to the general quota.
func New(cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		quotas: map[Class]config.ClassQuota{
			ClassGeneral: cfg.General,
			ClassAuth:    cfg.Auth,
			ClassCatalog: cfg.Catalog,
		},
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Admit records one request for the given client key and route class and
// reports whether it fits within the class quota for the current window.
// If the window has elapsed since the counter was last reset, the counter
// resets to 1. A denied request does not mutate state beyond the increment
// that pushed it over the quota.
func (l *Limiter) Admit(clientKey string, class Class) bool {
	quota, ok := l.quotas[class]
	if !ok {
		quota = l.quotas[ClassGeneral]
	}
	// A non-positive quota disables limiting for the class.
	if quota.Max <= 0 {
		return true
	}

	key := string(class) + ":" + clientKey
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, exists := l.entries[key]
	if !exists || now.Sub(e.windowStart) > quota.Window {
		l.entries[key] = &entry{count: 1, windowStart: now}
		return true
	}

	e.count++
	return e.count <= quota.Max
}

// Reset clears all counters. Intended for tests.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]*entry)
}

// Len returns the number of live counter entries. Intended for tests and
// observability logging.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Prune drops entries whose window elapsed more than one full window ago.
// They would reset on their next Admit anyway; pruning just bounds memory
// for one-shot clients.
func (l *Limiter) Prune() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		quota := l.quotaForKey(key)
		if now.Sub(e.windowStart) > quota.Window*2 {
			delete(l.entries, key)
		}
	}
}

// PruneLoop calls Prune on the given interval until ctx is done. Started
// once from the application root alongside the server.
func (l *Limiter) PruneLoop(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}

// quotaForKey resolves the quota from a stored entry key ("class:client").
// Caller must hold l.mu.
func (l *Limiter) quotaForKey(key string) config.ClassQuota {
	for class, quota := range l.quotas {
		prefix := string(class) + ":"
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			return quota
		}
	}
	return l.quotas[ClassGeneral]
}

// Package ratelimit implements an in-memory sliding-window rate limiter.
//
// Each key tracks the timestamps of admitted requests inside a trailing
// window. Keys are created lazily and never evicted; unbounded key growth
// under adversarial fanout is an accepted operational characteristic of the
// in-process store, not a correctness concern.
package ratelimit

import (
	"sync"
	"time"
)

// window tracks admitted request timestamps for one key, oldest first.
type window struct {
	timestamps []time.Time
}

// prune drops every timestamp that is window-or-older relative to now.
// The comparison is strictly "older than": an entry aged exactly the window
// duration is expired.
func (w *window) prune(now time.Time, d time.Duration) {
	cutoff := now.Add(-d)
	i := 0
	for ; i < len(w.timestamps); i++ {
		if w.timestamps[i].After(cutoff) {
			break
		}
	}
	w.timestamps = w.timestamps[i:]
}

// Store is a concurrency-safe map of per-key sliding windows. It is owned
// explicitly and injected into the Limiter rather than held as package
// state, so tests and callers control its lifetime.
type Store struct {
	mu      sync.Mutex
	windows map[string]*window
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{windows: make(map[string]*window)}
}

// Limiter admits or denies requests per key over a sliding time window.
type Limiter struct {
	store *Store
	now   func() time.Time
}

// New creates a Limiter backed by the given store.
func New(store *Store) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

// Admit reports whether another request under key fits within limit for the
// trailing window. On admission the current timestamp is recorded; on denial
// no admission state changes. The prune-check-append sequence runs under the
// store lock so concurrent callers on the same key never both act on a stale
// count.
func (l *Limiter) Admit(key string, limit int, windowDur time.Duration) bool {
	now := l.now()

	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	w := l.store.windows[key]
	if w == nil {
		w = &window{}
		l.store.windows[key] = w
	}

	w.prune(now, windowDur)
	if len(w.timestamps) >= limit {
		return false
	}

	w.timestamps = append(w.timestamps, now)

	return true
}

// Count returns the number of live admissions for a key. Intended for tests
// and diagnostics.
func (l *Limiter) Count(key string, windowDur time.Duration) int {
	now := l.now()

	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	w := l.store.windows[key]
	if w == nil {
		return 0
	}

	w.prune(now, windowDur)

	return len(w.timestamps)
}

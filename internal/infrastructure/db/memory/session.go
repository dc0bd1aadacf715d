package memory

import (
	"context"
	"sync"
	"time"
)

// RevocationList keeps revoked session IDs in memory until they expire.
type RevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{revoked: make(map[string]time.Time), now: time.Now}
}

func (l *RevocationList) Revoke(_ context.Context, sessionID string, until time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep()
	if until.After(l.now()) {
		l.revoked[sessionID] = until
	}
	return nil
}

func (l *RevocationList) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	until, ok := l.revoked[sessionID]
	if !ok {
		return false, nil
	}
	if !until.After(l.now()) {
		delete(l.revoked, sessionID)
		return false, nil
	}
	return true, nil
}

// sweep drops expired entries. Callers hold mu.
func (l *RevocationList) sweep() {
	now := l.now()
	for id, until := range l.revoked {
		if !until.After(now) {
			delete(l.revoked, id)
		}
	}
}

// LoginLimiter is a fixed-window failure counter.
type LoginLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	counts map[string]*window
	now    func() time.Time
}

type window struct {
	failures int
	resetAt  time.Time
}

// NewLoginLimiter blocks a key after max failures until its window ends.
func NewLoginLimiter(max int, period time.Duration) *LoginLimiter {
	return &LoginLimiter{
		max:    max,
		window: period,
		counts: make(map[string]*window),
		now:    time.Now,
	}
}

func (l *LoginLimiter) Blocked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.current(key)
	return w != nil && w.failures >= l.max, nil
}

func (l *LoginLimiter) RecordFailure(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep()
	w := l.counts[key]
	if w == nil {
		w = &window{resetAt: l.now().Add(l.window)}
		l.counts[key] = w
	}
	w.failures++
	return nil
}

func (l *LoginLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.counts, key)
	return nil
}

// current returns the live window for key, dropping an expired one.
func (l *LoginLimiter) current(key string) *window {
	w, ok := l.counts[key]
	if !ok {
		return nil
	}
	if !l.now().Before(w.resetAt) {
		delete(l.counts, key)
		return nil
	}
	return w
}

// sweep drops windows that have ended. Callers hold mu.
func (l *LoginLimiter) sweep() {
	now := l.now()
	for key, w := range l.counts {
		if !now.Before(w.resetAt) {
			delete(l.counts, key)
		}
	}
}

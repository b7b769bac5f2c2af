// Package throttle gates inbound events per identity against a minimum
// inter-arrival interval.
package throttle

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleAfter is how long an identity may stay silent before Sweep may evict
// its limiter. It must far exceed the admission interval so eviction never
// forgives an active window.
const idleAfter = 5 * time.Minute

// defaultInterval applies when the configured interval is missing or
// non-positive.
const defaultInterval = time.Second

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter admits at most one event per identity per interval. Admitted
// events consume the window; rejected events leave it untouched, so a
// rejected sender is not pushed further back.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	entries  map[string]*entry
}

// NewLimiter constructs a limiter enforcing the given minimum interval.
func NewLimiter(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Limiter{
		interval: interval,
		entries:  make(map[string]*entry),
	}
}

// Admit reports whether an event from identity may proceed at now. The first
// event for an identity is always admitted.
func (l *Limiter) Admit(identity string, now time.Time) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identity]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Every(l.interval), 1)}
		l.entries[identity] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Sweep evicts identities that have been silent since before now minus the
// idle horizon and returns how many were removed. Eviction is safe to run
// concurrently with Admit.
func (l *Limiter) Sweep(now time.Time) int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for identity, e := range l.entries {
		if now.Sub(e.lastSeen) > idleAfter {
			delete(l.entries, identity)
			removed++
		}
	}
	return removed
}

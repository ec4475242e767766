// Package ratelimit admits requests per identity within a sliding window.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Decision is the outcome of one admission attempt
type Decision struct {
	Admitted   bool
	RetryAfter time.Duration
}

// RetryAfterMs returns RetryAfter in whole milliseconds, rounded up
func (d Decision) RetryAfterMs() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	return int64((d.RetryAfter + time.Millisecond - 1) / time.Millisecond)
}

// Admitter decides whether identity may make another request now.
type Admitter interface {
	TryAdmit(ctx context.Context, identity string) (Decision, error)
}

// Limiter is an in-process sliding window limiter.
type Limiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New allows maxRequests requests per identity in any window.
func New(maxRequests int, window time.Duration, opts ...Option) *Limiter {
	if maxRequests < 1 {
		maxRequests = 1
	}
	l := &Limiter{
		max:    maxRequests,
		window: window,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TryAdmit records a hit and admits it, or rejects it with the time until
// the oldest hit leaves the window.
func (l *Limiter) TryAdmit(_ context.Context, identity string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	hits := l.hits[identity]
	// Timestamps never go backwards for an identity.
	if n := len(hits); n > 0 && now.Before(hits[n-1]) {
		now = hits[n-1]
	}
	hits = prune(hits, now.Add(-l.window))

	if len(hits) < l.max {
		l.hits[identity] = append(hits, now)
		return Decision{Admitted: true}, nil
	}

	l.hits[identity] = hits
	retry := hits[0].Add(l.window).Sub(now)
	if retry <= 0 {
		retry = time.Millisecond
	}
	return Decision{RetryAfter: retry}, nil
}

// Prune drops identities with no hit inside the window and returns how many went.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	removed := 0
	for id, hits := range l.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(l.hits, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked identities
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

// StartJanitor prunes every interval until ctx is done.
func (l *Limiter) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := l.Prune(); n > 0 {
					log.Debug().Int("identities", n).Msg("Pruned idle rate limit entries")
				}
			}
		}
	}()
}

// prune keeps the hits newer than cutoff. hits is sorted.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0:0], hits[i:]...)
}

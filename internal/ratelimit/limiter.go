// Package ratelimit spaces outbound requests per target key (typically the
// remote host) so concurrent workers never burst against one site.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter grants turns per target key with a minimum interval between grants.
// Grants for one key are first-come-first-served; waits on distinct keys never
// serialize against each other. Optional jitter is added after each grant to
// de-synchronize workers.
type Limiter struct {
	interval time.Duration
	jitter   time.Duration

	mu   sync.RWMutex
	keys map[string]*rate.Limiter
}

// New creates a Limiter with the given minimum interval and jitter bound.
func New(interval, jitter time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		jitter:   jitter,
		keys:     make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the caller may proceed against targetKey. The only error
// is the context's, when the caller cancels or times out while waiting.
func (l *Limiter) Wait(ctx context.Context, targetKey string) error {
	if err := l.limiterFor(targetKey).Wait(ctx); err != nil {
		return err
	}

	if l.jitter > 0 {
		t := time.NewTimer(time.Duration(rand.Int63n(int64(l.jitter))))
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	return nil
}

// Interval returns the configured minimum interval between grants.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

func (l *Limiter) limiterFor(key string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.keys[key]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.keys[key]; ok {
		return lim
	}
	lim = rate.NewLimiter(rate.Every(l.interval), 1)
	l.keys[key] = lim
	return lim
}

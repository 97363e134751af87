package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 5 * time.Minute

// MemoryRateLimiter admits demo-login attempts with an independent token
// bucket per client IP. Buckets refill at quota tokens per window and allow a
// burst of quota, so the quota+1th attempt inside a window is denied while a
// distinct IP is unaffected. Safe for concurrent use.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket
	limit   rate.Limit
	burst   int
	stop    chan struct{}
}

type ipBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewMemoryRateLimiter(quota int, window time.Duration) *MemoryRateLimiter {
	if quota <= 0 {
		quota = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &MemoryRateLimiter{
		buckets: make(map[string]*ipBucket),
		limit:   rate.Limit(float64(quota) / window.Seconds()),
		burst:   quota,
		stop:    make(chan struct{}),
	}
	go l.sweepIdle()
	return l
}

// TryConsume takes one token from ip's bucket; false means the caller should
// be rejected with 429 before any state mutation happens.
func (l *MemoryRateLimiter) TryConsume(_ context.Context, ip string) bool {
	l.mu.Lock()
	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	l.mu.Unlock()

	return b.lim.Allow()
}

// Stop terminates the idle-bucket janitor.
func (l *MemoryRateLimiter) Stop() {
	close(l.stop)
}

func (l *MemoryRateLimiter) sweepIdle() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			now := time.Now()
			l.mu.Lock()
			for ip, b := range l.buckets {
				if now.Sub(b.lastSeen) > limiterIdleTTL {
					delete(l.buckets, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitInfo describes the state of a client's bucket after a request
type RateLimitInfo struct {
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter int // seconds
}

// TokenBucket is a per-key token bucket rate limiter
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     int           // tokens added per interval
	capacity int           // max tokens per bucket
	interval time.Duration // refill interval
	cleanup  time.Duration // idle time before a bucket is dropped
	stop     chan struct{}
	stopped  bool
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewTokenBucket creates a token bucket limiter refilling rate tokens per
// interval. Buckets idle for ten intervals are pruned by a background routine;
// call Stop to end it.
func NewTokenBucket(rate, capacity int, interval time.Duration) *TokenBucket {
	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		interval: interval,
		cleanup:  10 * interval,
		stop:     make(chan struct{}),
	}

	go tb.cleanupRoutine()

	return tb
}

// Allow consumes a token for key and reports whether the request may proceed
func (tb *TokenBucket) Allow(key string) (bool, *RateLimitInfo) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	b, exists := tb.buckets[key]
	if !exists {
		b = &bucket{tokens: tb.capacity, lastRefill: now}
		tb.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill)
	if tokensToAdd := int(elapsed/tb.interval) * tb.rate; tokensToAdd > 0 {
		b.tokens = min(b.tokens+tokensToAdd, tb.capacity)
		b.lastRefill = now
	}

	allowed := b.tokens > 0
	if allowed {
		b.tokens--
	}

	resetTime := b.lastRefill.Add(tb.interval)
	retryAfter := 0
	if !allowed {
		retryAfter = int(resetTime.Sub(now).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
	}

	return allowed, &RateLimitInfo{
		Limit:      tb.capacity,
		Remaining:  b.tokens,
		Reset:      resetTime,
		RetryAfter: retryAfter,
	}
}

// Reset drops the bucket for a key
func (tb *TokenBucket) Reset(key string) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	delete(tb.buckets, key)
}

// Stop ends the cleanup routine
func (tb *TokenBucket) Stop() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if !tb.stopped {
		tb.stopped = true
		close(tb.stop)
	}
}

func (tb *TokenBucket) cleanupRoutine() {
	ticker := time.NewTicker(tb.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-tb.stop:
			return
		case now := <-ticker.C:
			tb.mu.Lock()
			if tb.stopped {
				tb.mu.Unlock()
				return
			}
			tb.prune(now)
			tb.mu.Unlock()
		}
	}
}

// prune drops buckets idle longer than the cleanup window. Callers hold tb.mu.
func (tb *TokenBucket) prune(now time.Time) {
	for key, b := range tb.buckets {
		if now.Sub(b.lastRefill) > tb.cleanup {
			delete(tb.buckets, key)
		}
	}
}

// RateLimit rejects requests with 429 once a client's bucket is drained.
// Keys are client IPs as resolved by the RealIP middleware, with the port
// stripped so one client maps to one bucket.
func RateLimit(limiter *TokenBucket) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				key = host
			}

			allowed, info := limiter.Allow(key)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))

			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(info.RetryAfter))
				Error(w, http.StatusTooManyRequests, "Too many requests.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

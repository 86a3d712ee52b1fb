package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitInfo describes the limiter state returned with each decision,
// used to populate the X-RateLimit response headers.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimitConfig holds configuration for the inbound rate limiter.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained refill rate per client.
	RequestsPerSecond float64

	// BurstSize is the bucket capacity per client.
	BurstSize int

	// SkipPaths are exempt from limiting, e.g. probe endpoints.
	SkipPaths []string

	// KeyFunc derives the limiter key from a request; defaults to the
	// client IP.
	KeyFunc func(r *http.Request) string
}

// DefaultRateLimitConfig returns the default inbound limiter settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
	}
}

func clientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// TokenBucketLimiter is a per-key token bucket.  Idle buckets are swept
// periodically so the key space stays bounded.
type TokenBucketLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	rate    float64
	burst   int
	stop    chan struct{}
	now     func() time.Time
}

// NewTokenBucketLimiter creates a limiter refilling at rate tokens per
// second up to burst.  cleanupInterval bounds how long idle buckets
// survive; a non-positive interval disables the sweeper.
func NewTokenBucketLimiter(rate float64, burst int, cleanupInterval time.Duration) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		buckets: make(map[string]*tokenBucket),
		rate:    rate,
		burst:   burst,
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	if cleanupInterval > 0 {
		go l.cleanupLoop(cleanupInterval)
	}
	return l
}

// Allow consumes one token for key, reporting whether the request may
// proceed and the current limiter state.
func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: float64(l.burst)}
		l.buckets[key] = b
	} else {
		b.tokens += now.Sub(b.lastSeen).Seconds() * l.rate
		if b.tokens > float64(l.burst) {
			b.tokens = float64(l.burst)
		}
	}
	b.lastSeen = now

	info := RateLimitInfo{Limit: l.burst}
	if b.tokens < 1 {
		deficit := 1 - b.tokens
		info.ResetAt = now.Add(time.Duration(deficit / l.rate * float64(time.Second)))
		return false, info
	}
	b.tokens--
	info.Remaining = int(b.tokens)
	info.ResetAt = now
	return true, info
}

func (l *TokenBucketLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup(interval)
		case <-l.stop:
			return
		}
	}
}

func (l *TokenBucketLimiter) cleanup(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-maxIdle)
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop terminates the cleanup goroutine.
func (l *TokenBucketLimiter) Stop() {
	close(l.stop)
}

// RateLimit returns middleware that rejects requests over the limit with
// 429 and the standard X-RateLimit headers.
func RateLimit(limiter *TokenBucketLimiter, config RateLimitConfig) func(http.Handler) http.Handler {
	skipSet := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipSet[p] = true
	}
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = clientIPKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipSet[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			allowed, info := limiter.Allow(keyFunc(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))
			if !allowed {
				retryAfter := time.Until(info.ResetAt).Seconds()
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter)))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

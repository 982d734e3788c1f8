/*
Package limiter provides per-client request rate limiting.

Each client key (the remote IP by default) gets its own token bucket (rate.Limiter).
A background goroutine periodically drops buckets that have refilled, so idle
clients do not accumulate in memory.
*/
package limiter

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"usersettings/internal/pkg/errs"
	"usersettings/internal/pkg/logx"
	"usersettings/internal/pkg/resp"
)

const cleanupInterval = 3 * time.Minute

// KeyFunc derives the rate limiting key of a request.
type KeyFunc func(r *http.Request) string

// RateLimiter limits requests per client key.
type RateLimiter struct {
	// mu protects limits.
	mu sync.RWMutex

	// limits maps a client key to its token bucket.
	limits map[string]*rate.Limiter

	r rate.Limit
	b int

	keyFunc KeyFunc

	stop     chan struct{}
	stopOnce sync.Once
}

// New returns a RateLimiter allowing r events per second with burst b per key.
// keyFunc may be nil, in which case the client IP is used.
func New(r rate.Limit, b int, keyFunc KeyFunc) *RateLimiter {
	if keyFunc == nil {
		keyFunc = ClientIP
	}

	l := &RateLimiter{
		limits:  make(map[string]*rate.Limiter),
		r:       r,
		b:       b,
		keyFunc: keyFunc,
		stop:    make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// GetLimiter returns the bucket of key, creating it on first use.
func (l *RateLimiter) GetLimiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limits[key]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists = l.limits[key]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.limits[key] = limiter
	}

	return limiter
}

// Allow consumes one token of key's bucket.
func (l *RateLimiter) Allow(key string) bool {
	return l.GetLimiter(key).Allow()
}

func (l *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			removed, remaining := l.cleanup(now)
			logx.Debug("Rate limiter cleanup finished", "removed", removed, "active", remaining)
		}
	}
}

// cleanup drops every bucket that is full at now, i.e. whose client has been idle.
func (l *RateLimiter) cleanup(now time.Time) (removed, remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, limiter := range l.limits {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(l.limits, key)
			removed++
		}
	}

	return removed, len(l.limits)
}

// Stop ends the cleanup goroutine.
func (l *RateLimiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

// Middleware rejects requests over the limit with ErrRateLimitExceeded (HTTP 429).
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.keyFunc(r)

		if !l.Allow(key) {
			logx.Warn("Rate limit exceeded", "key", key, "path", r.URL.Path)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP is the default KeyFunc. It relies on chi's RealIP middleware having
// rewritten RemoteAddr when the service runs behind a proxy.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	if ip == "" {
		return "unknown_ip"
	}

	return ip
}

package web

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JonMunkholm/virex/internal/observability"
	webmw "github.com/JonMunkholm/virex/internal/web/middleware"
)

var errRateLimited = errors.New("rate limit exceeded")

// visitorTTL is how long an idle client's bucket is kept.
const visitorTTL = 5 * time.Minute

// rateLimiter keeps one token bucket per client IP. Each bucket refills
// perMinute tokens a minute and holds at most perMinute.
type rateLimiter struct {
	scope      string
	limit      rate.Limit
	burst      int
	retryAfter string

	mu       sync.Mutex
	visitors map[string]*visitor

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(scope string, perMinute int) *rateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	rl := &rateLimiter{
		scope:      scope,
		limit:      rate.Limit(float64(perMinute) / 60),
		burst:      perMinute,
		retryAfter: strconv.Itoa(int(math.Ceil(60 / float64(perMinute)))),
		visitors:   make(map[string]*visitor),
		done:       make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup drops idle visitors until stop is called.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if now.Sub(v.lastSeen) > visitorTTL {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow reports whether ip may make another request now.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()

	return v.limiter.Allow()
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(webmw.ClientIP(r)) {
			observability.RateLimitedTotal.WithLabelValues(rl.scope).Inc()
			w.Header().Set("Retry-After", rl.retryAfter)
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

package ingress

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/r3e-network/metasearch/internal/platform/apierrors"
	"github.com/r3e-network/metasearch/internal/platform/httputil"
	"github.com/r3e-network/metasearch/internal/platform/metrics"
)

// RateLimitConfig configures the global bucket; per-IP buckets derive their
// rate/burst from it.
type RateLimitConfig struct {
	GlobalRatePerSecond float64
	GlobalBurst         int
}

type perIPBucket struct {
	limiter    *rate.Limiter
	lastTouch  time.Time
}

// RateLimiter holds the global bucket and the per-IP bucket map.
type RateLimiter struct {
	cfg    RateLimitConfig
	global *rate.Limiter

	mu      sync.Mutex
	perIP   map[string]*perIPBucket
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.GlobalRatePerSecond <= 0 {
		cfg.GlobalRatePerSecond = 100
	}
	if cfg.GlobalBurst <= 0 {
		cfg.GlobalBurst = 200
	}
	return &RateLimiter{
		cfg:    cfg,
		global: rate.NewLimiter(rate.Limit(cfg.GlobalRatePerSecond), cfg.GlobalBurst),
		perIP:  make(map[string]*perIPBucket),
	}
}

func (rl *RateLimiter) ipRate() rate.Limit {
	r := rl.cfg.GlobalRatePerSecond / 10
	if r < 1 {
		r = 1
	}
	return rate.Limit(r)
}

func (rl *RateLimiter) ipBurst() int {
	b := rl.cfg.GlobalBurst / 10
	if b < 2 {
		b = 2
	}
	return b
}

func (rl *RateLimiter) bucketFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.perIP[ip]
	if !ok {
		b = &perIPBucket{limiter: rate.NewLimiter(rl.ipRate(), rl.ipBurst())}
		rl.perIP[ip] = b
	}
	b.lastTouch = time.Now()
	return b.limiter
}

// Allow consumes one token from the global bucket then the per-IP bucket.
func (rl *RateLimiter) Allow(ip string) bool {
	if !rl.global.Allow() {
		return false
	}
	return rl.bucketFor(ip).Allow()
}

// EvictIdle drops per-IP buckets untouched for longer than idle, run by the
// scheduler every 10 minutes.
func (rl *RateLimiter) EvictIdle(idle time.Duration, now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for ip, b := range rl.perIP {
		if now.Sub(b.lastTouch) > idle && b.limiter.Tokens() >= float64(rl.ipBurst()) {
			delete(rl.perIP, ip)
			removed++
		}
	}
	return removed
}

// RateLimit wraps next with the global+per-IP token-bucket stage.
func RateLimit(rl *RateLimiter, enabled bool, collector *metrics.Collector, next http.Handler) http.Handler {
	if !enabled || rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := httputil.ClientIP(r)
		if !rl.Allow(ip) {
			if collector != nil {
				collector.RecordRateLimited()
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", 60))
			writeErr(w, apierrors.RateLimitExceeded(60))
			return
		}
		next.ServeHTTP(w, r)
	})
}

package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// limiterCache is a generic rate limiter cache with double-check locking.
// The whole map is dropped once it grows past maxSize.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	maxSize  int
}

func newLimiterCache[K comparable](limit rate.Limit, burst, maxSize int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     limit,
		burst:    burst,
		maxSize:  maxSize,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	if lc.maxSize > 0 && len(lc.limiters) >= lc.maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

func (lc *limiterCache[K]) size() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.limiters)
}

// ipRateLimiter allows n requests per window for each client IP, refilling
// evenly over the window
type ipRateLimiter struct {
	name    string
	cache   *limiterCache[string]
	message string
	metrics *metrics
	log     zerolog.Logger
	now     func() time.Time
}

func newIPRateLimiter(name string, n int, window time.Duration, windowLabel string, maxClients int, m *metrics, log zerolog.Logger) *ipRateLimiter {
	if n < 1 {
		n = 1
	}
	return &ipRateLimiter{
		name:    name,
		cache:   newLimiterCache[string](rate.Every(window/time.Duration(n)), n, maxClients),
		message: fmt.Sprintf("Rate limit exceeded: %d per %s", n, windowLabel),
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Middleware rejects over-limit requests with 429, a retry_after hint in
// seconds and a matching Retry-After header
func (rl *ipRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := rl.now()

		res := rl.cache.get(ip).ReserveN(now, 1)
		delay := res.DelayFrom(now)
		if res.OK() && delay == 0 {
			c.Next()
			return
		}
		res.CancelAt(now)

		retryAfter := 1
		if res.OK() {
			retryAfter = int(math.Ceil(delay.Seconds()))
		}
		if retryAfter < 1 {
			retryAfter = 1
		}

		rl.metrics.rateLimited.WithLabelValues(rl.name).Inc()
		rl.log.Warn().Str("limiter", rl.name).Str("client_ip", ip).Str("path", c.Request.URL.Path).Msg("Rate limit exceeded")

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
			Error:      rl.message,
			RetryAfter: retryAfter,
		})
	}
}

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ThrottleConfig bounds how fast a single client may hit the trading
// endpoints.
type ThrottleConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type clientLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	config   ThrottleConfig
}

func newClientLimiters(config ThrottleConfig) *clientLimiters {
	cl := &clientLimiters{
		limiters: make(map[string]*rate.Limiter),
		config:   config,
	}
	go cl.cleanup()
	return cl
}

func (cl *clientLimiters) limiter(key string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	lim, ok := cl.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(cl.config.RequestsPerSecond), cl.config.Burst)
		cl.limiters[key] = lim
	}
	return lim
}

// cleanup bounds the limiter map; idle entries are cheap but unbounded growth
// is not.
func (cl *clientLimiters) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cl.mu.Lock()
		if len(cl.limiters) > 1000 {
			cl.limiters = make(map[string]*rate.Limiter)
		}
		cl.mu.Unlock()
	}
}

// TradeThrottle rate-limits trading requests per client IP. It protects the
// per-launch locks from being monopolized by a single hot client.
func TradeThrottle(config ThrottleConfig) gin.HandlerFunc {
	limiters := newClientLimiters(config)

	return func(c *gin.Context) {
		lim := limiters.limiter(c.ClientIP())
		if !lim.Allow() {
			reservation := lim.Reserve()
			retryAfter := reservation.DelayFrom(time.Now()).Seconds()
			reservation.Cancel()

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded. Please try again later.",
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

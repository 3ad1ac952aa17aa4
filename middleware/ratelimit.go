package middleware

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Fixed-window per-IP limiter. Defaults are generous; RATE_LIMIT overrides
// the per-minute budget.
type rateLimiter struct {
	mu       sync.Mutex
	requests map[string]*windowCount
	limit    int
	window   time.Duration
}

type windowCount struct {
	count     int
	resetTime time.Time
}

func RateLimiter() gin.HandlerFunc {
	limit := 120
	if raw := os.Getenv("RATE_LIMIT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	rl := &rateLimiter{
		requests: make(map[string]*windowCount),
		limit:    limit,
		window:   time.Minute,
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			rl.cleanup()
		}
	}()

	return func(c *gin.Context) {
		if retryAfter, limited := rl.take(c.ClientIP()); limited {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *rateLimiter) take(ip string) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.requests[ip]
	if !ok || now.After(w.resetTime) {
		rl.requests[ip] = &windowCount{count: 1, resetTime: now.Add(rl.window)}
		return 0, false
	}
	if w.count >= rl.limit {
		return w.resetTime.Sub(now), true
	}
	w.count++
	return 0, false
}

func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, w := range rl.requests {
		if now.After(w.resetTime) {
			delete(rl.requests, ip)
		}
	}
}

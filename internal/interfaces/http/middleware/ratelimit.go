package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coderr/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window, in-memory request limiter keyed by client
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	window  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type client struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter creates a limiter and starts its cleanup loop; call Stop on shutdown
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanup(window * 2)
	return rl
}

// Stop ends the cleanup loop
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, c := range rl.clients {
				if now.Sub(c.lastReset) > rl.window*2 {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Allow consumes one request for key and reports the remaining budget
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, exists := rl.clients[key]
	if !exists || now.Sub(c.lastReset) >= rl.window {
		rl.clients[key] = &client{tokens: rl.limit - 1, lastReset: now}
		return true, rl.limit - 1
	}
	if c.tokens > 0 {
		c.tokens--
		return true, c.tokens
	}
	return false, 0
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey returns a rate limiting middleware with custom key extractor
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining := limiter.Allow(keyFunc(c))
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
			abortWithError(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited,
				"Request was throttled. Please try again later.")
			return
		}
		c.Next()
	}
}

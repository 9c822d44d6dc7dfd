package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JonnyWalker81/stride/backend/internal/apierror"
	"github.com/JonnyWalker81/stride/backend/internal/logger"
	"github.com/gin-gonic/gin"
)

// RateLimiter provides token-bucket rate limiting per client
type RateLimiter struct {
	clients map[string]*clientInfo
	mu      sync.Mutex
	rate    int           // requests per window
	window  time.Duration // time window
	name    string        // identifier for logging
}

type clientInfo struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
// rate: maximum requests allowed per window, also the burst size
// window: time window for rate limiting
// name: identifier for logging (e.g., "general", "generate")
func NewRateLimiter(requests int, window time.Duration, name string) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientInfo),
		rate:    requests,
		window:  window,
		name:    name,
	}

	// Start cleanup goroutine to prevent memory leaks
	go rl.cleanup()

	logger.Default().Debug("rate limiter initialized",
		logger.String("name", name),
		logger.Int("rate", requests),
		logger.Duration("window", window),
	)

	return rl
}

// cleanup removes clients idle for two windows; their buckets are full again by then
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		cleaned := 0
		for key, info := range rl.clients {
			if now.Sub(info.lastSeen) > rl.window*2 {
				delete(rl.clients, key)
				cleaned++
			}
		}
		remaining := len(rl.clients)
		rl.mu.Unlock()

		if cleaned > 0 {
			logger.Default().Debug("rate limiter cleanup completed",
				logger.String("name", rl.name),
				logger.Int("cleaned", cleaned),
				logger.Int("remaining", remaining),
			)
		}
	}
}

// reserve takes a token for key. When none is available it returns false and
// how long until one is.
func (rl *RateLimiter) reserve(key string) (bool, time.Duration) {
	rl.mu.Lock()
	info, exists := rl.clients[key]
	if !exists {
		every := rl.window / time.Duration(rl.rate)
		info = &clientInfo{limiter: rate.NewLimiter(rate.Every(every), rl.rate)}
		rl.clients[key] = info
	}
	info.lastSeen = time.Now()
	rl.mu.Unlock()

	r := info.limiter.Reserve()
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		return false, delay
	}
	return true, 0
}

// RateLimit returns a middleware that limits requests per client.
// requestsPerMinute <= 0 disables limiting.
func RateLimit(requestsPerMinute int) gin.HandlerFunc {
	if requestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return rateLimitMiddleware(NewRateLimiter(requestsPerMinute, time.Minute, "general"))
}

// RateLimitGenerate limits insight generation, which fans out to the narrative model
func RateLimitGenerate() gin.HandlerFunc {
	return rateLimitMiddleware(NewRateLimiter(6, time.Minute, "generate"))
}

// clientKey identifies the caller: the authenticated user when known, else the IP
func clientKey(c *gin.Context) string {
	if userID, ok := c.Get("user_id"); ok {
		if id, ok := userID.(string); ok && id != "" {
			return "user:" + id
		}
	}
	return "ip:" + c.ClientIP()
}

// rateLimitMiddleware creates the actual middleware handler
func rateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := clientKey(c)

		allowed, wait := limiter.reserve(key)
		if !allowed {
			retryAfter := int(math.Ceil(wait.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			logger.Ctx(c.Request.Context()).Warn("rate limit exceeded",
				logger.String("limiter", limiter.name),
				logger.String("client", key),
				logger.Int("limit", limiter.rate),
				logger.Duration("window", limiter.window),
			)

			c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
			c.Header("X-RateLimit-Remaining", "0")
			apierror.WriteProblem(c, apierror.NewRateLimitError(apierror.GetRequestID(c), retryAfter))
			c.Abort()
			return
		}

		c.Next()
	}
}

package middleware

import (
	"net/http"
	"sync"

	"github.com/jordanlanch/scribely/pkg/models"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is counted against
type KeyFunc func(c echo.Context) string

// RateLimiter holds one token bucket per client key
type RateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit // requests per second
	b        int        // burst
	key      KeyFunc
}

// NewRateLimiter creates a new rate limiter keyed by client IP
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*rate.Limiter),
		r:        rate.Limit(float64(requestsPerMinute) / 60.0),
		b:        burst,
		key:      clientIP,
	}
}

// WithKeyFunc replaces the default client IP key
func (rl *RateLimiter) WithKeyFunc(fn KeyFunc) *RateLimiter {
	rl.key = fn
	return rl
}

// GetLimiter returns the limiter for key, creating it on first use
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.visitors[key]
	if !exists {
		limiter = rate.NewLimiter(rl.r, rl.b)
		rl.visitors[key] = limiter
	}
	return limiter
}

// Visitors returns the number of tracked keys
func (rl *RateLimiter) Visitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Cleanup drops limiters that are back to a full bucket
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, limiter := range rl.visitors {
		if limiter.Tokens() >= float64(rl.b) {
			delete(rl.visitors, key)
		}
	}
}

// RateLimitExceededMessage is the message returned to throttled callers
const RateLimitExceededMessage = "Too many requests. Please try again later."

// RateLimitMiddleware creates an Echo middleware for rate limiting
func (rl *RateLimiter) RateLimitMiddleware() echo.MiddlewareFunc {
	return rl.RateLimitMiddlewareWith(func(c echo.Context) error {
		return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
			Error:   "rate_limit_exceeded",
			Message: RateLimitExceededMessage,
		})
	})
}

// RateLimitMiddlewareWith is RateLimitMiddleware with a custom response for throttled requests
func (rl *RateLimiter) RateLimitMiddlewareWith(deny echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.GetLimiter(rl.key(c)).Allow() {
				return deny(c)
			}
			return next(c)
		}
	}
}

func clientIP(c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = c.Request().RemoteAddr
	}
	return ip
}

package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"storefront/pkg/log"
	"storefront/pkg/utils"
)

// RateLimitConfig rate limiting middleware configuration
type RateLimitConfig struct {
	// Rate requests per second
	Rate float64
	// Burst maximum burst size
	Burst int
	// KeyFunc function to generate rate limit key
	KeyFunc func(c *gin.Context) string
}

// DefaultRateLimitConfig default rate limiting configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Rate:  50,
		Burst: 100,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// RateLimit per-client token bucket rate limiting middleware
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	config := DefaultRateLimitConfig()
	config.Rate = rps
	config.Burst = burst
	return RateLimitWithConfig(config)
}

// RateLimitWithConfig rate limiting middleware with configuration
func RateLimitWithConfig(config RateLimitConfig) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		key := config.KeyFunc(c)

		mu.Lock()
		limiter, exists := limiters[key]
		if !exists {
			limiter = rate.NewLimiter(rate.Limit(config.Rate), config.Burst)
			limiters[key] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			log.WithFields(map[string]interface{}{
				"key":  key,
				"path": c.Request.URL.Path,
			}).Warn("Rate limit exceeded")
			utils.Error(c, utils.CodeRateLimit, "Too many requests")
			c.Abort()
			return
		}

		c.Next()
	}
}

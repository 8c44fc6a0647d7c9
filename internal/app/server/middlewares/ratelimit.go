package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"healthbrain/internal/app/pkg/ginx"
)

// RateLimit 令牌桶限流，perMinute <= 0 时不限流
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			ginx.TooManyRequests(c)
			return
		}
		c.Next()
	}
}

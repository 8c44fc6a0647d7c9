package middlewares

import "github.com/gin-gonic/gin"

// HTTPObserver HTTP 指标上报
type HTTPObserver interface {
	ObserveHTTP(route string, code int)
}

// Metrics 按路由模板统计请求
func Metrics(observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveHTTP(route, c.Writer.Status())
	}
}

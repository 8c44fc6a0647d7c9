package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"healthbrain/pkg/logger"
)

// HeaderRequestID 请求 ID 头
const HeaderRequestID = "X-Request-ID"

// Logger 访问日志，并把 trace_id 注入请求 context
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traceID := c.GetHeader(HeaderRequestID)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Header(HeaderRequestID, traceID)
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))

		c.Next()

		log.Infof(c.Request.Context(), "%s %s status=%d latency=%v",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

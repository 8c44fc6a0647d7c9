package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"healthbrain/internal/app/pkg/ginx"
	"healthbrain/pkg/logger"
)

// ErrorHandler 统一错误处理中间件
// 捕获 panic 和 handler 通过 c.Error 上报但未写响应的业务错误
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "panic recovered: %v", r)
				ginx.InternalError(c, http.StatusText(http.StatusInternalServerError))
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			ginx.FromError(c, c.Errors.Last().Err)
		}
	}
}

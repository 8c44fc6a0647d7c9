package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"healthbrain/internal/app/server/handlers/brain"
	"healthbrain/internal/app/server/middlewares"
	"healthbrain/pkg/logger"
)

// Options 路由依赖
type Options struct {
	Logger           logger.Logger
	Gatherer         prometheus.Gatherer
	HTTPObserver     middlewares.HTTPObserver
	RunRatePerMinute int
}

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(brainHandler *brain.BrainHandler, opts Options) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.ErrorHandler(opts.Logger))
	r.Use(middlewares.CORS())
	r.Use(middlewares.Logger(opts.Logger))
	if opts.HTTPObserver != nil {
		r.Use(middlewares.Metrics(opts.HTTPObserver))
	}

	r.GET("/health", brain.Health)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// 体检接口共用一个限流桶
	limiter := middlewares.RateLimit(opts.RunRatePerMinute)
	r.POST("/functions/v1/project-brain", limiter, brainHandler.Run)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/brain/run", limiter, brainHandler.Run)
		v1.GET("/reports", brainHandler.ListReports)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
	})

	return r
}

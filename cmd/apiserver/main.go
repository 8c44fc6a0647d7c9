package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"healthbrain/internal/app/bootstrap"
	"healthbrain/internal/app/server/handlers/brain"
	"healthbrain/internal/app/server/routers"
	"healthbrain/pkg/config"
	"healthbrain/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/brain.yaml", "config file path")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	// 2. 初始化应用
	ctx := context.Background()
	engine, cleanup, err := InitializeApp(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer cleanup()

	// 3. 启动 HTTP Server（后台 goroutine）
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		appLogger.Infof(ctx, "Starting HTTP server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// 4. 优雅停机处理
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		appLogger.Infof(ctx, "Received shutdown signal, gracefully shutting down...")
		gracefulShutdown(ctx, server, cfg.Server.ShutdownTimeout, appLogger)
	case err := <-serverErrChan:
		appLogger.Errorf(ctx, "HTTP server error: %v", err)
	}

	appLogger.Infof(ctx, "Application stopped")
}

// InitializeApp 组装依赖并返回 gin 引擎
func InitializeApp(ctx context.Context, cfg *config.Config, appLogger logger.Logger) (*gin.Engine, func(), error) {
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	c, cleanup, err := bootstrap.Build(ctx, cfg, appLogger)
	if err != nil {
		return nil, nil, err
	}

	engine := routers.SetupRoutes(brain.NewBrainHandler(c.Service, appLogger), routers.Options{
		Logger:           appLogger,
		Gatherer:         c.Registry,
		HTTPObserver:     c.Metrics,
		RunRatePerMinute: cfg.Server.RunRatePerMinute,
	})
	return engine, cleanup, nil
}

// gracefulShutdown 优雅停机
func gracefulShutdown(ctx context.Context, server *http.Server, timeout time.Duration, appLogger logger.Logger) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf(ctx, "HTTP server shutdown error: %v", err)
	} else {
		appLogger.Infof(ctx, "HTTP server stopped gracefully")
	}
}

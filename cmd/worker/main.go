package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"healthbrain/internal/app/bootstrap"
	"healthbrain/internal/domains"
	"healthbrain/internal/scheduler"
	"healthbrain/internal/worker"
	"healthbrain/pkg/config"
	"healthbrain/pkg/lmstfy"
	"healthbrain/pkg/logger"
)

var (
	configPath  = flag.String("config", "./config/brain.yaml", "配置文件路径")
	metricsAddr = flag.String("metrics-addr", "", "Prometheus 指标监听地址，为空不启动")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// 2. 初始化 Logger
	appLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	ctx := context.Background()

	// 3. 组装依赖
	c, cleanup, err := bootstrap.Build(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize components: %v", err)
	}
	defer cleanup()

	queue, err := lmstfy.NewClient(cfg.Lmstfy)
	if err != nil {
		log.Fatalf("Failed to create lmstfy client: %v", err)
	}

	// 4. 创建 Manager
	mgr, err := worker.NewManagerInstance(cfg.Workers, queue,
		domains.NewHandlerMap(c.Service, appLogger), c.Metrics, appLogger)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	go func() {
		if err := mgr.Start(); err != nil {
			appLogger.Errorf(ctx, "Manager start failed: %v", err)
		}
	}()

	// 5. 定时体检
	var sched *scheduler.Scheduler
	if cfg.Schedule.Enabled {
		loc, _ := cfg.Brain.Location()
		sched, err = scheduler.New(cfg.Schedule, queue, loc, appLogger)
		if err != nil {
			log.Fatalf("Failed to create scheduler: %v", err)
		}
		sched.Start()
	}

	// 6. 指标
	var metricsServer *http.Server
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Errorf(ctx, "Metrics server error: %v", err)
			}
		}()
	}

	appLogger.Infof(ctx, "Worker started, namespace=%s, workers=%d", queue.Namespace(), len(cfg.Workers))

	// 7. 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	appLogger.Infof(ctx, "Received signal %v, shutting down worker...", sig)

	// 8. 先停调度，再排空 Worker
	if sched != nil {
		sched.Stop()
	}
	mgr.Shutdown()
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)
		cancel()
	}

	appLogger.Infof(ctx, "Worker exited gracefully")
}

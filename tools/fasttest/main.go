package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"healthbrain/internal/app/bootstrap"
	"healthbrain/internal/business/brain"
	"healthbrain/internal/scheduler"
	"healthbrain/pkg/config"
	"healthbrain/pkg/lmstfy"
	"healthbrain/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/brain.yaml", "配置文件路径")
	autoFix    = flag.Bool("auto-fix", false, "执行安全自动修复")
	question   = flag.String("question", "", "向 AI 提问（可选）")
	action     = flag.String("action", "", "执行智能动作而不是体检，如 disable_out_of_stock")
	enqueue    = flag.Bool("enqueue", false, "投递 brain_run 任务到 lmstfy，而不是本地执行")
)

// FastTest 体检快速验证工具
// 进度输出到 stderr，报告 JSON 输出到 stdout
func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		fail("Config validation failed: %v", err)
	}
	fmt.Fprintf(os.Stderr, "✅ Config loaded: %s (%s)\n", cfg.App.Name, cfg.App.Env)

	if *enqueue {
		runEnqueue(cfg)
		return
	}

	appLogger, err := logger.NewZapLogger("warn")
	if err != nil {
		fail("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	ctx := context.Background()
	c, cleanup, err := bootstrap.Build(ctx, cfg, appLogger)
	if err != nil {
		fail("Failed to initialize components: %v", err)
	}
	defer cleanup()
	fmt.Fprintln(os.Stderr, "✅ Database connected")

	start := time.Now()
	var out interface{}
	if *action != "" {
		out, err = c.Service.ExecuteSmartAction(ctx, brain.SmartActionRequest{Type: *action})
	} else {
		out, err = c.Service.Run(ctx, brain.RunRequest{Question: *question, AutoFix: *autoFix})
	}
	if err != nil {
		cleanup()
		fail("❌ FAILED after %v: %v", time.Since(start), err)
	}
	fmt.Fprintf(os.Stderr, "⏱️  Duration: %v\n", time.Since(start))

	printJSON(out)
}

// runEnqueue 通过调度器的投递逻辑发送一次任务
func runEnqueue(cfg *config.Config) {
	queue, err := lmstfy.NewClient(cfg.Lmstfy)
	if err != nil {
		fail("Failed to create lmstfy client: %v", err)
	}

	sc := cfg.Schedule
	sc.AutoFix = *autoFix
	s, err := scheduler.New(sc, queue, nil, logger.NewNop())
	if err != nil {
		fail("Failed to create scheduler: %v", err)
	}

	requestID, err := s.Enqueue(context.Background())
	if err != nil {
		fail("❌ Enqueue failed: %v", err)
	}
	printJSON(map[string]string{"request_id": requestID, "queue": sc.Queue})
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail("Failed to encode output: %v", err)
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

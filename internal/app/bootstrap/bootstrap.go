package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"healthbrain/internal/app/domains/services/svbrain"
	"healthbrain/internal/business/brain"
	"healthbrain/pkg/config"
	"healthbrain/pkg/infra/llm"
	"healthbrain/pkg/infra/mysql"
	"healthbrain/pkg/infra/redis"
	"healthbrain/pkg/logger"
	"healthbrain/pkg/metrics"
)

// Components apiserver / worker / fasttest 共用的依赖
type Components struct {
	DB       *gorm.DB
	Engine   *brain.Engine
	Service  *svbrain.BrainService
	Metrics  *metrics.BrainMetrics
	Registry *prometheus.Registry
	PubSub   *redis.PubSub // 未配置 redis 时为 nil
}

// Build 连接 MySQL 并组装全部依赖
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*Components, func(), error) {
	db, err := mysql.NewDB(cfg.MySQL)
	if err != nil {
		return nil, nil, err
	}

	c, cleanup, err := BuildWithDB(ctx, cfg, db, log)
	if err != nil {
		_ = mysql.Close(db)
		return nil, nil, err
	}

	return c, func() {
		cleanup()
		if err := mysql.Close(db); err != nil {
			log.Warnf(ctx, "close database failed: %v", err)
		}
	}, nil
}

// BuildWithDB 使用已有连接组装依赖
// 1. 阈值与指标
// 2. 叙述生成（未配置 LLM 时使用兜底摘要）
// 3. 引擎
// 4. Redis 通知（连接失败只告警）
// 5. 服务层
func BuildWithDB(ctx context.Context, cfg *config.Config, db *gorm.DB, log logger.Logger) (*Components, func(), error) {
	th, err := brain.NewThresholds(cfg.Brain)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewBrainMetrics(reg)

	var narrator brain.NarrativeGenerator = brain.NopNarrator{}
	if cfg.LLM.APIKey != "" {
		narrator = brain.NewLLMNarrator(llm.NewClient(cfg.LLM, log), log)
	} else {
		log.Warnf(ctx, "llm.api_key not set, reports will use the fallback summary")
	}

	engine, err := brain.NewEngine(mysql.NewBrainStore(db), th, log,
		brain.WithNarrator(narrator),
		brain.WithRecorder(m),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create engine failed: %w", err)
	}

	opts := make([]svbrain.Option, 0, 2)
	if cfg.Brain.PersistReports {
		opts = append(opts, svbrain.WithReportStore(mysql.NewReportRepository(db)))
	}

	var ps *redis.PubSub
	if cfg.Redis.Addr != "" {
		ps, err = redis.NewPubSub(ctx, cfg.Redis)
		if err != nil {
			log.Warnf(ctx, "redis unavailable, report notifications disabled: %v", err)
			ps = nil
		} else {
			opts = append(opts, svbrain.WithNotifier(ps))
		}
	}

	c := &Components{
		DB:       db,
		Engine:   engine,
		Service:  svbrain.NewBrainService(engine, log, opts...),
		Metrics:  m,
		Registry: reg,
		PubSub:   ps,
	}

	cleanup := func() {
		if ps != nil {
			if err := ps.Close(); err != nil {
				log.Warnf(ctx, "close redis failed: %v", err)
			}
		}
	}
	return c, cleanup, nil
}

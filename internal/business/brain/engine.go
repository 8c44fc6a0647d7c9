package brain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"healthbrain/common/model"
	"healthbrain/pkg/errorutil"
	"healthbrain/pkg/logger"
)

// RunRequest 单次体检请求
type RunRequest struct {
	Question string
	AutoFix  bool
}

// Engine 体检引擎：Aggregate ∥ Detect → Predict → [Remediate] → Report
type Engine struct {
	store      Store
	th         Thresholds
	aggregator *Aggregator
	analyzer   *Analyzer
	rules      *RuleEngine
	remediator *Remediator
	narrator   NarrativeGenerator
	recorder   Recorder
	logger     logger.Logger
	now        func() time.Time

	registry  *Registry
	mutations []Mutation
}

// Option 引擎可选项
type Option func(*Engine)

// WithNarrator 设置叙述生成器
func WithNarrator(n NarrativeGenerator) Option {
	return func(e *Engine) {
		if n != nil {
			e.narrator = n
		}
	}
}

// WithRecorder 设置指标上报
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRegistry 替换规则注册表
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithMutations 替换修复动作
func WithMutations(m []Mutation) Option {
	return func(e *Engine) {
		e.mutations = m
	}
}

// NewEngine 创建体检引擎
func NewEngine(store Store, th Thresholds, log logger.Logger, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errorutil.Config("brain store is not configured")
	}
	if log == nil {
		log = logger.NewNop()
	}

	defaults := DefaultThresholds()
	if th.Location == nil {
		th.Location = defaults.Location
	}
	if th.RunTimeout <= 0 {
		th.RunTimeout = defaults.RunTimeout
	}

	e := &Engine{
		store:    store,
		th:       th,
		narrator: NopNarrator{},
		recorder: NopRecorder{},
		logger:   log,
		now:      time.Now,
		registry: DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.aggregator = NewAggregator(store)
	e.analyzer = NewAnalyzer(store, th.TopRankingLimit)
	e.rules = NewRuleEngine(e.registry, log, e.recorder)
	e.remediator = NewRemediator(store, e.mutations, log, e.recorder)
	return e, nil
}

// Thresholds 当前生效的阈值
func (e *Engine) Thresholds() Thresholds {
	return e.th
}

// Run 执行一次体检
// 仅配置错误与统计聚合错误会返回 error；规则、修复、叙述失败均降级处理
func (e *Engine) Run(ctx context.Context, req RunRequest) (*model.Report, error) {
	started := e.now()
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)

	ctx, cancel := context.WithTimeout(ctx, e.th.RunTimeout)
	defer cancel()

	now := started.In(e.th.Location)
	windows := NewWindows(now)
	e.logger.Infof(ctx, "[Engine] run started: auto_fix=%t, has_question=%t", req.AutoFix, req.Question != "")

	// 1. 统计快照与规则检测并发执行
	var (
		stats        *model.Stats
		detected     *RuleOutcome
		analytics    *model.Analytics
		analyticsErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := e.aggregator.Aggregate(gctx, windows)
		if err != nil {
			return err
		}
		stats = s
		return nil
	})
	g.Go(func() error {
		detected = e.rules.Evaluate(gctx, RuleInput{Now: now, Thresholds: e.th, Source: e.store})
		return nil
	})
	g.Go(func() error {
		analytics, analyticsErr = e.analyzer.Analyze(gctx, windows)
		return nil
	})
	if err := g.Wait(); err != nil {
		e.logger.Errorf(ctx, "[Engine] aggregate failed: %v", err)
		e.recorder.ObserveRun(OutcomeFailed, e.now().Sub(started))
		return nil, errorutil.Aggregation(err)
	}

	actions := detected.Actions
	degraded := withPrefix("rule:", detected.Failed)
	if analyticsErr != nil {
		e.logger.Warnf(ctx, "[Engine] analytics failed: %v", analyticsErr)
		degraded = append(degraded, "analytics")
	}

	// 2. 趋势预测
	predictions := Predict(stats, now)

	// 3. 自动修复（仅在显式请求时执行）
	if req.AutoFix {
		fixed := e.remediator.Run(ctx, now)
		actions = append(dropResolved(actions, fixed.Applied), fixed.Actions...)
		degraded = append(degraded, withPrefix("mutation:", fixed.Failed)...)
	}

	// 4. 生成报告
	report := e.buildReport(ctx, reportInput{
		runID:       runID,
		req:         req,
		now:         now,
		stats:       stats,
		actions:     actions,
		predictions: predictions,
		degraded:    degraded,
		analytics:   analytics,
	})

	e.recorder.ObserveRun(OutcomeSuccess, e.now().Sub(started))
	e.recorder.ObserveReport(report)
	e.logger.Infof(ctx, "[Engine] run finished: health_score=%d, actions=%d, predictions=%d, degraded=%v",
		report.HealthScore, len(report.Actions), len(report.Predictions), report.Degraded)

	return report, nil
}

// dropResolved 去掉已被成功修复动作覆盖的发现
func dropResolved(actions []model.Action, applied []string) []model.Action {
	if len(applied) == 0 {
		return actions
	}
	done := make(map[string]struct{}, len(applied))
	for _, name := range applied {
		done[name] = struct{}{}
	}

	kept := make([]model.Action, 0, len(actions))
	for _, a := range actions {
		if _, ok := done[a.Fix]; ok && a.Fix != "" {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

func withPrefix(prefix string, names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, prefix+n)
	}
	return out
}

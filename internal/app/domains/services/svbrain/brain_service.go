package svbrain

import (
	"context"
	"time"

	"healthbrain/common/model"
	"healthbrain/internal/business/brain"
	"healthbrain/pkg/errorutil"
	"healthbrain/pkg/logger"
)

// Runner 体检引擎
type Runner interface {
	Run(ctx context.Context, req brain.RunRequest) (*model.Report, error)
	ExecuteSmartAction(ctx context.Context, req brain.SmartActionRequest) (*model.SmartActionResult, error)
}

// ReportStore 报告持久化
type ReportStore interface {
	Save(ctx context.Context, report *model.Report) error
	List(ctx context.Context, limit int) ([]*model.ReportSummary, error)
}

// Notifier 报告与智能动作通知
type Notifier interface {
	PublishReport(ctx context.Context, notification *model.ReportNotification) error
	PublishEvent(ctx context.Context, event *model.SmartActionEvent) error
}

// BrainService 体检服务，负责引擎调用之后的持久化与通知编排
type BrainService struct {
	runner   Runner
	reports  ReportStore
	notifier Notifier
	log      logger.Logger
	now      func() time.Time
}

// Option 服务可选依赖
type Option func(*BrainService)

// WithReportStore 启用报告持久化
func WithReportStore(store ReportStore) Option {
	return func(s *BrainService) { s.reports = store }
}

// WithNotifier 启用 Redis 通知
func WithNotifier(n Notifier) Option {
	return func(s *BrainService) { s.notifier = n }
}

// NewBrainService 创建体检服务实例
func NewBrainService(runner Runner, log logger.Logger, opts ...Option) *BrainService {
	s := &BrainService{
		runner: runner,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run 执行一次体检（完整业务流程）
// 1. 运行引擎
// 2. 持久化报告（失败只记录日志）
// 3. 推送报告通知（失败只记录日志）
func (s *BrainService) Run(ctx context.Context, req brain.RunRequest) (*model.Report, error) {
	report, err := s.runner.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithRunID(ctx, report.RunID)

	if s.reports != nil {
		if err := s.reports.Save(ctx, report); err != nil {
			s.log.Warnf(ctx, "[BrainService] persist report failed: %v", err)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.PublishReport(ctx, model.NewReportNotification(report)); err != nil {
			s.log.Warnf(ctx, "[BrainService] publish report failed: %v", err)
		}
	}

	return report, nil
}

// ExecuteSmartAction 执行智能动作并推送事件
func (s *BrainService) ExecuteSmartAction(ctx context.Context, req brain.SmartActionRequest) (*model.SmartActionResult, error) {
	result, err := s.runner.ExecuteSmartAction(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		event := &model.SmartActionEvent{
			Type:     result.Type,
			Message:  result.Message,
			Affected: result.Affected,
			Data:     req.Data,
			At:       s.now(),
		}
		if err := s.notifier.PublishEvent(ctx, event); err != nil {
			s.log.Warnf(ctx, "[BrainService] publish smart action event failed: %v", err)
		}
	}

	return result, nil
}

// ListReports 查询最近的报告
func (s *BrainService) ListReports(ctx context.Context, limit int) ([]*model.ReportSummary, error) {
	if s.reports == nil {
		return nil, errorutil.Unavailable("report persistence is disabled", nil)
	}
	return s.reports.List(ctx, limit)
}

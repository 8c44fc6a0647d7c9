package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/atomic"

	"healthbrain/common/model"
	"healthbrain/pkg/config"
	"healthbrain/pkg/logger"
)

// SourceScheduler 定时任务的触发来源
const SourceScheduler = "scheduler"

// Publisher 任务发布
type Publisher interface {
	Publish(queue string, data []byte, delay uint32) (string, error)
}

// Scheduler 按 cron 表达式投递 brain_run 任务
type Scheduler struct {
	cfg      config.ScheduleConfig
	pub      Publisher
	cron     *cron.Cron
	log      logger.Logger
	running  *atomic.Bool
	enqueued *atomic.Int64
	lastRun  *atomic.Int64 // unix nano
}

// New 创建 Scheduler，cron 表达式非法时返回错误
func New(cfg config.ScheduleConfig, pub Publisher, loc *time.Location, log logger.Logger) (*Scheduler, error) {
	if cfg.Queue == "" {
		return nil, fmt.Errorf("schedule.queue is empty")
	}
	if loc == nil {
		loc = time.Local
	}

	s := &Scheduler{
		cfg:      cfg,
		pub:      pub,
		log:      log,
		running:  atomic.NewBool(false),
		enqueued: atomic.NewInt64(0),
		lastRun:  atomic.NewInt64(0),
	}

	cronLog := cronLogger{log: log}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := s.cron.AddFunc(cfg.Spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid schedule.spec %q: %w", cfg.Spec, err)
	}
	return s, nil
}

// Start 启动调度（非阻塞）
func (s *Scheduler) Start() {
	if s.running.CAS(false, true) {
		s.cron.Start()
		s.log.Infof(context.Background(), "[Scheduler] started, spec=%s, queue=%s", s.cfg.Spec, s.cfg.Queue)
	}
}

// Stop 停止调度并等待正在执行的投递完成
func (s *Scheduler) Stop() {
	if s.running.CAS(true, false) {
		<-s.cron.Stop().Done()
		s.log.Infof(context.Background(), "[Scheduler] stopped, enqueued=%d", s.enqueued.Load())
	}
}

// Enqueued 已投递任务数
func (s *Scheduler) Enqueued() int64 {
	return s.enqueued.Load()
}

// LastRun 最近一次成功投递时间
func (s *Scheduler) LastRun() time.Time {
	ns := s.lastRun.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (s *Scheduler) tick() {
	if _, err := s.Enqueue(context.Background()); err != nil {
		s.log.Errorf(context.Background(), "[Scheduler] enqueue failed: %v", err)
	}
}

// Enqueue 立即投递一次 brain_run 任务，返回 request_id
func (s *Scheduler) Enqueue(ctx context.Context) (string, error) {
	requestID := uuid.New().String()
	job := model.NewBrainJob(requestID, model.JobActionBrainRun, SourceScheduler,
		model.BrainRunData{AutoFix: s.cfg.AutoFix})

	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job failed: %w", err)
	}
	if _, err := s.pub.Publish(s.cfg.Queue, data, 0); err != nil {
		return "", err
	}

	s.enqueued.Inc()
	s.lastRun.Store(time.Now().UnixNano())
	s.log.Infof(logger.WithTraceID(ctx, requestID), "[Scheduler] brain_run enqueued, auto_fix=%v", s.cfg.AutoFix)
	return requestID, nil
}

// cronLogger 适配 cron.Logger
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugf(context.Background(), "[cron] %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorf(context.Background(), "[cron] %s: %v %v", msg, err, keysAndValues)
}

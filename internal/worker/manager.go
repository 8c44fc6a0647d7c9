package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"healthbrain/internal/domains"
	"healthbrain/internal/framework"
	"healthbrain/pkg/config"
	"healthbrain/pkg/lmstfyx"
	"healthbrain/pkg/logger"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// Queue 队列客户端：拉取、确认与回调发布
type Queue interface {
	framework.MessageSource
	domains.CallbackPublisher
}

// ManagerInstance 管理配置中的全部 Worker
type ManagerInstance struct {
	ctx        context.Context
	workerCfgs []config.WorkerConfig
	queue      Queue
	handlers   domains.HandlerMap
	observer   domains.JobObserver
	workers    []Worker
	closing    *atomic.Bool
	started    chan struct{}
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	logger     logger.Logger
}

// NewManagerInstance 创建 Manager
func NewManagerInstance(
	workerCfgs []config.WorkerConfig,
	queue Queue,
	handlers domains.HandlerMap,
	observer domains.JobObserver,
	log logger.Logger,
) (*ManagerInstance, error) {
	if len(workerCfgs) == 0 {
		return nil, fmt.Errorf("no worker configured")
	}
	if queue == nil {
		return nil, fmt.Errorf("queue client is nil")
	}

	return &ManagerInstance{
		ctx:        context.Background(),
		workerCfgs: workerCfgs,
		queue:      queue,
		handlers:   handlers,
		observer:   observer,
		closing:    atomic.NewBool(false),
		started:    make(chan struct{}),
		shutdownCh: make(chan struct{}),
		logger:     log,
	}, nil
}

// Start 加载并启动全部 Worker，阻塞直到 Shutdown
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	// 1. 加载所有 Worker
	m.loadWorkers()
	close(m.started)

	// 2. 每个 Worker 在独立 goroutine 中运行
	for _, w := range m.workers {
		w := w
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	// 3. 阻塞等待退出
	<-m.shutdownCh
	return nil
}

// Shutdown 优雅退出，可重复调用
func (m *ManagerInstance) Shutdown() {
	if !m.closing.CAS(false, true) {
		return
	}
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	// Start 尚未加载完 Worker 时等待其完成
	<-m.started

	// 1. 所有 Worker 安全退出
	for _, w := range m.workers {
		m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", w.GetName())
		w.Shutdown()
	}

	// 2. 等待所有 Worker 的 Start 返回
	m.wg.Wait()

	close(m.shutdownCh)
	m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
}

// Workers 已加载的 Worker 数量
func (m *ManagerInstance) Workers() int {
	return len(m.workers)
}

func (m *ManagerInstance) loadWorkers() {
	for _, wc := range m.workerCfgs {
		proc := m.process(wc)
		w := NewWorkerInstance(
			m.ctx,
			wc.Name,
			framework.NewSubscriberConfig(wc),
			framework.NewProcessorConfig(wc),
			m.queue,
			proc,
			m.logger,
		)
		m.workers = append(m.workers, w)
	}
	m.logger.Infof(m.ctx, "[Manager] All workers loaded, count: %d", len(m.workers))
}

func (m *ManagerInstance) process(wc config.WorkerConfig) lmstfyx.Proc {
	return domains.GetProcess(m.logger, domains.ProcessDeps{
		Handlers:      m.handlers,
		Callbacks:     m.queue,
		CallbackQueue: wc.CallbackQueue,
		Observer:      m.observer,
	})
}

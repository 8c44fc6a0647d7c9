package worker

import (
	"context"

	"healthbrain/internal/framework"
	"healthbrain/pkg/lmstfyx"
	"healthbrain/pkg/logger"
)

// Worker 接口
type Worker interface {
	Start()
	Shutdown()
	GetName() string
}

// WorkerInstance 一个队列对应一个 Worker：Subscriber → inputChan → Processor
type WorkerInstance struct {
	ctx        context.Context
	name       string
	subscriber *framework.Subscriber
	processor  *framework.Processor
	inputChan  chan *framework.Message
	started    chan struct{}
	shutdownCh chan struct{}
	logger     logger.Logger
}

// NewWorkerInstance 创建 Worker 实例
func NewWorkerInstance(
	ctx context.Context,
	name string,
	subscriberCfg *framework.SubscriberConfig,
	processorCfg *framework.ProcessorConfig,
	source framework.MessageSource,
	proc lmstfyx.Proc,
	log logger.Logger,
) *WorkerInstance {
	return &WorkerInstance{
		ctx:        ctx,
		name:       name,
		subscriber: framework.NewSubscriber(subscriberCfg, source, log),
		processor:  framework.NewProcessor(processorCfg, proc, source, log),
		inputChan:  make(chan *framework.Message, processorCfg.BufferSize),
		started:    make(chan struct{}),
		shutdownCh: make(chan struct{}),
		logger:     log,
	}
}

// Start 启动 Worker，阻塞直到 Shutdown 完成
func (w *WorkerInstance) Start() {
	w.logger.Infof(w.ctx, "[Worker] %s started", w.name)

	w.processor.Start(w.ctx, w.inputChan)
	w.subscriber.Start(w.ctx, w.inputChan)
	close(w.started)

	<-w.shutdownCh
}

// Shutdown 优雅退出，需在 Start 之后调用
func (w *WorkerInstance) Shutdown() {
	<-w.started
	w.logger.Infof(w.ctx, "[Worker] %s began to close", w.name)

	// 1. 停止拉取新消息
	w.subscriber.Stop()

	// 2. 等待 Subscriber 完全退出
	w.subscriber.Wait()

	// 3. 通知 Processor 进入 Drain 模式
	w.processor.SignalShutdown()

	// 4. 等待 Processor 处理完剩余消息
	w.processor.Wait()

	close(w.shutdownCh)
	w.logger.Infof(w.ctx, "[Worker] %s shutdown complete", w.name)
}

// GetName 获取 Worker 名称
func (w *WorkerInstance) GetName() string {
	return w.name
}

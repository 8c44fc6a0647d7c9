package framework

import (
	"context"
	"sync"
	"time"

	"github.com/bitleak/lmstfy/client"

	"healthbrain/pkg/lmstfyx"
	"healthbrain/pkg/logger"
)

// Processor 处理器：接收消息，调用业务处理函数，再按结果 ACK
type Processor struct {
	cfg        *ProcessorConfig
	proc       lmstfyx.Proc // 业务处理函数（注入的 GetProcess）
	source     MessageSource
	logger     logger.Logger
	shutdownCh chan struct{}
	once       sync.Once
	wg         sync.WaitGroup
}

// NewProcessor 创建处理器
func NewProcessor(cfg *ProcessorConfig, proc lmstfyx.Proc, source MessageSource, log logger.Logger) *Processor {
	return &Processor{
		cfg:        cfg,
		proc:       proc,
		source:     source,
		logger:     log,
		shutdownCh: make(chan struct{}),
	}
}

// Start 启动处理协程
func (p *Processor) Start(ctx context.Context, inputChan <-chan *Message) {
	p.logger.Infof(ctx, "[Processor] Starting with %d workers", p.cfg.Concurrency)

	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go p.loop(ctx, i, inputChan)
	}
}

// SignalShutdown 通知 Processor 进入 Drain 模式
func (p *Processor) SignalShutdown() {
	p.once.Do(func() {
		p.logger.Infof(context.Background(), "[Processor] Shutdown signal received")
		close(p.shutdownCh)
	})
}

// Wait 等待所有处理协程退出
func (p *Processor) Wait() {
	p.wg.Wait()
	p.logger.Infof(context.Background(), "[Processor] All workers exited")
}

func (p *Processor) loop(ctx context.Context, workerID int, inputChan <-chan *Message) {
	defer p.wg.Done()
	ctx = logger.WithWorkerID(ctx, workerID)

	for {
		select {
		case msg := <-inputChan:
			p.process(ctx, msg)

		// Drain 模式：处理完剩余消息再退出
		case <-p.shutdownCh:
			count := 0
			for {
				select {
				case msg := <-inputChan:
					p.process(ctx, msg)
					count++
				default:
					p.logger.Infof(ctx, "[Processor] Drained %d messages, exiting", count)
					return
				}
			}
		}
	}
}

// process 处理单个消息
func (p *Processor) process(ctx context.Context, msg *Message) {
	if msg == nil {
		return
	}
	start := time.Now()

	// 1. 超时控制
	procCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	// 2. 调用业务处理函数
	resp := p.proc(procCtx, &client.Job{ID: msg.ID, Queue: msg.Queue, Data: msg.Data})
	if resp == nil {
		resp = lmstfyx.Success(nil)
	}

	// 3. 按结果处理队列动作
	switch resp.Action {
	case lmstfyx.JobRespStatusRelease:
		p.logger.Warnf(procCtx, "[Processor] Job %s released for retry: %v", msg.ID, resp.Err)
	case lmstfyx.JobRespStatusBury:
		p.logger.Errorf(procCtx, "[Processor] Job %s buried: %v", msg.ID, resp.Err)
		p.ack(procCtx, msg)
	default:
		p.ack(procCtx, msg)
	}

	p.logger.Infof(procCtx, "[Processor] Job %s done, action=%s, duration=%v", msg.ID, resp.Action, time.Since(start))
}

func (p *Processor) ack(ctx context.Context, msg *Message) {
	if err := p.source.Ack(msg.Queue, msg.ID); err != nil {
		p.logger.Errorf(ctx, "[Processor] Ack job %s failed: %v", msg.ID, err)
	}
}

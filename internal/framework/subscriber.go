package framework

import (
	"context"
	"sync"
	"time"

	"healthbrain/pkg/logger"
)

// Subscriber 订阅者：从消息队列拉取消息，转发给 Processor
type Subscriber struct {
	cfg        *SubscriberConfig
	source     MessageSource
	logger     logger.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewSubscriber 创建订阅者
func NewSubscriber(cfg *SubscriberConfig, source MessageSource, log logger.Logger) *Subscriber {
	return &Subscriber{
		cfg:    cfg,
		source: source,
		logger: log,
	}
}

// Start 启动订阅循环
func (s *Subscriber) Start(parentCtx context.Context, inputChan chan<- *Message) {
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancelFunc = cancel

	s.logger.Infof(ctx, "[Subscriber] Starting with %d workers for queue: %s",
		s.cfg.Concurrency, s.cfg.QueueName)

	for i := 0; i < s.cfg.Concurrency; i++ {
		s.wg.Add(1)
		go s.loop(ctx, i, inputChan)
	}
}

// Stop 停止拉取新消息
func (s *Subscriber) Stop() {
	s.logger.Infof(context.Background(), "[Subscriber] Stopping...")
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
}

// Wait 等待所有订阅协程退出
func (s *Subscriber) Wait() {
	s.wg.Wait()
	s.logger.Infof(context.Background(), "[Subscriber] All workers exited")
}

func (s *Subscriber) loop(ctx context.Context, workerID int, inputChan chan<- *Message) {
	defer s.wg.Done()
	ctx = logger.WithWorkerID(ctx, workerID)

	for {
		if ctx.Err() != nil {
			return
		}

		// 1. 拉取消息（带超时）
		msg, err := s.source.Consume(s.cfg.QueueName, s.cfg.Timeout, s.cfg.TTR)
		if err != nil {
			// 网络抖动不退出，退避后重试
			s.logger.Warnf(ctx, "[Subscriber] Consume error: %v, retrying...", err)
			if !sleepCtx(ctx, s.cfg.ErrorBackoff) {
				return
			}
			continue
		}
		if msg == nil {
			continue
		}

		// 2. 发送给 Processor
		select {
		case inputChan <- msg:
			s.logger.Debugf(ctx, "[Subscriber] Message sent: %s", msg.ID)
		case <-ctx.Done():
			// 未 ACK，TTR 到期后会被重新投递
			s.logger.Warnf(ctx, "[Subscriber] Dropping message due to shutdown: %s", msg.ID)
			return
		}

		// 3. 速率控制
		if !sleepCtx(ctx, s.cfg.Rate) {
			return
		}
	}
}

// sleepCtx 等待 d，ctx 取消时返回 false
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

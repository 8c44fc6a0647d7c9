package framework

import (
	"time"

	"healthbrain/pkg/config"
)

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	QueueName    string        // 队列名称
	Concurrency  int           // 并发拉取数
	Timeout      time.Duration // 拉取超时
	TTR          time.Duration // Time-To-Run
	Rate         time.Duration // 拉取间隔
	ErrorBackoff time.Duration // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Concurrency int           // 并发处理数
	BufferSize  int           // inputChan 缓冲区大小
	Timeout     time.Duration // 单个消息处理超时
}

// NewSubscriberConfig 从 worker 配置构造，未配置的字段取默认值
func NewSubscriberConfig(w config.WorkerConfig) *SubscriberConfig {
	c := &SubscriberConfig{
		QueueName:    w.QueueName,
		Concurrency:  w.Subscriber.Threads,
		Timeout:      w.Subscriber.Timeout,
		TTR:          w.Subscriber.TTR,
		Rate:         w.Subscriber.Rate,
		ErrorBackoff: w.Subscriber.ErrorBackoff,
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Second
	}
	if c.TTR <= 0 {
		c.TTR = 60 * time.Second
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = time.Second
	}
	return c
}

// NewProcessorConfig 从 worker 配置构造，未配置的字段取默认值
func NewProcessorConfig(w config.WorkerConfig) *ProcessorConfig {
	c := &ProcessorConfig{
		Concurrency: w.Processor.Threads,
		BufferSize:  w.Processor.BufferSize,
		Timeout:     w.Processor.Timeout,
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.BufferSize < 0 {
		c.BufferSize = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

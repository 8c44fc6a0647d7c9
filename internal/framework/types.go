package framework

import "time"

// Message 框架内部流转的消息
type Message struct {
	ID    string // 任务 ID
	Queue string // 队列名称
	Data  []byte // 原始 Job 数据
}

// MessageSource 队列适配接口，pkg/lmstfy.Client 为生产实现
type MessageSource interface {
	// Consume 阻塞拉取，timeout 内无消息返回 nil, nil；ttr 内未 Ack 的消息会被重新投递
	Consume(queue string, timeout time.Duration, ttr time.Duration) (*Message, error)
	// Ack 删除已处理的消息
	Ack(queue string, jobID string) error
}

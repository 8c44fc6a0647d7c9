package lmstfy

import (
	"fmt"
	"time"

	"github.com/bitleak/lmstfy/client"

	"healthbrain/internal/framework"
	"healthbrain/pkg/config"
)

const (
	// DefaultTries 发布任务的最大投递次数
	DefaultTries uint16 = 3
	// DefaultTTL 任务存活时间（秒），0 表示不过期
	DefaultTTL uint32 = 0
)

// Client lmstfy 客户端封装
type Client struct {
	cli       *client.LmstfyClient
	namespace string
}

// NewClient 创建 lmstfy 客户端
func NewClient(cfg config.LmstfyConfig) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("lmstfy host is empty")
	}
	return &Client{
		cli:       client.NewLmstfyClient(cfg.Host, cfg.Port, cfg.Namespace, cfg.Token),
		namespace: cfg.Namespace,
	}, nil
}

// Namespace 返回命名空间
func (c *Client) Namespace() string {
	return c.namespace
}

// Consume 拉取一条任务，超时未拉到返回 nil, nil
func (c *Client) Consume(queue string, timeout time.Duration, ttr time.Duration) (*framework.Message, error) {
	job, err := c.cli.Consume(queue, uint32(ttr.Seconds()), uint32(timeout.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("lmstfy consume failed: %w", err)
	}
	if job == nil {
		return nil, nil
	}

	return &framework.Message{
		ID:    job.ID,
		Queue: job.Queue,
		Data:  job.Data,
	}, nil
}

// Ack 确认任务（从队列删除）
func (c *Client) Ack(queue string, jobID string) error {
	if err := c.cli.Ack(queue, jobID); err != nil {
		return fmt.Errorf("lmstfy ack failed: %w", err)
	}
	return nil
}

// Publish 发布任务
func (c *Client) Publish(queue string, data []byte, delay uint32) (string, error) {
	jobID, err := c.cli.Publish(queue, data, DefaultTTL, DefaultTries, delay)
	if err != nil {
		return "", fmt.Errorf("lmstfy publish failed: %w", err)
	}
	return jobID, nil
}

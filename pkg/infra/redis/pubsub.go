package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"healthbrain/common/model"
	"healthbrain/pkg/config"
)

// DefaultReportChannel 报告通知默认频道
const DefaultReportChannel = "brain:report"

// PubSub Redis 发布/订阅客户端
type PubSub struct {
	client  *redis.Client
	channel string
}

// NewPubSub 创建 PubSub 实例并测试连接
func NewPubSub(ctx context.Context, cfg config.RedisConfig) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewPubSubWithClient(client, cfg.ReportChannel), nil
}

// NewPubSubWithClient 复用已有连接
func NewPubSubWithClient(client *redis.Client, channel string) *PubSub {
	if channel == "" {
		channel = DefaultReportChannel
	}
	return &PubSub{
		client:  client,
		channel: channel,
	}
}

// Channel 报告通知频道
func (p *PubSub) Channel() string {
	return p.channel
}

// PublishReport 发布体检完成通知
func (p *PubSub) PublishReport(ctx context.Context, notification *model.ReportNotification) error {
	msgJSON, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// ActionChannel 智能动作事件频道
func (p *PubSub) ActionChannel() string {
	return p.channel + ":action"
}

// PublishEvent 发布智能动作事件
func (p *PubSub) PublishEvent(ctx context.Context, event *model.SmartActionEvent) error {
	msgJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, p.ActionChannel(), msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe 订阅报告频道（用于测试和下游看板）
func (p *PubSub) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	if len(channels) == 0 {
		channels = []string{p.channel}
	}
	return p.client.Subscribe(ctx, channels...)
}

// Close 关闭 Redis 连接
func (p *PubSub) Close() error {
	return p.client.Close()
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"healthbrain/pkg/config"
	"healthbrain/pkg/logger"
)

const completionsPath = "/v1/chat/completions"

// ErrNoChoices 上游返回成功但没有候选结果
var ErrNoChoices = errors.New("llm: completion has no choices")

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// StatusError 上游返回非 2xx
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client OpenAI 兼容的 chat completion 客户端，带熔断
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	model   string
	log     logger.Logger
}

// NewClient 创建 LLM 客户端
func NewClient(cfg config.LLMConfig, log logger.Logger) *Client {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 3
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf(context.Background(), "Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &Client{
		http:    httpClient,
		breaker: breaker,
		model:   cfg.Model,
		log:     log,
	}
}

// Complete 发送 system + user 两条消息，返回第一条候选内容
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, system, user)
	})
	if err != nil {
		c.log.Warnf(ctx, "LLM completion failed after %v: %v", time.Since(start), err)
		return "", err
	}

	c.log.Debugf(ctx, "LLM completion done in %v", time.Since(start))
	return out.(string), nil
}

func (c *Client) do(ctx context.Context, system, user string) (string, error) {
	var result chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
		}).
		SetResult(&result).
		Post(completionsPath)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if resp.IsError() {
		return "", &StatusError{StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 256)}
	}
	if len(result.Choices) == 0 {
		return "", ErrNoChoices
	}
	return result.Choices[0].Message.Content, nil
}

// truncate 按字节截断，回退到完整字符边界
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

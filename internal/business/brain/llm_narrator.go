package brain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"healthbrain/common/model"
	"healthbrain/pkg/logger"
)

const systemPrompt = `You are the operations brain of a multi-vendor marketplace. ` +
	`You receive a JSON health snapshot (stats, findings, predictions, health score). ` +
	`Be concise and concrete.`

var errEmptyCompletion = errors.New("empty completion")

// ChatCompleter 对话补全客户端
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// LLMNarrator 基于对话补全的叙述生成器
type LLMNarrator struct {
	client ChatCompleter
	logger logger.Logger
}

// NewLLMNarrator 创建 LLMNarrator
func NewLLMNarrator(client ChatCompleter, log logger.Logger) *LLMNarrator {
	return &LLMNarrator{client: client, logger: log}
}

// Generate 有问题时直接回答；否则要求返回 {summary, recommendations} JSON
func (n *LLMNarrator) Generate(ctx context.Context, in NarrativeInput) (*Narrative, error) {
	prompt, err := buildPrompt(in)
	if err != nil {
		return nil, err
	}

	text, err := n.client.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errEmptyCompletion
	}

	if in.Question != "" {
		return &Narrative{Summary: text, Recommendations: []string{}}, nil
	}

	narrative := parseNarrative(text)
	if narrative.Summary == text {
		n.logger.Warnf(ctx, "[LLMNarrator] completion is not valid JSON, using raw text")
	}
	return narrative, nil
}

type promptFinding struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Severity    model.Severity `json:"severity"`
}

type promptSnapshot struct {
	HealthScore int                `json:"health_score"`
	Stats       *model.Stats       `json:"stats"`
	Findings    []promptFinding    `json:"findings"`
	Predictions []model.Prediction `json:"predictions"`
}

// buildPrompt 组装用户消息
func buildPrompt(in NarrativeInput) (string, error) {
	snap := promptSnapshot{
		HealthScore: in.HealthScore,
		Stats:       in.Stats,
		Findings:    make([]promptFinding, 0, len(in.Actions)),
		Predictions: in.Predictions,
	}
	for _, a := range in.Actions {
		snap.Findings = append(snap.Findings, promptFinding{Title: a.Title, Description: a.Description, Severity: a.Severity})
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal prompt snapshot failed: %w", err)
	}

	var b strings.Builder
	b.WriteString("Platform snapshot:\n")
	b.Write(data)
	b.WriteString("\n\n")
	if in.Question != "" {
		b.WriteString("Answer the operator's question directly using the snapshot.\nQuestion: ")
		b.WriteString(in.Question)
	} else {
		b.WriteString(`Reply with JSON only: {"summary": "<2-3 sentences>", "recommendations": ["<action>", ...]}`)
	}
	return b.String(), nil
}

// parseNarrative 宽松解析：去掉 markdown 代码块，解析失败时整段作为摘要
func parseNarrative(text string) *Narrative {
	var out struct {
		Summary         string   `json:"summary"`
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &out); err != nil || strings.TrimSpace(out.Summary) == "" {
		return &Narrative{Summary: text, Recommendations: []string{}}
	}
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	return &Narrative{Summary: strings.TrimSpace(out.Summary), Recommendations: out.Recommendations}
}

// stripCodeFence 去掉 ```json ... ``` 包裹
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

package brain

import (
	"context"
	"errors"
	"fmt"

	"healthbrain/common/model"
)

// ErrNarrativeUnavailable 未配置叙述生成器
var ErrNarrativeUnavailable = errors.New("narrative generator not configured")

// NarrativeInput 叙述生成输入
type NarrativeInput struct {
	Question    string
	HealthScore int
	Stats       *model.Stats
	Actions     []model.Action
	Predictions []model.Prediction
}

// Narrative 叙述输出
type Narrative struct {
	Summary         string
	Recommendations []string
}

// NarrativeGenerator 报告摘要生成器
type NarrativeGenerator interface {
	Generate(ctx context.Context, in NarrativeInput) (*Narrative, error)
}

// NopNarrator 未配置时使用，总是返回 ErrNarrativeUnavailable
type NopNarrator struct{}

// Generate 实现 NarrativeGenerator
func (NopNarrator) Generate(context.Context, NarrativeInput) (*Narrative, error) {
	return nil, ErrNarrativeUnavailable
}

// FallbackSummary 仅由健康分决定的确定性摘要
func FallbackSummary(score int) string {
	switch {
	case score >= 80:
		return fmt.Sprintf("Platform health is excellent (score %d/100). No urgent issues need attention.", score)
	case score >= 50:
		return fmt.Sprintf("Platform health is good (score %d/100). Some findings should be followed up.", score)
	default:
		return fmt.Sprintf("Platform needs attention (score %d/100). Critical findings require immediate action.", score)
	}
}

// fallbackRecommendations 由预测建议组成的确定性建议列表
func fallbackRecommendations(predictions []model.Prediction) []string {
	recs := make([]string, 0, len(predictions))
	for _, p := range predictions {
		if p.Suggestion != "" {
			recs = append(recs, p.Suggestion)
		}
	}
	return recs
}

package brain

import (
	"context"
	"errors"
	"strings"
	"time"

	"healthbrain/common/model"
)

type reportInput struct {
	runID       string
	req         RunRequest
	now         time.Time
	stats       *model.Stats
	actions     []model.Action
	predictions []model.Prediction
	degraded    []string
	analytics   *model.Analytics
}

// buildReport 计算健康分并生成摘要，叙述失败时使用兜底摘要
func (e *Engine) buildReport(ctx context.Context, in reportInput) *model.Report {
	score := HealthScore(in.actions)

	report := &model.Report{
		RunID:       in.runID,
		GeneratedAt: in.now,
		HealthScore: score,
		Actions:     in.actions,
		Predictions: in.predictions,
		Stats:       in.stats,
		Question:    in.req.Question,
		AutoFix:     in.req.AutoFix,
		Degraded:    in.degraded,
		Analytics:   in.analytics,
		Security:    SecurityReportOf(in.actions),
		Performance: PerformanceReportOf(in.actions),
	}

	narrative, err := e.narrator.Generate(ctx, NarrativeInput{
		Question:    in.req.Question,
		HealthScore: score,
		Stats:       in.stats,
		Actions:     in.actions,
		Predictions: in.predictions,
	})
	if err != nil || narrative == nil || strings.TrimSpace(narrative.Summary) == "" {
		if err != nil && !errors.Is(err, ErrNarrativeUnavailable) {
			e.logger.Warnf(ctx, "[Reporter] narrative failed, using fallback: %v", err)
			report.Degraded = append(report.Degraded, "narrative")
			e.recorder.NarrativeFallback()
		}
		report.Summary = FallbackSummary(score)
		report.Recommendations = fallbackRecommendations(in.predictions)
		return report
	}

	report.Summary = narrative.Summary
	report.Recommendations = narrative.Recommendations
	if report.Recommendations == nil {
		report.Recommendations = []string{}
	}
	return report
}

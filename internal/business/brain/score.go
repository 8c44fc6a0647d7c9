package brain

import (
	"fmt"
	"time"

	"healthbrain/common/model"
)

const (
	maxHealthScore  = 100
	criticalPenalty = 20
	warningPenalty  = 5
)

// HealthScore 从 100 起算，critical 扣 20，warning 扣 5，结果截断到 [0,100]
func HealthScore(actions []model.Action) int {
	score := maxHealthScore
	for _, a := range actions {
		switch a.Severity {
		case model.SeverityCritical:
			score -= criticalPenalty
		case model.SeverityWarning:
			score -= warningPenalty
		}
	}
	return clampScore(score)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxHealthScore {
		return maxHealthScore
	}
	return score
}

// humanDuration 以天/小时展示阈值
func humanDuration(d time.Duration) string {
	const day = 24 * time.Hour
	switch {
	case d >= day && d%day == 0:
		return plural(int64(d/day), "day")
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int64(d/time.Hour), "hour")
	default:
		return d.String()
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

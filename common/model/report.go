package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report 单次体检的完整输出
type Report struct {
	RunID           string       `json:"run_id"`
	GeneratedAt     time.Time    `json:"generated_at"`
	Summary         string       `json:"summary"`
	HealthScore     int          `json:"health_score"`
	Actions         []Action     `json:"actions"`
	Predictions     []Prediction `json:"predictions"`
	Stats           *Stats       `json:"stats"`
	Recommendations []string     `json:"recommendations"`

	Question string `json:"question,omitempty"`
	AutoFix  bool   `json:"auto_fix"`
	// Degraded 软失败的规则、修复动作或叙述环节名称
	Degraded []string `json:"degraded,omitempty"`

	Analytics   *Analytics         `json:"advanced_analytics,omitempty"`
	Security    *SecurityReport    `json:"security_report,omitempty"`
	Performance *PerformanceReport `json:"performance_report,omitempty"`
}

// Stats 运行时的平台统计快照
type Stats struct {
	Users     UserStats    `json:"users"`
	Orders    OrderStats   `json:"orders"`
	Products  CountStats   `json:"products"`
	Stores    CountStats   `json:"stores"`
	Merchants CountStats   `json:"merchants"`
	Revenue   RevenueStats `json:"revenue"`
}

// UserStats 用户统计，GrowthRate 为本周活跃用户占比（%）
type UserStats struct {
	Total      int64   `json:"total"`
	ActiveWeek int64   `json:"active_week"`
	GrowthRate float64 `json:"growth_rate"`
}

// OrderStats 订单统计
type OrderStats struct {
	Total         int64   `json:"total"`
	Today         int64   `json:"today"`
	Week          int64   `json:"week"`
	Month         int64   `json:"month"`
	Pending       int64   `json:"pending"`
	Delivered     int64   `json:"delivered"`
	AvgDaily      float64 `json:"avg_daily"`
	TodayProgress float64 `json:"today_progress"`
}

// CountStats 单一计数
type CountStats struct {
	Total int64 `json:"total"`
}

// RevenueStats 已送达订单收入（SAR）
type RevenueStats struct {
	Today  decimal.Decimal `json:"today"`
	Week   decimal.Decimal `json:"week"`
	Month  decimal.Decimal `json:"month"`
	Growth float64         `json:"growth"` // 周收入折算月度相对本月收入的增幅（%）
}

// ReportNotification 报告生成后推送的精简通知
type ReportNotification struct {
	RunID       string    `json:"run_id"`
	HealthScore int       `json:"health_score"`
	Actions     int       `json:"actions"`
	Critical    int       `json:"critical"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewReportNotification 从报告生成通知
func NewReportNotification(r *Report) *ReportNotification {
	n := &ReportNotification{
		RunID:       r.RunID,
		HealthScore: r.HealthScore,
		Actions:     len(r.Actions),
		GeneratedAt: r.GeneratedAt,
	}
	for _, a := range r.Actions {
		if a.Severity == SeverityCritical {
			n.Critical++
		}
	}
	return n
}

// SmartActionEvent 智能动作执行后推送的事件
type SmartActionEvent struct {
	Type     string                 `json:"type"`
	Message  string                 `json:"message"`
	Affected int64                  `json:"affected"`
	Data     map[string]interface{} `json:"data,omitempty"`
	At       time.Time              `json:"at"`
}

package model

import "time"

// ActionType 动作类别
type ActionType string

// 动作类别常量
const (
	ActionTypeMonitoring  ActionType = "monitoring"
	ActionTypePrediction  ActionType = "prediction"
	ActionTypeAutoFix     ActionType = "auto_fix"
	ActionTypeDecision    ActionType = "decision"
	ActionTypeAlert       ActionType = "alert"
	ActionTypeSecurity    ActionType = "security"
	ActionTypePerformance ActionType = "performance"
)

// Severity 严重级别
type Severity string

// 严重级别常量
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
	SeveritySuccess  Severity = "success"
)

// Action 单次运行产生的发现或已执行的修复（不持久化）
type Action struct {
	ID           string     `json:"id"`
	Type         ActionType `json:"type"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Severity     Severity   `json:"severity"`
	Data         *Evidence  `json:"data,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
	AutoExecuted bool       `json:"auto_executed"`
	// ActionType 运维人员可对该发现触发的智能动作，空表示无
	ActionType string `json:"action_type,omitempty"`
	// Fix 能消除该发现的自动修复动作名，修复成功后发现不再出现在报告中
	Fix string `json:"fix,omitempty"`
}

// Prediction 前瞻性判断
type Prediction struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Suggestion  string  `json:"suggestion"`
	// PredictedImpact 按日均收入估算的金额影响
	PredictedImpact string `json:"predicted_impact,omitempty"`
}

// 预测类型常量
const (
	PredictionSalesDecline = "sales_decline"
	PredictionSalesSurge   = "sales_surge"
)

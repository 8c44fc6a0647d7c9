package model

// BrainResponse 对外接口统一响应结构
type BrainResponse struct {
	Success bool               `json:"success"`
	Report  *Report            `json:"report,omitempty"`
	Result  *SmartActionResult `json:"result,omitempty"`
	Reports []*ReportSummary   `json:"reports,omitempty"`
	Error   string             `json:"error,omitempty"`
	Details []ErrorDetail      `json:"details,omitempty"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Path string `json:"path"`
	Info string `json:"info"`
}

// SmartActionResult 智能动作执行结果
type SmartActionResult struct {
	Type     string `json:"type"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Affected int64  `json:"affected"`
}

// ReportSummary 已持久化报告的列表项
type ReportSummary struct {
	RunID       string  `json:"run_id"`
	HealthScore int     `json:"health_score"`
	Summary     string  `json:"summary"`
	AutoFix     bool    `json:"auto_fix"`
	GeneratedAt int64   `json:"generated_at"`
	Report      *Report `json:"report,omitempty"`
}

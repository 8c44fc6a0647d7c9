package model

// BrainRunCallback 体检任务回调消息（标准化）
// 用于 worker 处理完成后投递到回调队列
type BrainRunCallback struct {
	RequestID   string `json:"request_id"`             // 对应请求的 request_id（链路追踪）
	ActionType  string `json:"action_type"`            // 任务类型
	Status      string `json:"status"`                 // 回调状态: SUCCESS / FAILED
	RunID       string `json:"run_id,omitempty"`       // 报告 ID（成功时返回）
	HealthScore int    `json:"health_score,omitempty"` // 健康分（成功时返回）
	Affected    int64  `json:"affected,omitempty"`     // 智能动作影响行数
	Error       string `json:"error,omitempty"`        // 错误信息（失败时返回）
	ProcessedAt int64  `json:"processed_at"`           // 处理时间戳（Unix timestamp）
}

// 回调状态常量
const (
	CallbackStatusSuccess = "SUCCESS"
	CallbackStatusFailed  = "FAILED"
)

package model

// BrainJob 体检任务消息（标准化）
// 用于 apiserver / scheduler → worker 的消息传递
type BrainJob struct {
	Payload BrainJobPayload `json:"payload"`
}

// BrainJobPayload Job 负载
type BrainJobPayload struct {
	Data BrainJobData `json:"data"`
}

// BrainJobData Job 数据层
type BrainJobData struct {
	// 元信息
	RequestID  string `json:"request_id"`  // 请求 ID（全链路追踪）
	OrgID      string `json:"org_id"`      // 组织 ID（固定为 "0"）
	ActionType string `json:"action_type"` // brain_run / brain_smart_action
	ID         string `json:"id"`          // 触发来源，如 "scheduler"

	// 业务数据
	Data interface{} `json:"data"`
}

// BrainRunData 体检任务业务数据
type BrainRunData struct {
	Question string `json:"question,omitempty"`
	AutoFix  bool   `json:"auto_fix"`
}

// SmartActionData 智能动作任务业务数据
type SmartActionData struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// 任务类型常量
const (
	JobActionBrainRun    = "brain_run"
	JobActionSmartAction = "brain_smart_action"
)

// NewBrainJob 构造标准任务消息
func NewBrainJob(requestID, actionType, source string, data interface{}) *BrainJob {
	return &BrainJob{
		Payload: BrainJobPayload{
			Data: BrainJobData{
				RequestID:  requestID,
				OrgID:      "0",
				ActionType: actionType,
				ID:         source,
				Data:       data,
			},
		},
	}
}

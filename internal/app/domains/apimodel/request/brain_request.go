package request

import (
	"healthbrain/internal/business/brain"
)

// BrainRequest 体检接口请求体，所有字段可选
type BrainRequest struct {
	Action        string                `json:"action,omitempty"`
	Question      string                `json:"question,omitempty" binding:"max=4000"`
	AutoFix       bool                  `json:"auto_fix"`
	ExecuteAction *ExecuteActionRequest `json:"execute_action,omitempty"`
}

// ExecuteActionRequest 智能动作请求
type ExecuteActionRequest struct {
	Type string                 `json:"type" binding:"required"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// ToRunRequest 转换为引擎运行参数
func (r *BrainRequest) ToRunRequest() brain.RunRequest {
	return brain.RunRequest{
		Question: r.Question,
		AutoFix:  r.AutoFix,
	}
}

// ToSmartActionRequest 转换为智能动作参数
func (r *ExecuteActionRequest) ToSmartActionRequest() brain.SmartActionRequest {
	return brain.SmartActionRequest{
		Type: r.Type,
		Data: r.Data,
	}
}

package framework

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidJob Job 结构不符合标准信封
var ErrInvalidJob = errors.New("invalid job structure")

// Job 标准 Job 信封 {payload:{data:{...}}}
type Job struct {
	Payload *JobPayload `json:"payload"`
}

type JobPayload struct {
	Data *JobPayloadData `json:"data"`
}

type JobPayloadData struct {
	RequestID  string          `json:"request_id"`
	ActionType string          `json:"action_type"`
	OrgID      string          `json:"org_id"`
	ID         string          `json:"id"`
	Data       json.RawMessage `json:"data"`
}

// JobMeta Job 元信息
type JobMeta struct {
	RequestID  string `json:"request_id"`
	ActionType string `json:"action_type"`
	OrgID      string `json:"org_id"`
	ID         string `json:"id"`
}

// ParseJob 解析标准信封，返回元信息与业务数据
func ParseJob(raw []byte) (*JobMeta, json.RawMessage, error) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, nil, fmt.Errorf("unmarshal job failed: %w", err)
	}
	if job.Payload == nil || job.Payload.Data == nil {
		return nil, nil, ErrInvalidJob
	}

	data := job.Payload.Data
	if data.ActionType == "" {
		return nil, nil, fmt.Errorf("%w: action_type is empty", ErrInvalidJob)
	}

	meta := &JobMeta{
		RequestID:  data.RequestID,
		ActionType: data.ActionType,
		OrgID:      data.OrgID,
		ID:         data.ID,
	}
	return meta, data.Data, nil
}

// DecodeData 解析业务数据，缺省时保持零值
func DecodeData(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal job data failed: %w", err)
	}
	return nil
}

package lmstfyx

import (
	"context"

	"github.com/bitleak/lmstfy/client"
)

// Proc 任务处理函数（由 domains.GetProcess 构造）
type Proc func(ctx context.Context, job *client.Job) *JobResp

// JobRespStatus 任务处理后的队列动作
type JobRespStatus int

const (
	// JobRespStatusSuccess 处理成功，ACK
	JobRespStatusSuccess JobRespStatus = iota
	// JobRespStatusRelease 可重试，不 ACK，TTR 到期后 lmstfy 重新投递
	JobRespStatusRelease
	// JobRespStatusBury 不可重试，ACK 丢弃并记录错误
	JobRespStatusBury
)

// String 返回动作名称，用于日志和指标标签
func (s JobRespStatus) String() string {
	switch s {
	case JobRespStatusSuccess:
		return "success"
	case JobRespStatusRelease:
		return "release"
	case JobRespStatusBury:
		return "bury"
	default:
		return "unknown"
	}
}

// JobResp 任务处理结果
type JobResp struct {
	Action JobRespStatus
	Data   []byte // 回调消息（可选）
	Err    error
}

// Success 构造成功结果
func Success(data []byte) *JobResp {
	return &JobResp{Action: JobRespStatusSuccess, Data: data}
}

// Release 构造重试结果
func Release(err error) *JobResp {
	return &JobResp{Action: JobRespStatusRelease, Err: err}
}

// Bury 构造丢弃结果
func Bury(err error) *JobResp {
	return &JobResp{Action: JobRespStatusBury, Err: err}
}

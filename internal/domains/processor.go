package domains

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitleak/lmstfy/client"
	"github.com/google/uuid"

	"healthbrain/common/model"
	"healthbrain/internal/framework"
	"healthbrain/pkg/errorutil"
	"healthbrain/pkg/lmstfyx"
	"healthbrain/pkg/logger"
)

// CallbackPublisher 回调队列发布
type CallbackPublisher interface {
	Publish(queue string, data []byte, delay uint32) (string, error)
}

// JobObserver 任务指标
type JobObserver interface {
	ObserveJob(actionType, status string)
}

// ProcessDeps GetProcess 依赖
type ProcessDeps struct {
	Handlers      HandlerMap
	Callbacks     CallbackPublisher // 为 nil 时不发送回调
	CallbackQueue string
	Observer      JobObserver // 可选
}

// GetProcess 返回核心处理函数（注入到 Processor）
// 1. 解析 Job，失败直接 Bury
// 2. 按 action_type 路由到 Handler
// 3. 执行 Handler（捕获 panic）
// 4. 可重试错误 Release，其余失败 Bury 并回调 FAILED，成功回调 SUCCESS
func GetProcess(log logger.Logger, deps ProcessDeps) lmstfyx.Proc {
	return func(ctx context.Context, job *client.Job) *lmstfyx.JobResp {
		start := time.Now()

		meta, data, err := framework.ParseJob(job.Data)
		if err != nil {
			log.Errorf(ctx, "[GetProcess] parse job %s failed: %v", job.ID, err)
			observe(deps.Observer, "unknown", lmstfyx.JobRespStatusBury)
			return lmstfyx.Bury(err)
		}
		if meta.RequestID == "" {
			meta.RequestID = uuid.New().String()
		}

		ctx = logger.WithTraceID(ctx, meta.RequestID)
		ctx = logger.WithActionType(ctx, meta.ActionType)
		log.Infof(ctx, "[GetProcess] Processing job %s from %s", job.ID, meta.ID)

		resp := dispatch(ctx, log, deps, meta, data)
		observe(deps.Observer, meta.ActionType, resp.Action)

		log.Infof(ctx, "[GetProcess] Processing complete: action=%s, duration=%v", resp.Action, time.Since(start))
		return resp
	}
}

func dispatch(ctx context.Context, log logger.Logger, deps ProcessDeps, meta *framework.JobMeta, data json.RawMessage) *lmstfyx.JobResp {
	handler, ok := deps.Handlers[meta.ActionType]
	if !ok {
		err := fmt.Errorf("handler not found for action_type: %s", meta.ActionType)
		return failed(ctx, log, deps, meta, err)
	}

	cb, err := safeHandle(ctx, handler, meta, data)
	if err != nil {
		if errorutil.IsRetryable(err) {
			return lmstfyx.Release(err)
		}
		return failed(ctx, log, deps, meta, err)
	}

	cb.RequestID = meta.RequestID
	cb.ActionType = meta.ActionType
	cb.Status = model.CallbackStatusSuccess
	cb.ProcessedAt = time.Now().Unix()
	return lmstfyx.Success(sendCallback(ctx, log, deps, cb))
}

func safeHandle(ctx context.Context, h Handler, meta *framework.JobMeta, data json.RawMessage) (cb *model.BrainRunCallback, err error) {
	defer func() {
		if r := recover(); r != nil {
			cb, err = nil, errorutil.NonRetriable(fmt.Sprintf("handler panic: %v", r))
		}
	}()

	cb, err = h.Handle(ctx, meta, data)
	if err == nil && cb == nil {
		cb = &model.BrainRunCallback{}
	}
	return cb, err
}

func failed(ctx context.Context, log logger.Logger, deps ProcessDeps, meta *framework.JobMeta, err error) *lmstfyx.JobResp {
	cb := &model.BrainRunCallback{
		RequestID:   meta.RequestID,
		ActionType:  meta.ActionType,
		Status:      model.CallbackStatusFailed,
		Error:       err.Error(),
		ProcessedAt: time.Now().Unix(),
	}
	resp := lmstfyx.Bury(err)
	resp.Data = sendCallback(ctx, log, deps, cb)
	return resp
}

// sendCallback 投递回调，失败只记录日志
func sendCallback(ctx context.Context, log logger.Logger, deps ProcessDeps, cb *model.BrainRunCallback) []byte {
	data, err := json.Marshal(cb)
	if err != nil {
		log.Errorf(ctx, "[GetProcess] marshal callback failed: %v", err)
		return nil
	}
	if deps.Callbacks == nil || deps.CallbackQueue == "" {
		return data
	}
	if _, err := deps.Callbacks.Publish(deps.CallbackQueue, data, 0); err != nil {
		log.Errorf(ctx, "[GetProcess] publish callback failed: %v", err)
	}
	return data
}

func observe(o JobObserver, actionType string, action lmstfyx.JobRespStatus) {
	if o != nil {
		o.ObserveJob(actionType, action.String())
	}
}

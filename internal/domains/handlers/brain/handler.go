package brain

import (
	"context"
	"encoding/json"

	"healthbrain/common/model"
	"healthbrain/internal/app/domains/services/svbrain"
	"healthbrain/internal/business/brain"
	"healthbrain/internal/framework"
	"healthbrain/pkg/errorutil"
	"healthbrain/pkg/logger"
)

// RunHandler brain_run 任务
type RunHandler struct {
	svc svbrain.Runner
	log logger.Logger
}

// NewRunHandler 创建 RunHandler
func NewRunHandler(svc svbrain.Runner, log logger.Logger) *RunHandler {
	return &RunHandler{svc: svc, log: log}
}

// Handle 执行体检，报告的持久化与推送由服务层完成
func (h *RunHandler) Handle(ctx context.Context, meta *framework.JobMeta, data json.RawMessage) (*model.BrainRunCallback, error) {
	var biz model.BrainRunData
	if err := framework.DecodeData(data, &biz); err != nil {
		return nil, errorutil.Validation(err.Error())
	}

	h.log.Infof(ctx, "[RunHandler] brain run from %s, auto_fix=%v", meta.ID, biz.AutoFix)

	report, err := h.svc.Run(ctx, brain.RunRequest{Question: biz.Question, AutoFix: biz.AutoFix})
	if err != nil {
		return nil, err
	}

	return &model.BrainRunCallback{
		RunID:       report.RunID,
		HealthScore: report.HealthScore,
	}, nil
}

// SmartActionHandler brain_smart_action 任务
type SmartActionHandler struct {
	svc svbrain.Runner
	log logger.Logger
}

// NewSmartActionHandler 创建 SmartActionHandler
func NewSmartActionHandler(svc svbrain.Runner, log logger.Logger) *SmartActionHandler {
	return &SmartActionHandler{svc: svc, log: log}
}

// Handle 执行智能动作
func (h *SmartActionHandler) Handle(ctx context.Context, _ *framework.JobMeta, data json.RawMessage) (*model.BrainRunCallback, error) {
	var biz model.SmartActionData
	if err := framework.DecodeData(data, &biz); err != nil {
		return nil, errorutil.Validation(err.Error())
	}
	if biz.Type == "" {
		return nil, errorutil.Validation("smart action type is required")
	}

	result, err := h.svc.ExecuteSmartAction(ctx, brain.SmartActionRequest{Type: biz.Type, Data: biz.Data})
	if err != nil {
		return nil, err
	}

	h.log.Infof(ctx, "[SmartActionHandler] %s affected %d rows", biz.Type, result.Affected)
	return &model.BrainRunCallback{Affected: result.Affected}, nil
}

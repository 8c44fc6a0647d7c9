package domains

import (
	"context"
	"encoding/json"

	"healthbrain/common/model"
	"healthbrain/internal/app/domains/services/svbrain"
	brainhandler "healthbrain/internal/domains/handlers/brain"
	"healthbrain/internal/framework"
	"healthbrain/pkg/logger"
)

// Handler 任务处理器，返回的回调只需填充业务字段
type Handler interface {
	Handle(ctx context.Context, meta *framework.JobMeta, data json.RawMessage) (*model.BrainRunCallback, error)
}

// HandlerMap 路由表（ActionType → Handler）
type HandlerMap map[string]Handler

// NewHandlerMap 注册全部任务处理器
func NewHandlerMap(svc svbrain.Runner, log logger.Logger) HandlerMap {
	return HandlerMap{
		model.JobActionBrainRun:    brainhandler.NewRunHandler(svc, log),
		model.JobActionSmartAction: brainhandler.NewSmartActionHandler(svc, log),
	}
}

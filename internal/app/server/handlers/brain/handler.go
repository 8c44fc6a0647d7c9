package brain

import (
	"context"

	"healthbrain/common/model"
	core "healthbrain/internal/business/brain"
	"healthbrain/pkg/logger"
)

// Service 体检服务
type Service interface {
	Run(ctx context.Context, req core.RunRequest) (*model.Report, error)
	ExecuteSmartAction(ctx context.Context, req core.SmartActionRequest) (*model.SmartActionResult, error)
	ListReports(ctx context.Context, limit int) ([]*model.ReportSummary, error)
}

// BrainHandler 体检 HTTP 处理器
type BrainHandler struct {
	svc Service
	log logger.Logger
}

// NewBrainHandler 创建体检处理器实例
func NewBrainHandler(svc Service, log logger.Logger) *BrainHandler {
	return &BrainHandler{
		svc: svc,
		log: log,
	}
}

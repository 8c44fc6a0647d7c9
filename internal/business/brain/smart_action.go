package brain

import (
	"context"
	"fmt"

	"healthbrain/common/model"
	"healthbrain/pkg/errorutil"
)

// SmartActionRequest 运维触发的智能动作
type SmartActionRequest struct {
	Type string
	Data map[string]interface{}
}

// ExecuteSmartAction 执行智能动作
// 只有 disable_out_of_stock 会写库，其余动作仅确认并由调用方推送通知
func (e *Engine) ExecuteSmartAction(ctx context.Context, req SmartActionRequest) (*model.SmartActionResult, error) {
	result := &model.SmartActionResult{Type: req.Type, Success: true}

	switch req.Type {
	case SmartActionDisableOutOfStock:
		rows, err := e.store.DisableOutOfStockProducts(ctx)
		if err != nil {
			e.logger.Errorf(ctx, "[SmartAction] %s failed: %v", req.Type, err)
			return nil, errorutil.Unavailable("disable out-of-stock products failed", err)
		}
		e.recorder.Remediated(req.Type, rows)
		result.Affected = rows
		result.Message = fmt.Sprintf("Disabled %d out-of-stock product(s)", rows)
	case SmartActionNotifyLowStock:
		result.Message = "Low-stock notification sent to merchants"
	case SmartActionEscalateStuckOrders:
		result.Message = "Stuck orders escalated to the operations team"
	case SmartActionFlagSuspicious:
		result.Message = "Suspicious orders flagged for manual review"
	case SmartActionReviewWithdrawals:
		result.Message = "Pending withdrawals queued for finance review"
	default:
		return nil, errorutil.Validation(fmt.Sprintf("unknown smart action: %q", req.Type))
	}

	e.logger.Infof(ctx, "[SmartAction] %s executed: affected=%d", req.Type, result.Affected)
	return result, nil
}

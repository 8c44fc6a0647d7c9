package brain

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"healthbrain/common/model"
	"healthbrain/internal/app/domains/apimodel/request"
	"healthbrain/internal/app/pkg/ginx"
	"healthbrain/pkg/errorutil"
)

// Run 体检接口
// POST /functions/v1/project-brain
// POST /api/v1/brain/run
func (h *BrainHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()
	req := h.bindLenient(c)

	if err := binding.Validator.ValidateStruct(req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	if req.ExecuteAction != nil {
		h.executeAction(c, req.ExecuteAction)
		return
	}

	report, err := h.svc.Run(ctx, req.ToRunRequest())
	if err != nil {
		h.log.Errorf(ctx, "[BrainHandler] run failed: %v", err)
		ginx.FromError(c, err)
		return
	}

	ginx.Success(c, &model.BrainResponse{Report: report})
}

func (h *BrainHandler) executeAction(c *gin.Context, action *request.ExecuteActionRequest) {
	ctx := c.Request.Context()
	result, err := h.svc.ExecuteSmartAction(ctx, action.ToSmartActionRequest())
	if err != nil {
		h.log.Warnf(ctx, "[BrainHandler] smart action %s failed: %v", action.Type, err)
		c.AbortWithStatusJSON(errorutil.HTTPStatus(err), &model.BrainResponse{
			Success: false,
			Error:   err.Error(),
			Result: &model.SmartActionResult{
				Type:    action.Type,
				Success: false,
				Message: err.Error(),
			},
		})
		return
	}

	ginx.Success(c, &model.BrainResponse{Result: result})
}

// bindLenient 请求体无法解析时按空请求处理
func (h *BrainHandler) bindLenient(c *gin.Context) *request.BrainRequest {
	req := &request.BrainRequest{}

	raw, err := c.GetRawData()
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return req
	}
	if err := json.Unmarshal(raw, req); err != nil {
		h.log.Debugf(c.Request.Context(), "[BrainHandler] malformed body ignored: %v", err)
		return &request.BrainRequest{}
	}
	return req
}

// Health 存活检查
// GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "healthbrain",
		"message": "Service is running",
	})
}

package brain

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"healthbrain/common/model"
	"healthbrain/internal/app/pkg/ginx"
)

// ListReports 最近的体检报告
// GET /api/v1/reports?limit=20
func (h *BrainHandler) ListReports(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			ginx.BadRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	reports, err := h.svc.ListReports(c.Request.Context(), limit)
	if err != nil {
		h.log.Warnf(c.Request.Context(), "[BrainHandler] list reports failed: %v", err)
		ginx.FromError(c, err)
		return
	}

	ginx.Success(c, &model.BrainResponse{Reports: reports})
}

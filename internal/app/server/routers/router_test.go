package routers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"healthbrain/common/model"
	"healthbrain/internal/app/server/handlers/brain"
	core "healthbrain/internal/business/brain"
	"healthbrain/pkg/logger"
	"healthbrain/pkg/metrics"
)

type stubService struct{}

func (stubService) Run(context.Context, core.RunRequest) (*model.Report, error) {
	return &model.Report{RunID: "r", HealthScore: 100}, nil
}

func (stubService) ExecuteSmartAction(_ context.Context, req core.SmartActionRequest) (*model.SmartActionResult, error) {
	return &model.SmartActionResult{Type: req.Type, Success: true}, nil
}

func (stubService) ListReports(context.Context, int) ([]*model.ReportSummary, error) {
	return []*model.ReportSummary{}, nil
}

func newTestRouter(rate int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	return SetupRoutes(brain.NewBrainHandler(stubService{}, logger.NewNop()), Options{
		Logger:           logger.NewNop(),
		Gatherer:         reg,
		HTTPObserver:     metrics.NewBrainMetrics(reg),
		RunRatePerMinute: rate,
	})
}

func request(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader("{}")))
	return w
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(100)

	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/health").Code)

	w := request(r, http.MethodOptions, "/functions/v1/project-brain")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = request(r, http.MethodPost, "/functions/v1/project-brain")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"health_score":100`)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusOK, request(r, http.MethodPost, "/api/v1/brain/run").Code)
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/api/v1/reports").Code)
	assert.Equal(t, http.StatusNotFound, request(r, http.MethodGet, "/nope").Code)

	w = request(r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "brain_http_requests_total")
}

func TestRoutes_RunEndpointsShareLimiter(t *testing.T) {
	r := newTestRouter(2)

	assert.Equal(t, http.StatusOK, request(r, http.MethodPost, "/functions/v1/project-brain").Code)
	assert.Equal(t, http.StatusOK, request(r, http.MethodPost, "/api/v1/brain/run").Code)
	assert.Equal(t, http.StatusTooManyRequests, request(r, http.MethodPost, "/api/v1/brain/run").Code)

	// 非体检接口不受限
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/health").Code)
}

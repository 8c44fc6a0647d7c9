package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"healthbrain/pkg/errorutil"
	"healthbrain/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.POST("/run", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodOptions, "/run")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodPost, "/run")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "apikey")
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(2))
	r.GET("/run", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/run").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/run").Code)

	w := serve(r, http.MethodGet, "/run")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0))
	r.GET("/run", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/run").Code)
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(logger.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/err", func(c *gin.Context) { _ = c.Error(errorutil.Validation("bad limit")) })
	r.GET("/plain", func(c *gin.Context) { _ = c.Error(errors.New("oops")) })

	w := serve(r, http.MethodGet, "/panic")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = serve(r, http.MethodGet, "/err")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bad limit")

	w = serve(r, http.MethodGet, "/plain")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLogger_PropagatesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(Logger(logger.NewNop()))
	var traceID string
	r.GET("/x", func(c *gin.Context) {
		traceID = logger.TraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", traceID)
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))

	w = serve(r, http.MethodGet, "/x")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

type countingObserver map[string]int

func (o countingObserver) ObserveHTTP(route string, code int) { o[route] += code }

func TestMetrics(t *testing.T) {
	obs := countingObserver{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/items/7")
	serve(r, http.MethodGet, "/nope")

	assert.Equal(t, http.StatusOK, obs["/items/:id"])
	assert.Equal(t, http.StatusNotFound, obs["unmatched"])
}

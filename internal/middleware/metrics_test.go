package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-lesson-grid-api/internal/service"
)

func TestMetricsRecordsRoutesAndSkips(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics, "/health"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/lesson-slots/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/health", "/lesson-slots/slot-1", "/nowhere"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	metrics.Handler().ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, `path="/lesson-slots/:id"`)
	assert.Contains(t, body, `path="unmatched"`)
	assert.NotContains(t, body, `path="/health"`)
}

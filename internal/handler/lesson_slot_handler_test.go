package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-lesson-grid-api/internal/dto"
	internalmiddleware "github.com/noah-isme/sma-lesson-grid-api/internal/middleware"
	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	appErrors "github.com/noah-isme/sma-lesson-grid-api/pkg/errors"
)

type lessonSlotServiceMock struct {
	created dto.CreateLessonSlotRequest
	format  dto.ExportFormat
}

func (m *lessonSlotServiceMock) List(ctx context.Context, academicYearID string) ([]models.LessonSlot, bool, error) {
	return []models.LessonSlot{{ID: "slot-1", AcademicYearID: academicYearID, LessonNumber: 1, Weekday: models.Monday, StartTime: "07:00", EndTime: "07:45"}}, true, nil
}

func (m *lessonSlotServiceMock) Create(ctx context.Context, academicYearID string, req dto.CreateLessonSlotRequest) (*models.LessonSlot, error) {
	m.created = req
	if req.LessonNumber == 1 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "lesson slot already exists")
	}
	return &models.LessonSlot{ID: "slot-2", AcademicYearID: academicYearID, LessonNumber: req.LessonNumber}, nil
}

func (m *lessonSlotServiceMock) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *lessonSlotServiceMock) Export(ctx context.Context, academicYearID string, format dto.ExportFormat) (*dto.ExportFile, error) {
	m.format = format
	return &dto.ExportFile{Filename: "lesson-timetable-2025-2026.csv", ContentType: "text/csv", Content: []byte("Lesson,MONDAY\n")}, nil
}

func TestLessonSlotListReportsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(internalmiddleware.WithResponseMeta())
	router.GET("/academic-years/:id/lesson-slots", NewLessonSlotHandler(&lessonSlotServiceMock{}).List)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/academic-years/year-1/lesson-slots", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cache_hit":true`)
	assert.Contains(t, w.Body.String(), `"processing_time_ms"`)
}

func TestLessonSlotCreateConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &lessonSlotServiceMock{}
	router := gin.New()
	router.POST("/academic-years/:id/lesson-slots", NewLessonSlotHandler(mockSvc).Create)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/academic-years/year-1/lesson-slots",
		bytes.NewReader([]byte(`{"lessonNumber":1,"weekday":"MONDAY","startTime":"07:00","endTime":"07:45"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "MONDAY", mockSvc.created.Weekday)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/academic-years/year-1/lesson-slots",
		bytes.NewReader([]byte(`{"lessonNumber":5,"weekday":"MONDAY","startTime":"10:00","endTime":"10:45"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
}

func TestLessonSlotExportAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &lessonSlotServiceMock{}
	router := gin.New()
	router.GET("/academic-years/:id/lesson-slots/export", NewLessonSlotHandler(mockSvc).Export)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/academic-years/year-1/lesson-slots/export", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ExportFormatCSV, mockSvc.format)
	assert.Equal(t, `attachment; filename="lesson-timetable-2025-2026.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "Lesson,MONDAY\n", w.Body.String())
}

func TestLessonSlotDeleteForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
		c.Next()
	})
	router.DELETE("/lesson-slots/:id", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin), NewLessonSlotHandler(&lessonSlotServiceMock{}).Delete)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/lesson-slots/slot-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

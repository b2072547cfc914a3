package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-lesson-grid-api/internal/dto"
	internalmiddleware "github.com/noah-isme/sma-lesson-grid-api/internal/middleware"
	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	"github.com/noah-isme/sma-lesson-grid-api/internal/service"
	appErrors "github.com/noah-isme/sma-lesson-grid-api/pkg/errors"
)

type lessonGridServiceMock struct {
	yearID       string
	config       models.ScheduleConfig
	removedDay   models.Weekday
	removedIndex int
	actor        string
	confirmErr   error
}

func (m *lessonGridServiceMock) Generate(ctx context.Context, academicYearID string, cfg models.ScheduleConfig) (*dto.LessonGridPreviewResponse, error) {
	m.yearID = academicYearID
	m.config = cfg
	grid, err := service.GenerateLessonGrid(cfg)
	if err != nil {
		return nil, err
	}
	return &dto.LessonGridPreviewResponse{PreviewID: "preview-1", AcademicYearID: academicYearID, Slots: grid.Slots, SlotCount: len(grid.Slots)}, nil
}

func (m *lessonGridServiceMock) GetPreview(ctx context.Context, previewID string) (*dto.LessonGridPreviewResponse, error) {
	return &dto.LessonGridPreviewResponse{PreviewID: previewID}, nil
}

func (m *lessonGridServiceMock) RemovePreviewSlot(ctx context.Context, previewID string, weekday models.Weekday, lessonNumber int) (*dto.LessonGridPreviewResponse, error) {
	m.removedDay = weekday
	m.removedIndex = lessonNumber
	return &dto.LessonGridPreviewResponse{PreviewID: previewID}, nil
}

func (m *lessonGridServiceMock) DiscardPreview(ctx context.Context, previewID string) error {
	return nil
}

func (m *lessonGridServiceMock) Confirm(ctx context.Context, previewID, actorID string) (*dto.ConfirmLessonGridResponse, error) {
	m.actor = actorID
	if m.confirmErr != nil {
		return nil, m.confirmErr
	}
	return &dto.ConfirmLessonGridResponse{AcademicYearID: "year-1"}, nil
}

func (m *lessonGridServiceMock) GetConfig(ctx context.Context, academicYearID string) (*dto.LessonGridConfigResponse, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson grid config not found")
}

func gridPayload(breakStart string) []byte {
	return []byte(`{"startTime":"07:00","lessonDurationMinutes":"45","lessonCount":"3","weekdays":["MONDAY","TUESDAY"],"breaks":[{"startTime":"` + breakStart + `","durationMinutes":"15"}]}`)
}

func TestLessonGridGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &lessonGridServiceMock{}
	handler := NewLessonGridHandler(mockSvc)
	req, _ := http.NewRequest(http.MethodPost, "/academic-years/year-1/lesson-grid/previews", bytes.NewReader(gridPayload("07:45")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "year-1"}}

	handler.Generate(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "year-1", mockSvc.yearID)
	assert.Equal(t, "45", mockSvc.config.LessonDurationMinutes)
	assert.Contains(t, w.Body.String(), `"slotCount":6`)
}

func TestLessonGridGenerateMisalignedBreak(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLessonGridHandler(&lessonGridServiceMock{})
	req, _ := http.NewRequest(http.MethodPost, "/academic-years/year-1/lesson-grid/previews", bytes.NewReader(gridPayload("07:30")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "year-1"}}

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, appErrors.ErrMisalignedBreak.Code, body.Error.Code)
	assert.Equal(t, "07:30", body.Meta["breakStart"])
}

func TestLessonGridGenerateMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLessonGridHandler(&lessonGridServiceMock{})
	req, _ := http.NewRequest(http.MethodPost, "/academic-years/year-1/lesson-grid/previews", bytes.NewReader([]byte(`{"startTime":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLessonGridRemoveSlotParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &lessonGridServiceMock{}
	router := gin.New()
	router.DELETE("/previews/:previewId/slots/:weekday/:lessonNumber", NewLessonGridHandler(mockSvc).RemoveSlot)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/previews/p-1/slots/tuesday/2", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.Tuesday, mockSvc.removedDay)
	assert.Equal(t, 2, mockSvc.removedIndex)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodDelete, "/previews/p-1/slots/sunday/2", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodDelete, "/previews/p-1/slots/monday/0", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLessonGridConfirmUsesActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &lessonGridServiceMock{}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
		c.Next()
	})
	router.POST("/previews/:previewId/confirm", internalmiddleware.RequireRoles(models.RoleAdmin), NewLessonGridHandler(mockSvc).Confirm)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/previews/p-1/confirm", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-1", mockSvc.actor)
}

func TestLessonGridConfirmPersistenceFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &lessonGridServiceMock{confirmErr: appErrors.Clone(appErrors.ErrPersistenceFailure, "")}
	router := gin.New()
	router.POST("/previews/:previewId/confirm", NewLessonGridHandler(mockSvc).Confirm)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/previews/p-1/confirm", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), appErrors.ErrPersistenceFailure.Code)
	assert.Empty(t, mockSvc.actor)
}

func TestLessonGridConfigNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/academic-years/:id/lesson-grid/config", NewLessonGridHandler(&lessonGridServiceMock{}).Config)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/academic-years/year-1/lesson-grid/config", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLessonGridGenerateUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/academic-years/:id/lesson-grid/previews", internalmiddleware.RequireRoles(models.RoleAdmin), NewLessonGridHandler(&lessonGridServiceMock{}).Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/academic-years/year-1/lesson-grid/previews", bytes.NewReader(gridPayload("07:45")))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLessonGridGenerateForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
		c.Next()
	})
	router.POST("/academic-years/:id/lesson-grid/previews", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin), NewLessonGridHandler(&lessonGridServiceMock{}).Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/academic-years/year-1/lesson-grid/previews", bytes.NewReader(gridPayload("07:45")))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-lesson-grid-api/internal/dto"
	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	"github.com/noah-isme/sma-lesson-grid-api/internal/service"
	appErrors "github.com/noah-isme/sma-lesson-grid-api/pkg/errors"
	"github.com/noah-isme/sma-lesson-grid-api/pkg/response"
)

type lessonGridService interface {
	Generate(ctx context.Context, academicYearID string, cfg models.ScheduleConfig) (*dto.LessonGridPreviewResponse, error)
	GetPreview(ctx context.Context, previewID string) (*dto.LessonGridPreviewResponse, error)
	RemovePreviewSlot(ctx context.Context, previewID string, weekday models.Weekday, lessonNumber int) (*dto.LessonGridPreviewResponse, error)
	DiscardPreview(ctx context.Context, previewID string) error
	Confirm(ctx context.Context, previewID, actorID string) (*dto.ConfirmLessonGridResponse, error)
	GetConfig(ctx context.Context, academicYearID string) (*dto.LessonGridConfigResponse, error)
}

// LessonGridHandler exposes the generate, review and confirm flow.
type LessonGridHandler struct {
	service lessonGridService
}

// NewLessonGridHandler constructs the handler.
func NewLessonGridHandler(svc lessonGridService) *LessonGridHandler {
	return &LessonGridHandler{service: svc}
}

// Generate godoc
// @Summary Generate a lesson grid preview
// @Description Expands the grid form into one slot per weekday and lesson number. Nothing is persisted until the preview is confirmed.
// @Tags Lesson Grid
// @Accept json
// @Produce json
// @Param id path string true "Academic year ID"
// @Param payload body dto.GenerateLessonGridRequest true "Grid form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /academic-years/{id}/lesson-grid/previews [post]
func (h *LessonGridHandler) Generate(c *gin.Context) {
	var req dto.GenerateLessonGridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lesson grid payload"))
		return
	}
	preview, err := h.service.Generate(c.Request.Context(), c.Param("id"), req.ScheduleConfig)
	if err != nil {
		respondGridError(c, err)
		return
	}
	response.Created(c, preview)
}

// GetPreview godoc
// @Summary Get a lesson grid preview
// @Tags Lesson Grid
// @Produce json
// @Param previewId path string true "Preview ID"
// @Success 200 {object} response.Envelope
// @Router /lesson-grid/previews/{previewId} [get]
func (h *LessonGridHandler) GetPreview(c *gin.Context) {
	preview, err := h.service.GetPreview(c.Request.Context(), c.Param("previewId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// RemoveSlot godoc
// @Summary Remove one slot from a preview
// @Tags Lesson Grid
// @Produce json
// @Param previewId path string true "Preview ID"
// @Param weekday path string true "MONDAY to FRIDAY"
// @Param lessonNumber path int true "Lesson number"
// @Success 200 {object} response.Envelope
// @Router /lesson-grid/previews/{previewId}/slots/{weekday}/{lessonNumber} [delete]
func (h *LessonGridHandler) RemoveSlot(c *gin.Context) {
	weekday, ok := models.ParseWeekday(c.Param("weekday"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidWeekday, ""))
		return
	}
	lessonNumber, err := strconv.Atoi(c.Param("lessonNumber"))
	if err != nil || lessonNumber < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidNumber, "lessonNumber must be a positive integer"))
		return
	}
	preview, err := h.service.RemovePreviewSlot(c.Request.Context(), c.Param("previewId"), weekday, lessonNumber)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// Discard godoc
// @Summary Discard a preview
// @Tags Lesson Grid
// @Param previewId path string true "Preview ID"
// @Success 204
// @Router /lesson-grid/previews/{previewId} [delete]
func (h *LessonGridHandler) Discard(c *gin.Context) {
	if err := h.service.DiscardPreview(c.Request.Context(), c.Param("previewId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Confirm godoc
// @Summary Replace the academic year's lesson slots with the preview
// @Tags Lesson Grid
// @Produce json
// @Param previewId path string true "Preview ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /lesson-grid/previews/{previewId}/confirm [post]
func (h *LessonGridHandler) Confirm(c *gin.Context) {
	result, err := h.service.Confirm(c.Request.Context(), c.Param("previewId"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Config godoc
// @Summary Get the last confirmed grid form
// @Tags Lesson Grid
// @Produce json
// @Param id path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id}/lesson-grid/config [get]
func (h *LessonGridHandler) Config(c *gin.Context) {
	cfg, err := h.service.GetConfig(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

func respondGridError(c *gin.Context, err error) {
	var detail *service.GridValidationError
	if !errors.As(err, &detail) {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{}
	if detail.Field != "" {
		meta["field"] = detail.Field
	}
	if detail.BreakStart != "" {
		meta["breakStart"] = detail.BreakStart
	}
	response.ErrorWithMeta(c, err, meta)
}

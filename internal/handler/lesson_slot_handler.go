package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-lesson-grid-api/internal/dto"
	"github.com/noah-isme/sma-lesson-grid-api/internal/middleware"
	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	appErrors "github.com/noah-isme/sma-lesson-grid-api/pkg/errors"
	"github.com/noah-isme/sma-lesson-grid-api/pkg/response"
)

type lessonSlotService interface {
	List(ctx context.Context, academicYearID string) ([]models.LessonSlot, bool, error)
	Create(ctx context.Context, academicYearID string, req dto.CreateLessonSlotRequest) (*models.LessonSlot, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, academicYearID string, format dto.ExportFormat) (*dto.ExportFile, error)
}

// LessonSlotHandler exposes persisted lesson slots.
type LessonSlotHandler struct {
	service lessonSlotService
}

// NewLessonSlotHandler constructs the handler.
func NewLessonSlotHandler(svc lessonSlotService) *LessonSlotHandler {
	return &LessonSlotHandler{service: svc}
}

// List godoc
// @Summary List lesson slots of an academic year
// @Tags Lesson Slots
// @Produce json
// @Param id path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id}/lesson-slots [get]
func (h *LessonSlotHandler) List(c *gin.Context) {
	slots, hit, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, slots, nil, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Add a lesson slot
// @Tags Lesson Slots
// @Accept json
// @Produce json
// @Param id path string true "Academic year ID"
// @Param payload body dto.CreateLessonSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /academic-years/{id}/lesson-slots [post]
func (h *LessonSlotHandler) Create(c *gin.Context) {
	var req dto.CreateLessonSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Delete godoc
// @Summary Delete a lesson slot
// @Tags Lesson Slots
// @Param id path string true "Lesson slot ID"
// @Success 204
// @Router /lesson-slots/{id} [delete]
func (h *LessonSlotHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download the weekly timetable
// @Tags Lesson Slots
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Academic year ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /academic-years/{id}/lesson-slots/export [get]
func (h *LessonSlotHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), dto.ExportFormat(c.DefaultQuery("format", string(dto.ExportFormatCSV))))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}

package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-lesson-grid-api/internal/dto"
	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	appErrors "github.com/noah-isme/sma-lesson-grid-api/pkg/errors"
	"github.com/noah-isme/sma-lesson-grid-api/pkg/response"
)

type academicYearService interface {
	List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.AcademicYear, error)
	GetActive(ctx context.Context) (*models.AcademicYear, error)
	Create(ctx context.Context, req dto.CreateAcademicYearRequest) (*models.AcademicYear, error)
	Update(ctx context.Context, id string, req dto.UpdateAcademicYearRequest) (*models.AcademicYear, error)
	SetActive(ctx context.Context, id string) (*models.AcademicYear, error)
	Delete(ctx context.Context, id string) error
}

// AcademicYearHandler exposes academic year endpoints.
type AcademicYearHandler struct {
	service academicYearService
}

// NewAcademicYearHandler constructs an academic year handler.
func NewAcademicYearHandler(svc academicYearService) *AcademicYearHandler {
	return &AcademicYearHandler{service: svc}
}

// List godoc
// @Summary List academic years
// @Tags Academic Years
// @Produce json
// @Param search query string false "Name contains"
// @Param isActive query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "name, start_date, end_date or created_at"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /academic-years [get]
func (h *AcademicYearHandler) List(c *gin.Context) {
	filter := models.AcademicYearFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if isActive := c.Query("isActive"); isActive != "" {
		if val, err := strconv.ParseBool(isActive); err == nil {
			filter.IsActive = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	years, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, pagination)
}

// Get godoc
// @Summary Get academic year
// @Tags Academic Years
// @Produce json
// @Param id path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id} [get]
func (h *AcademicYearHandler) Get(c *gin.Context) {
	year, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// GetActive godoc
// @Summary Get active academic year
// @Tags Academic Years
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academic-years/active [get]
func (h *AcademicYearHandler) GetActive(c *gin.Context) {
	year, err := h.service.GetActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Create godoc
// @Summary Create academic year
// @Tags Academic Years
// @Accept json
// @Produce json
// @Param payload body dto.CreateAcademicYearRequest true "Academic year payload"
// @Success 201 {object} response.Envelope
// @Router /academic-years [post]
func (h *AcademicYearHandler) Create(c *gin.Context) {
	var req dto.CreateAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// Update godoc
// @Summary Update academic year
// @Tags Academic Years
// @Accept json
// @Produce json
// @Param id path string true "Academic year ID"
// @Param payload body dto.UpdateAcademicYearRequest true "Academic year payload"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id} [put]
func (h *AcademicYearHandler) Update(c *gin.Context) {
	var req dto.UpdateAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Activate godoc
// @Summary Mark academic year active
// @Tags Academic Years
// @Produce json
// @Param id path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Router /academic-years/{id}/activate [post]
func (h *AcademicYearHandler) Activate(c *gin.Context) {
	year, err := h.service.SetActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Delete godoc
// @Summary Delete academic year
// @Tags Academic Years
// @Param id path string true "Academic year ID"
// @Success 204
// @Router /academic-years/{id} [delete]
func (h *AcademicYearHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

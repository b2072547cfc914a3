package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-lesson-grid-api/internal/dto"
	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	appErrors "github.com/noah-isme/sma-lesson-grid-api/pkg/errors"
)

type academicYearRepository interface {
	List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error)
	FindByID(ctx context.Context, id string) (*models.AcademicYear, error)
	FindActive(ctx context.Context) (*models.AcademicYear, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, year *models.AcademicYear) error
	Update(ctx context.Context, year *models.AcademicYear) error
	SetActive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type lessonSlotCounter interface {
	CountByAcademicYear(ctx context.Context, academicYearID string) (int, error)
}

// AcademicYearService orchestrates academic year workflows.
type AcademicYearService struct {
	repo      academicYearRepository
	slots     lessonSlotCounter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicYearService creates a new academic year service instance.
func NewAcademicYearService(repo academicYearRepository, slots lessonSlotCounter, validate *validator.Validate, logger *zap.Logger) *AcademicYearService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicYearService{repo: repo, slots: slots, validator: validate, logger: logger}
}

// List returns paginated academic years.
func (s *AcademicYearService) List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, *models.Pagination, error) {
	years, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return years, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an academic year by ID.
func (s *AcademicYearService) Get(ctx context.Context, id string) (*models.AcademicYear, error) {
	return s.load(ctx, id)
}

// GetActive returns the active academic year.
func (s *AcademicYearService) GetActive(ctx context.Context) (*models.AcademicYear, error) {
	year, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "active academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active academic year")
	}
	return year, nil
}

// Create adds an academic year, activating it when requested.
func (s *AcademicYearService) Create(ctx context.Context, req dto.CreateAcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validate(req, req.Name, req.StartDate.Before(req.EndDate)); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(ctx, name, ""); err != nil {
		return nil, err
	}

	year := &models.AcademicYear{Name: name, StartDate: req.StartDate, EndDate: req.EndDate}
	if err := s.repo.Create(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic year")
	}

	if req.IsActive {
		if err := s.repo.SetActive(ctx, year.ID); err != nil {
			s.logger.Error("failed to activate academic year after create", zap.String("academic_year_id", year.ID), zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate academic year")
		}
		year.IsActive = true
	}
	return year, nil
}

// Update changes name and dates.
func (s *AcademicYearService) Update(ctx context.Context, id string, req dto.UpdateAcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validate(req, req.Name, req.StartDate.Before(req.EndDate)); err != nil {
		return nil, err
	}
	year, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(ctx, name, id); err != nil {
		return nil, err
	}

	year.Name = name
	year.StartDate = req.StartDate
	year.EndDate = req.EndDate
	if err := s.repo.Update(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update academic year")
	}
	return year, nil
}

// SetActive designates the academic year as active.
func (s *AcademicYearService) SetActive(ctx context.Context, id string) (*models.AcademicYear, error) {
	year, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, year.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate academic year")
	}
	year.IsActive = true
	return year, nil
}

// Delete removes an academic year that is inactive and has no lesson slots.
func (s *AcademicYearService) Delete(ctx context.Context, id string) error {
	year, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if year.IsActive {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot delete active academic year")
	}
	if s.slots != nil {
		count, err := s.slots.CountByAcademicYear(ctx, id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check academic year dependencies")
		}
		if count > 0 {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "academic year has lesson slots")
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete academic year")
	}
	return nil
}

func (s *AcademicYearService) load(ctx context.Context, id string) (*models.AcademicYear, error) {
	year, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	return year, nil
}

func (s *AcademicYearService) validate(req interface{}, name string, ordered bool) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}
	if strings.TrimSpace(name) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	if !ordered {
		return appErrors.Clone(appErrors.ErrValidation, "start_date must be before end_date")
	}
	return nil
}

func (s *AcademicYearService) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check academic year name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "academic year name already exists")
	}
	return nil
}

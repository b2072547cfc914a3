package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-lesson-grid-api/internal/dto"
	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	"github.com/noah-isme/sma-lesson-grid-api/pkg/clock"
	appErrors "github.com/noah-isme/sma-lesson-grid-api/pkg/errors"
	"github.com/noah-isme/sma-lesson-grid-api/pkg/export"
)

type lessonSlotRepository interface {
	ListByAcademicYear(ctx context.Context, academicYearID string) ([]models.LessonSlot, error)
	FindByID(ctx context.Context, id string) (*models.LessonSlot, error)
	ExistsAt(ctx context.Context, academicYearID string, weekday models.Weekday, lessonNumber int) (bool, error)
	Create(ctx context.Context, slot *models.LessonSlot) error
	Delete(ctx context.Context, id string) error
}

type slotCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, doc export.Document) ([]byte, error)
}

// LessonSlotServiceConfig carries cache, branding and CSV settings.
type LessonSlotServiceConfig struct {
	CacheTTL        time.Duration
	InstitutionName string
	SiteURL         string
	CSVOptions      []export.CSVOption
}

// LessonSlotService manages persisted lesson slots outside the generator.
type LessonSlotService struct {
	repo      lessonSlotRepository
	years     academicYearReader
	cache     slotCache
	csv       csvRenderer
	pdf       pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       LessonSlotServiceConfig
}

// NewLessonSlotService constructs the service.
func NewLessonSlotService(repo lessonSlotRepository, years academicYearReader, cache slotCache, validate *validator.Validate, logger *zap.Logger, cfg LessonSlotServiceConfig) *LessonSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonSlotService{
		repo:      repo,
		years:     years,
		cache:     cache,
		csv:       export.NewCSVExporter(cfg.CSVOptions...),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

func lessonSlotCacheKey(academicYearID string) string {
	return "lesson_slots:" + academicYearID
}

// List returns the persisted grid of an academic year. The bool reports a cache hit.
func (s *LessonSlotService) List(ctx context.Context, academicYearID string) ([]models.LessonSlot, bool, error) {
	key := lessonSlotCacheKey(academicYearID)
	if s.cache != nil {
		var cached []models.LessonSlot
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	slots, err := s.repo.ListByAcademicYear(ctx, academicYearID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lesson slots")
	}
	if slots == nil {
		slots = []models.LessonSlot{}
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, slots, s.cfg.CacheTTL)
	}
	return slots, false, nil
}

// Create adds a single slot.
func (s *LessonSlotService) Create(ctx context.Context, academicYearID string, req dto.CreateLessonSlotRequest) (*models.LessonSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson slot payload")
	}
	weekday, ok := models.ParseWeekday(req.Weekday)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeekday, "")
	}
	start, err := clock.Parse(req.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidTime, "startTime must use HH:MM")
	}
	end, err := clock.Parse(req.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidTime, "endTime must use HH:MM")
	}
	if end <= start {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endTime must be after startTime")
	}
	if err := requireAcademicYear(ctx, s.years, academicYearID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsAt(ctx, academicYearID, weekday, req.LessonNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check lesson slot")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("lesson %d on %s already exists", req.LessonNumber, weekday))
	}

	slot := &models.LessonSlot{
		AcademicYearID: academicYearID,
		LessonNumber:   req.LessonNumber,
		Weekday:        weekday,
		StartTime:      clock.Format(start),
		EndTime:        clock.Format(end),
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson slot")
	}
	s.InvalidateAcademicYear(ctx, academicYearID)
	return slot, nil
}

// Delete removes a slot by id.
func (s *LessonSlotService) Delete(ctx context.Context, id string) error {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson slot")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson slot")
	}
	s.InvalidateAcademicYear(ctx, slot.AcademicYearID)
	return nil
}

// InvalidateAcademicYear drops the cached slot list of the year.
func (s *LessonSlotService) InvalidateAcademicYear(ctx context.Context, academicYearID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, lessonSlotCacheKey(academicYearID)); err != nil {
		s.logger.Warn("lesson slot cache invalidation failed", zap.String("academic_year_id", academicYearID), zap.Error(err))
	}
}

// Export renders the persisted grid as a weekly timetable.
func (s *LessonSlotService) Export(ctx context.Context, academicYearID string, format dto.ExportFormat) (*dto.ExportFile, error) {
	format = dto.ExportFormat(strings.ToLower(string(format)))
	if format == "" {
		format = dto.ExportFormatCSV
	}
	if format != dto.ExportFormatCSV && format != dto.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	year, err := loadAcademicYear(ctx, s.years, academicYearID)
	if err != nil {
		return nil, err
	}
	yearName := academicYearID
	if year != nil {
		yearName = year.Name
	}

	slots, _, err := s.List(ctx, academicYearID)
	if err != nil {
		return nil, err
	}

	days := make([]string, 0, len(models.Weekdays))
	for _, day := range models.Weekdays {
		days = append(days, string(day))
	}
	periods := make([]export.Period, 0, len(slots))
	for _, slot := range slots {
		periods = append(periods, export.Period{
			Day:          string(slot.Weekday),
			LessonNumber: slot.LessonNumber,
			StartTime:    slot.StartTime,
			EndTime:      slot.EndTime,
		})
	}
	data := export.Timetable(days, periods)

	base := "lesson-timetable-" + slugify(yearName)
	switch format {
	case dto.ExportFormatPDF:
		content, err := s.pdf.Render(data, export.Document{
			Title:    strings.TrimSpace(s.cfg.InstitutionName + " Lesson Timetable"),
			Subtitle: "Academic Year " + yearName,
			Footer:   s.cfg.SiteURL,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
		}
		return &dto.ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
		}
		return &dto.ExportFile{Filename: base + ".csv", ContentType: "text/csv", Content: content}, nil
	}
}

func slugify(raw string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

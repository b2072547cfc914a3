package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-lesson-grid-api/internal/dto"
	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	appErrors "github.com/noah-isme/sma-lesson-grid-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type academicYearReader interface {
	FindByID(ctx context.Context, id string) (*models.AcademicYear, error)
}

type lessonSlotReplacer interface {
	ReplaceForAcademicYear(ctx context.Context, exec sqlx.ExtContext, academicYearID string, slots []models.LessonSlot) error
}

type lessonGridConfigRepository interface {
	Upsert(ctx context.Context, exec sqlx.ExtContext, record *models.LessonGridConfigRecord) error
	FindByAcademicYear(ctx context.Context, academicYearID string) (*models.LessonGridConfigRecord, error)
}

type lessonSlotCacheInvalidator interface {
	InvalidateAcademicYear(ctx context.Context, academicYearID string)
}

// LessonGridServiceConfig tunes preview retention.
type LessonGridServiceConfig struct {
	PreviewTTL      time.Duration
	CleanupInterval time.Duration
}

// LessonGridService generates lesson grid previews and commits them as the persisted
// slot set of an academic year.
type LessonGridService struct {
	years   academicYearReader
	slots   lessonSlotReplacer
	configs lessonGridConfigRepository
	cache   lessonSlotCacheInvalidator
	tx      txProvider
	metrics *MetricsService
	logger  *zap.Logger
	store   *previewStore
	now     func() time.Time
}

// NewLessonGridService wires lesson grid dependencies.
func NewLessonGridService(
	years academicYearReader,
	slots lessonSlotReplacer,
	configs lessonGridConfigRepository,
	cache lessonSlotCacheInvalidator,
	tx txProvider,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg LessonGridServiceConfig,
) *LessonGridService {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := newPreviewStore(cfg.PreviewTTL, cfg.CleanupInterval)
	metrics.TrackActivePreviews(store.Count)
	return &LessonGridService{
		years:   years,
		slots:   slots,
		configs: configs,
		cache:   cache,
		tx:      tx,
		metrics: metrics,
		logger:  logger,
		store:   store,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Generate validates the form and stores a new preview for the academic year.
func (s *LessonGridService) Generate(ctx context.Context, academicYearID string, cfg models.ScheduleConfig) (*dto.LessonGridPreviewResponse, error) {
	if err := requireAcademicYear(ctx, s.years, academicYearID); err != nil {
		return nil, err
	}

	grid, err := GenerateLessonGrid(cfg)
	if err != nil {
		s.metrics.RecordGeneration(OutcomeRejected)
		s.logger.Info("lesson grid rejected",
			zap.String("academic_year_id", academicYearID),
			zap.String("code", appErrors.CodeOf(err)),
			zap.Error(err))
		return nil, err
	}

	now := s.now()
	preview := models.LessonGridPreview{
		ID:             uuid.NewString(),
		AcademicYearID: academicYearID,
		State:          models.PreviewStatePreviewed,
		Config:         cfg,
		Slots:          grid.Slots,
		BreakPlacement: grid.BreakPlacement,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.store.Save(preview)
	s.metrics.RecordGeneration(OutcomeSuccess)
	return previewResponse(preview), nil
}

// GetPreview returns a stored preview.
func (s *LessonGridService) GetPreview(ctx context.Context, previewID string) (*dto.LessonGridPreviewResponse, error) {
	preview, ok := s.store.Get(previewID)
	if !ok {
		return nil, previewNotFound()
	}
	return previewResponse(preview), nil
}

// RemovePreviewSlot drops one entry from the preview. The remaining entries are not
// re-validated.
func (s *LessonGridService) RemovePreviewSlot(ctx context.Context, previewID string, weekday models.Weekday, lessonNumber int) (*dto.LessonGridPreviewResponse, error) {
	updated, err := s.store.Update(previewID, func(p *models.LessonGridPreview) error {
		if p.State == models.PreviewStateSaving {
			return appErrors.Clone(appErrors.ErrConflict, "lesson grid preview is being saved")
		}
		for i, slot := range p.Slots {
			if slot.Weekday == weekday && slot.LessonNumber == lessonNumber {
				p.Slots = append(p.Slots[:i], p.Slots[i+1:]...)
				return nil
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("lesson %d on %s is not in the preview", lessonNumber, weekday))
	})
	if err != nil {
		return nil, err
	}
	return previewResponse(updated), nil
}

// DiscardPreview drops the preview.
func (s *LessonGridService) DiscardPreview(ctx context.Context, previewID string) error {
	preview, ok := s.store.Get(previewID)
	if !ok {
		return previewNotFound()
	}
	if preview.State == models.PreviewStateSaving {
		return appErrors.Clone(appErrors.ErrConflict, "lesson grid preview is being saved")
	}
	s.store.Delete(previewID)
	return nil
}

// Confirm replaces the persisted slots of the preview's academic year with the preview
// entries. On failure the preview stays available for another attempt.
func (s *LessonGridService) Confirm(ctx context.Context, previewID, actorID string) (*dto.ConfirmLessonGridResponse, error) {
	preview, err := s.store.Update(previewID, func(p *models.LessonGridPreview) error {
		if p.State == models.PreviewStateSaving {
			return appErrors.Clone(appErrors.ErrConflict, "lesson grid preview is already being saved")
		}
		p.State = models.PreviewStateSaving
		p.LastError = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	slots, err := s.persist(ctx, preview, actorID)
	if err != nil {
		s.metrics.RecordConfirmation(OutcomeFailed, time.Since(start))
		s.logger.Error("lesson grid save failed",
			zap.String("preview_id", previewID),
			zap.String("academic_year_id", preview.AcademicYearID),
			zap.Error(err))
		_, _ = s.store.Update(previewID, func(p *models.LessonGridPreview) error {
			p.State = models.PreviewStatePreviewed
			p.LastError = err.Error()
			return nil
		})
		return nil, appErrors.Wrap(err, appErrors.ErrPersistenceFailure.Code, appErrors.ErrPersistenceFailure.Status, appErrors.ErrPersistenceFailure.Message)
	}

	s.store.Delete(previewID)
	if s.cache != nil {
		s.cache.InvalidateAcademicYear(ctx, preview.AcademicYearID)
	}
	s.metrics.RecordConfirmation(OutcomeSuccess, time.Since(start))
	s.logger.Info("lesson grid saved",
		zap.String("academic_year_id", preview.AcademicYearID),
		zap.Int("slots", len(slots)),
		zap.String("actor", actorID))

	return &dto.ConfirmLessonGridResponse{
		AcademicYearID: preview.AcademicYearID,
		Slots:          slots,
		SlotCount:      len(slots),
	}, nil
}

func (s *LessonGridService) persist(ctx context.Context, preview models.LessonGridPreview, actorID string) (slots []models.LessonSlot, err error) {
	if s.tx == nil {
		return nil, errors.New("transaction provider missing")
	}

	configJSON, err := json.Marshal(preview.Config)
	if err != nil {
		return nil, fmt.Errorf("encode grid config: %w", err)
	}

	slots = make([]models.LessonSlot, 0, len(preview.Slots))
	for _, draft := range preview.Slots {
		slots = append(slots, models.LessonSlot{
			AcademicYearID: preview.AcademicYearID,
			LessonNumber:   draft.LessonNumber,
			Weekday:        draft.Weekday,
			StartTime:      draft.StartTime,
			EndTime:        draft.EndTime,
		})
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.slots.ReplaceForAcademicYear(ctx, tx, preview.AcademicYearID, slots); err != nil {
		return nil, err
	}

	record := &models.LessonGridConfigRecord{
		AcademicYearID: preview.AcademicYearID,
		Config:         configJSON,
		SlotCount:      len(slots),
		ConfirmedAt:    s.now(),
	}
	if actorID != "" {
		record.ConfirmedBy = &actorID
	}
	if s.configs != nil {
		if err = s.configs.Upsert(ctx, tx, record); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return slots, nil
}

// GetConfig returns the last confirmed form for the academic year.
func (s *LessonGridService) GetConfig(ctx context.Context, academicYearID string) (*dto.LessonGridConfigResponse, error) {
	if s.configs == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson grid has not been confirmed")
	}
	record, err := s.configs.FindByAcademicYear(ctx, academicYearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson grid has not been confirmed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson grid config")
	}

	var cfg models.ScheduleConfig
	if err := record.Config.Unmarshal(&cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode lesson grid config")
	}
	return &dto.LessonGridConfigResponse{
		AcademicYearID: record.AcademicYearID,
		Config:         cfg,
		SlotCount:      record.SlotCount,
		ConfirmedBy:    record.ConfirmedBy,
		ConfirmedAt:    record.ConfirmedAt.UTC().Format(time.RFC3339),
	}, nil
}

// loadAcademicYear returns nil without error when no reader is wired.
func loadAcademicYear(ctx context.Context, years academicYearReader, id string) (*models.AcademicYear, error) {
	if years == nil {
		return nil, nil
	}
	year, err := years.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	return year, nil
}

func requireAcademicYear(ctx context.Context, years academicYearReader, id string) error {
	_, err := loadAcademicYear(ctx, years, id)
	return err
}

func previewNotFound() error {
	return appErrors.Clone(appErrors.ErrNotFound, "lesson grid preview not found or expired")
}

func previewResponse(p models.LessonGridPreview) *dto.LessonGridPreviewResponse {
	return &dto.LessonGridPreviewResponse{
		PreviewID:      p.ID,
		AcademicYearID: p.AcademicYearID,
		State:          p.State,
		Slots:          p.Slots,
		BreakPlacement: p.BreakPlacement,
		SlotCount:      len(p.Slots),
		LastError:      p.LastError,
	}
}

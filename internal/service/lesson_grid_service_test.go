package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	appErrors "github.com/noah-isme/sma-lesson-grid-api/pkg/errors"
)

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type yearReaderStub struct {
	years map[string]*models.AcademicYear
	err   error
}

func (s yearReaderStub) FindByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	if s.err != nil {
		return nil, s.err
	}
	if year, ok := s.years[id]; ok {
		return year, nil
	}
	return nil, sql.ErrNoRows
}

type slotReplacerStub struct {
	mu       sync.Mutex
	calls    int
	lastYear string
	last     []models.LessonSlot
	sawTx    bool
	err      error
	block    chan struct{}
	entered  chan struct{}
}

func (s *slotReplacerStub) ReplaceForAcademicYear(ctx context.Context, exec sqlx.ExtContext, academicYearID string, slots []models.LessonSlot) error {
	if s.entered != nil {
		close(s.entered)
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastYear = academicYearID
	s.last = append([]models.LessonSlot(nil), slots...)
	_, s.sawTx = exec.(*sqlx.Tx)
	return s.err
}

type gridConfigStub struct {
	record *models.LessonGridConfigRecord
	err    error
}

func (s *gridConfigStub) Upsert(ctx context.Context, exec sqlx.ExtContext, record *models.LessonGridConfigRecord) error {
	if s.err != nil {
		return s.err
	}
	s.record = record
	return nil
}

func (s *gridConfigStub) FindByAcademicYear(ctx context.Context, academicYearID string) (*models.LessonGridConfigRecord, error) {
	if s.record == nil || s.record.AcademicYearID != academicYearID {
		return nil, sql.ErrNoRows
	}
	return s.record, nil
}

type invalidatorStub struct {
	years []string
}

func (s *invalidatorStub) InvalidateAcademicYear(ctx context.Context, academicYearID string) {
	s.years = append(s.years, academicYearID)
}

type lessonGridFixture struct {
	svc     *LessonGridService
	slots   *slotReplacerStub
	configs *gridConfigStub
	cache   *invalidatorStub
	mock    sqlmock.Sqlmock
}

func newLessonGridFixture(t *testing.T) *lessonGridFixture {
	tx, mock := newTxProviderMock(t)
	f := &lessonGridFixture{
		slots:   &slotReplacerStub{},
		configs: &gridConfigStub{},
		cache:   &invalidatorStub{},
		mock:    mock,
	}
	years := yearReaderStub{years: map[string]*models.AcademicYear{"year-1": {ID: "year-1", Name: "2025/2026"}}}
	f.svc = NewLessonGridService(years, f.slots, f.configs, f.cache, tx, nil, nil, LessonGridServiceConfig{})
	return f
}

func TestLessonGridServiceGenerateStoresPreview(t *testing.T) {
	f := newLessonGridFixture(t)
	cfg := baseGridConfig()
	cfg.Weekdays = []string{"MONDAY", "TUESDAY"}

	preview, err := f.svc.Generate(context.Background(), "year-1", cfg)
	require.NoError(t, err)
	assert.Equal(t, models.PreviewStatePreviewed, preview.State)
	assert.Equal(t, 4, preview.SlotCount)

	stored, err := f.svc.GetPreview(context.Background(), preview.PreviewID)
	require.NoError(t, err)
	assert.Equal(t, preview.Slots, stored.Slots)
}

func TestLessonGridServiceGenerateRejectsInvalidForm(t *testing.T) {
	f := newLessonGridFixture(t)
	cfg := baseGridConfig()
	cfg.Breaks = []models.BreakInterval{{StartTime: "08:00", DurationMinutes: "15"}}

	preview, err := f.svc.Generate(context.Background(), "year-1", cfg)
	require.Error(t, err)
	assert.Nil(t, preview)
	assert.Equal(t, appErrors.ErrMisalignedBreak.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, f.svc.store.Count())
}

func TestLessonGridServiceGenerateUnknownYear(t *testing.T) {
	f := newLessonGridFixture(t)

	_, err := f.svc.Generate(context.Background(), "missing", baseGridConfig())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLessonGridServiceRemovePreviewSlot(t *testing.T) {
	f := newLessonGridFixture(t)
	preview, err := f.svc.Generate(context.Background(), "year-1", baseGridConfig())
	require.NoError(t, err)

	updated, err := f.svc.RemovePreviewSlot(context.Background(), preview.PreviewID, models.Monday, 1)
	require.NoError(t, err)
	require.Len(t, updated.Slots, 1)
	assert.Equal(t, 2, updated.Slots[0].LessonNumber)
	assert.Equal(t, "07:50", updated.Slots[0].StartTime)

	_, err = f.svc.RemovePreviewSlot(context.Background(), preview.PreviewID, models.Monday, 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLessonGridServiceDiscardPreview(t *testing.T) {
	f := newLessonGridFixture(t)
	preview, err := f.svc.Generate(context.Background(), "year-1", baseGridConfig())
	require.NoError(t, err)

	require.NoError(t, f.svc.DiscardPreview(context.Background(), preview.PreviewID))
	_, err = f.svc.GetPreview(context.Background(), preview.PreviewID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLessonGridServiceConfirmPersistsInOneTransaction(t *testing.T) {
	f := newLessonGridFixture(t)
	cfg := baseGridConfig()
	cfg.Breaks = []models.BreakInterval{{StartTime: "07:50", DurationMinutes: "20"}}
	preview, err := f.svc.Generate(context.Background(), "year-1", cfg)
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.Confirm(context.Background(), preview.PreviewID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.SlotCount)
	assert.Equal(t, "08:10", result.Slots[1].StartTime)

	assert.Equal(t, 1, f.slots.calls)
	assert.True(t, f.slots.sawTx)
	assert.Equal(t, "year-1", f.slots.lastYear)
	require.NotNil(t, f.configs.record)
	assert.Equal(t, 2, f.configs.record.SlotCount)
	require.NotNil(t, f.configs.record.ConfirmedBy)
	assert.Equal(t, "admin-1", *f.configs.record.ConfirmedBy)
	assert.Equal(t, []string{"year-1"}, f.cache.years)

	_, err = f.svc.GetPreview(context.Background(), preview.PreviewID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	saved, err := f.svc.GetConfig(context.Background(), "year-1")
	require.NoError(t, err)
	assert.Equal(t, cfg, saved.Config)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLessonGridServiceConfirmFailureKeepsPreview(t *testing.T) {
	f := newLessonGridFixture(t)
	f.slots.err = errors.New("connection reset")
	preview, err := f.svc.Generate(context.Background(), "year-1", baseGridConfig())
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err = f.svc.Confirm(context.Background(), preview.PreviewID, "admin-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPersistenceFailure.Code, appErr.Code)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, f.cache.years)

	stored, err := f.svc.GetPreview(context.Background(), preview.PreviewID)
	require.NoError(t, err)
	assert.Equal(t, models.PreviewStatePreviewed, stored.State)
	assert.Contains(t, stored.LastError, "connection reset")
	assert.Equal(t, preview.Slots, stored.Slots)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	f.slots.err = nil
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err = f.svc.Confirm(context.Background(), preview.PreviewID, "admin-1")
	require.NoError(t, err)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLessonGridServiceConfirmConfigFailureRollsBack(t *testing.T) {
	f := newLessonGridFixture(t)
	f.configs.err = errors.New("disk full")
	preview, err := f.svc.Generate(context.Background(), "year-1", baseGridConfig())
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err = f.svc.Confirm(context.Background(), preview.PreviewID, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPersistenceFailure.Code, appErrors.FromError(err).Code)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLessonGridServiceRejectsConfirmWhileSaving(t *testing.T) {
	f := newLessonGridFixture(t)
	f.slots.block = make(chan struct{})
	f.slots.entered = make(chan struct{})
	preview, err := f.svc.Generate(context.Background(), "year-1", baseGridConfig())
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Confirm(context.Background(), preview.PreviewID, "admin-1")
		done <- err
	}()
	<-f.slots.entered

	_, err = f.svc.Confirm(context.Background(), preview.PreviewID, "admin-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = f.svc.RemovePreviewSlot(context.Background(), preview.PreviewID, models.Monday, 1)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	err = f.svc.DiscardPreview(context.Background(), preview.PreviewID)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	close(f.slots.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.slots.calls)
}

func TestLessonGridServiceConfirmEmptyPreviewClearsYear(t *testing.T) {
	f := newLessonGridFixture(t)
	cfg := baseGridConfig()
	cfg.LessonCount = "1"
	preview, err := f.svc.Generate(context.Background(), "year-1", cfg)
	require.NoError(t, err)
	_, err = f.svc.RemovePreviewSlot(context.Background(), preview.PreviewID, models.Monday, 1)
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	result, err := f.svc.Confirm(context.Background(), preview.PreviewID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.SlotCount)
	assert.Empty(t, f.slots.last)
}

func TestLessonGridServiceGetConfigMissing(t *testing.T) {
	f := newLessonGridFixture(t)
	_, err := f.svc.GetConfig(context.Background(), "year-1")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

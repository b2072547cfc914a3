package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-lesson-grid-api/internal/dto"
	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	appErrors "github.com/noah-isme/sma-lesson-grid-api/pkg/errors"
)

type academicYearRepoStub struct {
	years     map[string]*models.AcademicYear
	activated []string
	deleted   []string
}

func (s *academicYearRepoStub) List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error) {
	var out []models.AcademicYear
	for _, y := range s.years {
		out = append(out, *y)
	}
	return out, len(out), nil
}

func (s *academicYearRepoStub) FindByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	if y, ok := s.years[id]; ok {
		copy := *y
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *academicYearRepoStub) FindActive(ctx context.Context) (*models.AcademicYear, error) {
	for _, y := range s.years {
		if y.IsActive {
			return y, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *academicYearRepoStub) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	for id, y := range s.years {
		if y.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *academicYearRepoStub) Create(ctx context.Context, year *models.AcademicYear) error {
	year.ID = "year-new"
	s.years[year.ID] = year
	return nil
}

func (s *academicYearRepoStub) Update(ctx context.Context, year *models.AcademicYear) error {
	s.years[year.ID] = year
	return nil
}

func (s *academicYearRepoStub) SetActive(ctx context.Context, id string) error {
	s.activated = append(s.activated, id)
	return nil
}

func (s *academicYearRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type slotCounterStub map[string]int

func (s slotCounterStub) CountByAcademicYear(ctx context.Context, academicYearID string) (int, error) {
	return s[academicYearID], nil
}

func newAcademicYearFixture() (*AcademicYearService, *academicYearRepoStub) {
	repo := &academicYearRepoStub{years: map[string]*models.AcademicYear{
		"year-1": {ID: "year-1", Name: "2024/2025", IsActive: true},
		"year-2": {ID: "year-2", Name: "2025/2026"},
		"year-3": {ID: "year-3", Name: "2026/2027"},
	}}
	return NewAcademicYearService(repo, slotCounterStub{"year-2": 40}, nil, nil), repo
}

func TestAcademicYearServiceCreate(t *testing.T) {
	svc, repo := newAcademicYearFixture()
	start := time.Date(2027, 7, 1, 0, 0, 0, 0, time.UTC)

	year, err := svc.Create(context.Background(), dto.CreateAcademicYearRequest{
		Name: " 2027/2028 ", StartDate: start, EndDate: start.AddDate(1, 0, 0), IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "2027/2028", year.Name)
	assert.True(t, year.IsActive)
	assert.Equal(t, []string{"year-new"}, repo.activated)
}

func TestAcademicYearServiceCreateValidation(t *testing.T) {
	svc, _ := newAcademicYearFixture()
	start := time.Date(2027, 7, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), dto.CreateAcademicYearRequest{Name: "2027/2028", StartDate: start, EndDate: start})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), dto.CreateAcademicYearRequest{Name: "2025/2026", StartDate: start, EndDate: start.AddDate(1, 0, 0)})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAcademicYearServiceUpdateKeepsOwnName(t *testing.T) {
	svc, _ := newAcademicYearFixture()
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	year, err := svc.Update(context.Background(), "year-2", dto.UpdateAcademicYearRequest{Name: "2025/2026", StartDate: start, EndDate: start.AddDate(1, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, start, year.StartDate)

	_, err = svc.Update(context.Background(), "year-x", dto.UpdateAcademicYearRequest{Name: "x", StartDate: start, EndDate: start.AddDate(1, 0, 0)})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAcademicYearServiceDeleteGuards(t *testing.T) {
	svc, repo := newAcademicYearFixture()

	err := svc.Delete(context.Background(), "year-1")
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	err = svc.Delete(context.Background(), "year-2")
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), "year-3"))
	assert.Equal(t, []string{"year-3"}, repo.deleted)
}

func TestAcademicYearServiceActive(t *testing.T) {
	svc, repo := newAcademicYearFixture()

	active, err := svc.GetActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "year-1", active.ID)

	year, err := svc.SetActive(context.Background(), "year-3")
	require.NoError(t, err)
	assert.True(t, year.IsActive)
	assert.Equal(t, []string{"year-3"}, repo.activated)

	_, pagination, err := svc.List(context.Background(), models.AcademicYearFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, pagination.TotalCount)
	assert.Equal(t, 20, pagination.PageSize)
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
)

// LessonGridConfigRepository keeps the last confirmed grid form per academic year.
type LessonGridConfigRepository struct {
	db *sqlx.DB
}

// NewLessonGridConfigRepository builds repository.
func NewLessonGridConfigRepository(db *sqlx.DB) *LessonGridConfigRepository {
	return &LessonGridConfigRepository{db: db}
}

func (r *LessonGridConfigRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Upsert stores the record, replacing any previous one for the year.
func (r *LessonGridConfigRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, record *models.LessonGridConfigRecord) error {
	if record.ConfirmedAt.IsZero() {
		record.ConfirmedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO lesson_grid_configs (academic_year_id, config, confirmed_by, slot_count, confirmed_at)
VALUES (:academic_year_id, :config, :confirmed_by, :slot_count, :confirmed_at)
ON CONFLICT (academic_year_id) DO UPDATE
SET config = EXCLUDED.config,
    confirmed_by = EXCLUDED.confirmed_by,
    slot_count = EXCLUDED.slot_count,
    confirmed_at = EXCLUDED.confirmed_at`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, record); err != nil {
		return fmt.Errorf("upsert lesson grid config: %w", err)
	}
	return nil
}

// FindByAcademicYear returns the stored record.
func (r *LessonGridConfigRepository) FindByAcademicYear(ctx context.Context, academicYearID string) (*models.LessonGridConfigRecord, error) {
	const query = `SELECT academic_year_id, config, confirmed_by, slot_count, confirmed_at FROM lesson_grid_configs WHERE academic_year_id = $1`
	var record models.LessonGridConfigRecord
	if err := r.db.GetContext(ctx, &record, query, academicYearID); err != nil {
		return nil, err
	}
	return &record, nil
}

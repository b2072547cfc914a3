package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
)

const lessonSlotColumns = `id, academic_year_id, lesson_number, weekday, start_time, end_time, created_at, updated_at`

const lessonSlotOrder = `ORDER BY CASE weekday WHEN 'MONDAY' THEN 1 WHEN 'TUESDAY' THEN 2 WHEN 'WEDNESDAY' THEN 3 WHEN 'THURSDAY' THEN 4 WHEN 'FRIDAY' THEN 5 ELSE 6 END ASC, lesson_number ASC`

const insertLessonSlot = `INSERT INTO lesson_slots (id, academic_year_id, lesson_number, weekday, start_time, end_time, created_at, updated_at) VALUES (:id, :academic_year_id, :lesson_number, :weekday, :start_time, :end_time, :created_at, :updated_at)`

// LessonSlotRepository persists the weekly lesson grid of each academic year.
type LessonSlotRepository struct {
	db *sqlx.DB
}

// NewLessonSlotRepository creates a lesson slot repository.
func NewLessonSlotRepository(db *sqlx.DB) *LessonSlotRepository {
	return &LessonSlotRepository{db: db}
}

func (r *LessonSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByAcademicYear returns slots ordered Monday to Friday, then by lesson number.
func (r *LessonSlotRepository) ListByAcademicYear(ctx context.Context, academicYearID string) ([]models.LessonSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM lesson_slots WHERE academic_year_id = $1 %s", lessonSlotColumns, lessonSlotOrder)
	var slots []models.LessonSlot
	if err := r.db.SelectContext(ctx, &slots, query, academicYearID); err != nil {
		return nil, fmt.Errorf("list lesson slots: %w", err)
	}
	return slots, nil
}

// FindByID loads a slot by id.
func (r *LessonSlotRepository) FindByID(ctx context.Context, id string) (*models.LessonSlot, error) {
	query := fmt.Sprintf("SELECT %s FROM lesson_slots WHERE id = $1", lessonSlotColumns)
	var slot models.LessonSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ExistsAt reports whether the year already has a slot for the weekday and lesson number.
func (r *LessonSlotRepository) ExistsAt(ctx context.Context, academicYearID string, weekday models.Weekday, lessonNumber int) (bool, error) {
	const query = `SELECT 1 FROM lesson_slots WHERE academic_year_id = $1 AND weekday = $2 AND lesson_number = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, academicYearID, weekday, lessonNumber); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check lesson slot position: %w", err)
	}
	return true, nil
}

// CountByAcademicYear returns how many slots the year owns.
func (r *LessonSlotRepository) CountByAcademicYear(ctx context.Context, academicYearID string) (int, error) {
	const query = `SELECT COUNT(*) FROM lesson_slots WHERE academic_year_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, academicYearID); err != nil {
		return 0, fmt.Errorf("count lesson slots: %w", err)
	}
	return count, nil
}

// Create stores a single slot.
func (r *LessonSlotRepository) Create(ctx context.Context, slot *models.LessonSlot) error {
	stampLessonSlot(slot, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertLessonSlot, slot); err != nil {
		return fmt.Errorf("create lesson slot: %w", err)
	}
	return nil
}

// Delete removes a slot by id.
func (r *LessonSlotRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lesson_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lesson slot: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceForAcademicYear deletes every slot of the year and inserts the given set. Pass a
// transaction so both steps commit or roll back together.
func (r *LessonSlotRepository) ReplaceForAcademicYear(ctx context.Context, exec sqlx.ExtContext, academicYearID string, slots []models.LessonSlot) error {
	target := r.exec(exec)

	if _, err := target.ExecContext(ctx, `DELETE FROM lesson_slots WHERE academic_year_id = $1`, academicYearID); err != nil {
		return fmt.Errorf("delete lesson slots for academic year: %w", err)
	}

	now := time.Now().UTC()
	for i := range slots {
		slot := &slots[i]
		slot.AcademicYearID = academicYearID
		stampLessonSlot(slot, now)
		if _, err := sqlx.NamedExecContext(ctx, target, insertLessonSlot, slot); err != nil {
			return fmt.Errorf("insert lesson slot: %w", err)
		}
	}
	return nil
}

func stampLessonSlot(slot *models.LessonSlot, now time.Time) {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now
}

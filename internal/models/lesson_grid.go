package models

import (
	"strconv"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// BreakInterval is a recess row as typed into the grid form.
type BreakInterval struct {
	StartTime       string `json:"startTime"`
	DurationMinutes string `json:"durationMinutes"`
}

// ScheduleConfig holds the raw grid form values. Numeric fields stay strings so that
// empty and non-numeric input can be told apart during generation.
type ScheduleConfig struct {
	StartTime             string          `json:"startTime"`
	LessonDurationMinutes string          `json:"lessonDurationMinutes"`
	LessonCount           string          `json:"lessonCount"`
	Weekdays              []string        `json:"weekdays"`
	Breaks                []BreakInterval `json:"breaks"`
}

// LessonSlotDraft is a generated slot that has not been persisted yet.
type LessonSlotDraft struct {
	Weekday      Weekday `json:"weekday"`
	LessonNumber int     `json:"lessonNumber"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
}

// BreakPlacement records where a break landed in the simulated day.
type BreakPlacement struct {
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	EndTime         string `json:"endTime"`
}

// AsInterval converts a placement back into a form row.
func (p BreakPlacement) AsInterval() BreakInterval {
	return BreakInterval{StartTime: p.StartTime, DurationMinutes: strconv.Itoa(p.DurationMinutes)}
}

// LessonGrid is the output of a successful generation. BreakPlacement is keyed by the
// number of the lesson the break follows.
type LessonGrid struct {
	Slots          []LessonSlotDraft      `json:"slots"`
	BreakPlacement map[int]BreakPlacement `json:"breakPlacement"`
}

// PreviewState tracks an editing session between generation and confirmation.
type PreviewState string

const (
	PreviewStateIdle      PreviewState = "IDLE"
	PreviewStatePreviewed PreviewState = "PREVIEWED"
	PreviewStateSaving    PreviewState = "SAVING"
)

// LessonGridPreview is an unconfirmed grid held in memory for an academic year.
type LessonGridPreview struct {
	ID             string                 `json:"id"`
	AcademicYearID string                 `json:"academicYearId"`
	State          PreviewState           `json:"state"`
	Config         ScheduleConfig         `json:"config"`
	Slots          []LessonSlotDraft      `json:"slots"`
	BreakPlacement map[int]BreakPlacement `json:"breakPlacement"`
	LastError      string                 `json:"lastError,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// LessonGridConfigRecord stores the last confirmed form values for an academic year.
type LessonGridConfigRecord struct {
	AcademicYearID string         `db:"academic_year_id" json:"academic_year_id"`
	Config         types.JSONText `db:"config" json:"config"`
	ConfirmedBy    *string        `db:"confirmed_by" json:"confirmed_by,omitempty"`
	SlotCount      int            `db:"slot_count" json:"slot_count"`
	ConfirmedAt    time.Time      `db:"confirmed_at" json:"confirmed_at"`
}

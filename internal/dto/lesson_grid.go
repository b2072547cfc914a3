package dto

import "github.com/noah-isme/sma-lesson-grid-api/internal/models"

// GenerateLessonGridRequest carries the grid form. Numeric values arrive as strings.
type GenerateLessonGridRequest struct {
	models.ScheduleConfig
}

// LessonGridPreviewResponse describes a stored preview.
type LessonGridPreviewResponse struct {
	PreviewID      string                        `json:"previewId"`
	AcademicYearID string                        `json:"academicYearId"`
	State          models.PreviewState           `json:"state"`
	Slots          []models.LessonSlotDraft      `json:"slots"`
	BreakPlacement map[int]models.BreakPlacement `json:"breakPlacement"`
	SlotCount      int                           `json:"slotCount"`
	LastError      string                        `json:"lastError,omitempty"`
}

// ConfirmLessonGridResponse reports the persisted replacement.
type ConfirmLessonGridResponse struct {
	AcademicYearID string              `json:"academicYearId"`
	Slots          []models.LessonSlot `json:"slots"`
	SlotCount      int                 `json:"slotCount"`
}

// LessonGridConfigResponse returns the last confirmed form values.
type LessonGridConfigResponse struct {
	AcademicYearID string                `json:"academicYearId"`
	Config         models.ScheduleConfig `json:"config"`
	SlotCount      int                   `json:"slotCount"`
	ConfirmedBy    *string               `json:"confirmedBy,omitempty"`
	ConfirmedAt    string                `json:"confirmedAt"`
}

// CreateLessonSlotRequest adds a single slot outside the generator.
type CreateLessonSlotRequest struct {
	LessonNumber int    `json:"lessonNumber" validate:"required,min=1,max=24"`
	Weekday      string `json:"weekday" validate:"required"`
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
}

// ExportFormat selects the rendering for timetable exports.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

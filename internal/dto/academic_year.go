package dto

import "time"

// CreateAcademicYearRequest describes payload for creating academic years.
type CreateAcademicYearRequest struct {
	Name      string    `json:"name" validate:"required,max=64"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	IsActive  bool      `json:"is_active"`
}

// UpdateAcademicYearRequest updates name and dates.
type UpdateAcademicYearRequest struct {
	Name      string    `json:"name" validate:"required,max=64"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
}

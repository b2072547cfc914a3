package models

import "time"

// AcademicYear owns a weekly lesson grid. Only one year is active at a time.
type AcademicYear struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AcademicYearFilter defines filters supported by list endpoints.
type AcademicYearFilter struct {
	Search    string
	IsActive  *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

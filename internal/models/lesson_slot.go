package models

import (
	"strings"
	"time"
)

// Weekday identifies a teaching day. Lesson grids only cover Monday to Friday.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
)

// Weekdays lists teaching days in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayIndex = map[Weekday]int{
	Monday:    1,
	Tuesday:   2,
	Wednesday: 3,
	Thursday:  4,
	Friday:    5,
}

// ParseWeekday accepts a weekday name in any case.
func ParseWeekday(raw string) (Weekday, bool) {
	day := Weekday(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := weekdayIndex[day]; !ok {
		return "", false
	}
	return day, true
}

// Index returns 1 for Monday through 5 for Friday, 0 when unknown.
func (w Weekday) Index() int {
	return weekdayIndex[w]
}

// LessonSlot is a persisted teaching period for an academic year.
type LessonSlot struct {
	ID             string    `db:"id" json:"id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	LessonNumber   int       `db:"lesson_number" json:"lesson_number"`
	Weekday        Weekday   `db:"weekday" json:"weekday"`
	StartTime      string    `db:"start_time" json:"start_time"`
	EndTime        string    `db:"end_time" json:"end_time"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

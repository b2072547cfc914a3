package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-lesson-grid-api/internal/models"
	"github.com/noah-isme/sma-lesson-grid-api/pkg/clock"
	appErrors "github.com/noah-isme/sma-lesson-grid-api/pkg/errors"
)

const (
	maxLessonsPerDay = 24
	maxLessonMinutes = 12 * 60
	maxBreakMinutes  = 12 * 60
)

// GridValidationError identifies the form field or break that blocked generation.
type GridValidationError struct {
	Code       string `json:"code"`
	Field      string `json:"field,omitempty"`
	BreakStart string `json:"breakStart,omitempty"`
}

// Error implements the error interface.
func (e *GridValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.BreakStart != "" {
		return fmt.Sprintf("%s at %s", strings.ToLower(e.Code), e.BreakStart)
	}
	return fmt.Sprintf("%s on %s", strings.ToLower(e.Code), e.Field)
}

func gridError(base *appErrors.Error, field, breakStart, message string) error {
	detail := &GridValidationError{Code: base.Code, Field: field, BreakStart: breakStart}
	return appErrors.Wrap(detail, base.Code, base.Status, message)
}

type gridBreak struct {
	start    int
	duration int
}

type gridInput struct {
	start    int
	duration int
	count    int
	weekdays []models.Weekday
	breaks   []gridBreak
}

type lessonSpan struct {
	number int
	start  int
	end    int
}

// GenerateLessonGrid expands a grid form into one slot per weekday and lesson number.
// It performs no I/O and returns the same grid for the same input.
func GenerateLessonGrid(cfg models.ScheduleConfig) (*models.LessonGrid, error) {
	input, err := parseScheduleConfig(cfg)
	if err != nil {
		return nil, err
	}

	day, placement, boundaries := simulateDay(input)

	for _, brk := range input.breaks {
		if _, ok := boundaries[brk.start]; !ok {
			label := clock.Format(brk.start)
			return nil, gridError(appErrors.ErrMisalignedBreak, "breaks", label,
				fmt.Sprintf("break at %s does not start at the end of a lesson", label))
		}
	}

	slots := make([]models.LessonSlotDraft, 0, len(input.weekdays)*len(day))
	for _, weekday := range input.weekdays {
		for _, span := range day {
			slots = append(slots, models.LessonSlotDraft{
				Weekday:      weekday,
				LessonNumber: span.number,
				StartTime:    clock.Format(span.start),
				EndTime:      clock.Format(span.end),
			})
		}
	}

	return &models.LessonGrid{Slots: slots, BreakPlacement: placement}, nil
}

// simulateDay walks a single day lesson by lesson. The returned boundary set holds every
// lesson end, folded into one day, and is the only place a break may start.
func simulateDay(input gridInput) ([]lessonSpan, map[int]models.BreakPlacement, map[int]struct{}) {
	spans := make([]lessonSpan, 0, input.count)
	placement := make(map[int]models.BreakPlacement)
	boundaries := make(map[int]struct{}, input.count)

	current := input.start
	for number := 1; number <= input.count; number++ {
		end := current + input.duration
		spans = append(spans, lessonSpan{number: number, start: current, end: end})

		boundary := clock.Normalize(end)
		boundaries[boundary] = struct{}{}

		current = end
		if brk, ok := breakAt(input.breaks, boundary); ok {
			current = end + brk.duration
			placement[number] = models.BreakPlacement{
				StartTime:       clock.Format(end),
				DurationMinutes: brk.duration,
				EndTime:         clock.Format(current),
			}
		}
	}
	return spans, placement, boundaries
}

// breakAt returns the first configured break starting at the boundary.
func breakAt(breaks []gridBreak, boundary int) (gridBreak, bool) {
	for _, brk := range breaks {
		if brk.start == boundary {
			return brk, true
		}
	}
	return gridBreak{}, false
}

func parseScheduleConfig(cfg models.ScheduleConfig) (gridInput, error) {
	var input gridInput

	if strings.TrimSpace(cfg.StartTime) == "" {
		return input, gridError(appErrors.ErrMissingField, "startTime", "", "startTime is required")
	}
	start, err := clock.Parse(cfg.StartTime)
	if err != nil {
		return input, gridError(appErrors.ErrInvalidTime, "startTime", "", "startTime must use HH:MM")
	}
	input.start = start

	if input.duration, err = parsePositive("lessonDurationMinutes", cfg.LessonDurationMinutes, maxLessonMinutes); err != nil {
		return input, err
	}
	if input.count, err = parsePositive("lessonCount", cfg.LessonCount, maxLessonsPerDay); err != nil {
		return input, err
	}
	if input.weekdays, err = parseWeekdays(cfg.Weekdays); err != nil {
		return input, err
	}

	input.breaks = make([]gridBreak, 0, len(cfg.Breaks))
	for i, item := range cfg.Breaks {
		startField := fmt.Sprintf("breaks[%d].startTime", i)
		if strings.TrimSpace(item.StartTime) == "" {
			return input, gridError(appErrors.ErrMissingField, startField, "", startField+" is required")
		}
		brkStart, err := clock.Parse(item.StartTime)
		if err != nil {
			return input, gridError(appErrors.ErrInvalidTime, startField, "", startField+" must use HH:MM")
		}
		duration, err := parsePositive(fmt.Sprintf("breaks[%d].durationMinutes", i), item.DurationMinutes, maxBreakMinutes)
		if err != nil {
			return input, err
		}
		input.breaks = append(input.breaks, gridBreak{start: brkStart, duration: duration})
	}

	return input, nil
}

func parsePositive(field, raw string, limit int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, gridError(appErrors.ErrMissingField, field, "", field+" is required")
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, gridError(appErrors.ErrInvalidNumber, field, "", field+" must be a positive integer")
	}
	if value > limit {
		return 0, gridError(appErrors.ErrInvalidNumber, field, "", fmt.Sprintf("%s must not exceed %d", field, limit))
	}
	return value, nil
}

func parseWeekdays(raw []string) ([]models.Weekday, error) {
	if len(raw) == 0 {
		return nil, gridError(appErrors.ErrMissingField, "weekdays", "", "at least one weekday must be selected")
	}
	unique := make(map[models.Weekday]struct{}, len(raw))
	for i, item := range raw {
		day, ok := models.ParseWeekday(item)
		if !ok {
			field := fmt.Sprintf("weekdays[%d]", i)
			return nil, gridError(appErrors.ErrInvalidWeekday, field, "", fmt.Sprintf("%s %q is not a teaching day", field, item))
		}
		unique[day] = struct{}{}
	}
	days := make([]models.Weekday, 0, len(unique))
	for day := range unique {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Index() < days[j].Index() })
	return days, nil
}

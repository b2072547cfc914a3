package export

import (
	"sort"
	"strconv"
)

// LessonHeader is the first column of a timetable dataset.
const LessonHeader = "Lesson"

// Period is one cell of a weekly timetable.
type Period struct {
	Day          string
	LessonNumber int
	StartTime    string
	EndTime      string
}

// Timetable pivots periods into one row per lesson number and one column per day.
// Days keep the given order; cells without a period stay empty.
func Timetable(days []string, periods []Period) Dataset {
	headers := append([]string{LessonHeader}, days...)

	rowsByLesson := make(map[int]map[string]string)
	for _, p := range periods {
		row, ok := rowsByLesson[p.LessonNumber]
		if !ok {
			row = map[string]string{LessonHeader: strconv.Itoa(p.LessonNumber)}
			rowsByLesson[p.LessonNumber] = row
		}
		row[p.Day] = p.StartTime + " - " + p.EndTime
	}

	numbers := make([]int, 0, len(rowsByLesson))
	for n := range rowsByLesson {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	rows := make([]map[string]string, 0, len(numbers))
	for _, n := range numbers {
		rows = append(rows, rowsByLesson[n])
	}
	return Dataset{Headers: headers, Rows: rows}
}

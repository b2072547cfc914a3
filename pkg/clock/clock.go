// Package clock converts between HH:MM wall-clock strings and minutes since midnight.
package clock

import (
	"fmt"
	"strings"
	"time"
)

// MinutesPerDay is the modulus applied to every formatted time.
const MinutesPerDay = 24 * 60

const layout = "15:04"

// Parse converts an HH:MM value into minutes since midnight.
func Parse(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty time value")
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", raw, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Normalize folds any minute count into a single day.
func Normalize(minutes int) int {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return minutes
}

// Format renders minutes since midnight as HH:MM, wrapping past midnight.
func Format(minutes int) string {
	minutes = Normalize(minutes)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Canonical re-renders an HH:MM value with zero padding, e.g. "7:05" becomes "07:05".
func Canonical(raw string) (string, error) {
	minutes, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return Format(minutes), nil
}

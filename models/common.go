package models

import (
	"time"
)

// DateRange represents an inclusive range of dates
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the given date falls inside the range (inclusive)
func (dr DateRange) Contains(t time.Time) bool {
	day := Midnight(t)
	return !day.Before(dr.Start) && !day.After(dr.End)
}

// Midnight truncates a time to the start of its day
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// PeriodFor returns the review period (Monday to Sunday) containing the given date.
// Review periods are the unit a trainee submits and a supervisor reviews.
func PeriodFor(date time.Time) DateRange {
	weekday := int(date.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}

	monday := Midnight(date.AddDate(0, 0, -(weekday - 1)))
	return DateRange{Start: monday, End: monday.AddDate(0, 0, 6)}
}

// CurrentPeriod returns the review period containing today
func CurrentPeriod(now time.Time) DateRange {
	return PeriodFor(now)
}

// WeekNumberSince returns the 1-based week number of the period starting at
// periodStart, counted from the period containing the enrollment date.
func WeekNumberSince(enrolledAt, periodStart time.Time) int {
	first := PeriodFor(enrolledAt).Start
	days := int(Midnight(periodStart).Sub(first).Hours() / 24)
	return days/7 + 1
}

// FormatDate formats a time as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a YYYY-MM-DD string into a time.Time
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// ValidationError represents a single field-level validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors. It implements the
// error interface so services can return it directly.
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	msg := "validation failed: " + ve[0].Message
	for _, e := range ve[1:] {
		msg += "; " + e.Message
	}
	return msg
}

// HasErrors returns true if there are validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// GetMessages returns all error messages as a slice of strings
func (ve ValidationErrors) GetMessages() []string {
	messages := make([]string, len(ve))
	for i, err := range ve {
		messages[i] = err.Message
	}
	return messages
}

// Invalid builds a single-field ValidationErrors value
func Invalid(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

package services

import (
	"time"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/apperrors"
)

const dateLayout = "2006-01-02"

// parseDate accepts a plain date or an RFC3339 timestamp and normalizes it
// to midnight UTC. Reservation arithmetic is calendar-based so time-of-day
// is always discarded.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.NewValidation(field, field+" is required")
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
	}
	if err != nil {
		return time.Time{}, apperrors.NewValidation(field, "invalid date format for "+field)
	}
	return toDate(t), nil
}

// toDate truncates a timestamp to its UTC calendar date.
func toDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// today is the current UTC calendar date.
func today() time.Time {
	return toDate(time.Now())
}
